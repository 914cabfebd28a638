package bot

import (
	"fmt"
	"slices"
	"strings"

	"ampere/internal/catalog"
	"ampere/internal/model"
)

const (
	statusOn  = "on"
	statusOff = "off"
)

// FormatCards formats a ranked card list. Numbers match the open buttons.
func FormatCards(title string, cards []model.Card) string {
	if len(cards) == 0 {
		return fmt.Sprintf("%s\n\nNothing to show right now.", title)
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "\n%d. %s%s\n", i+1, badgePrefix(c.Badge), c.Title)
		if meta := cardMeta(c); meta != "" {
			fmt.Fprintf(&b, "   %s\n", meta)
		}
	}
	return b.String()
}

// FormatCard formats the detail view of an opened card.
func FormatCard(c model.Card) string {
	var b strings.Builder
	b.WriteString(badgePrefix(c.Badge))
	b.WriteString(c.Title)
	if meta := cardMeta(c); meta != "" {
		b.WriteString("\n")
		b.WriteString(meta)
	}
	if c.Subtitle != "" {
		b.WriteString("\n\n")
		b.WriteString(c.Subtitle)
	}
	if c.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(c.URL)
	}
	return b.String()
}

// FormatLiveNotification formats a live card pushed to a chat.
func FormatLiveNotification(c model.Card) string {
	return "Live now for you\n\n" + FormatCard(c)
}

// FormatRails lists the configured rails.
func FormatRails(rails []model.Rail) string {
	if len(rails) == 0 {
		return "No rails configured."
	}
	var b strings.Builder
	b.WriteString("Rails:\n")
	for _, r := range rails {
		fmt.Fprintf(&b, "\n%s  /rail %s", r.Title, r.Name)
		if r.Notify {
			b.WriteString("  (live alerts)")
		}
	}
	return b.String()
}

// FormatProfile formats the profile summary.
func FormatProfile(p model.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.DisplayName)
	fmt.Fprintf(&b, "\nPlatforms: %s", listOrNone(platformNames(p.FavoritePlatformIDs)))
	fmt.Fprintf(&b, "\nLeagues: %s", listOrNone(p.FavoriteLeagues))
	fmt.Fprintf(&b, "\nTeams: %s", listOrNone(p.FavoriteTeams))
	fmt.Fprintf(&b, "\nConnected: %s", listOrNone(platformNames(connectedIDs(p))))
	status := statusOff
	if p.NotificationsEnabled {
		status = statusOn
	}
	fmt.Fprintf(&b, "\nLive alerts: %s", status)
	return b.String()
}

// FormatHistory formats the viewing log, newest first.
func FormatHistory(events []model.ViewingEvent, limit int) string {
	if len(events) == 0 {
		return "You have not opened anything yet."
	}
	var b strings.Builder
	b.WriteString("Recently opened:\n")
	n := 0
	for i := len(events) - 1; i >= 0 && n < limit; i-- {
		ev := events[i]
		fmt.Fprintf(&b, "\n%s  %s", ev.At.UTC().Format("2006-01-02 15:04"), ev.Title)
		var meta []string
		if ev.PlatformID != "" {
			meta = append(meta, catalog.Label(model.Card{PlatformID: ev.PlatformID}))
		}
		if ev.League != "" {
			meta = append(meta, ev.League)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(meta, ", "))
		}
		n++
	}
	return b.String()
}

// FormatPlatforms lists the catalog with the profile's marks.
func FormatPlatforms(p model.Profile) string {
	var b strings.Builder
	b.WriteString("Platforms:\n")
	for _, pl := range catalog.All() {
		var marks []string
		if slices.Contains(p.FavoritePlatformIDs, pl.ID) {
			marks = append(marks, "favorite")
		}
		if p.ConnectedPlatformIDs[pl.ID] {
			marks = append(marks, "connected")
		}
		fmt.Fprintf(&b, "\n%s (%s)", pl.Name, pl.ID)
		if len(marks) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(marks, ", "))
		}
	}
	return b.String()
}

func badgePrefix(badge model.Badge) string {
	if badge == "" {
		return ""
	}
	return "[" + string(badge) + "] "
}

func cardMeta(c model.Card) string {
	var parts []string
	for _, s := range []string{catalog.Label(c), c.League, c.Genre} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

func platformNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, catalog.Label(model.Card{PlatformID: id}))
	}
	return names
}

func connectedIDs(p model.Profile) []string {
	var ids []string
	for id, ok := range p.ConnectedPlatformIDs {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
