package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ampere/internal/filter"
	"ampere/internal/rails"
)

const historyLimit = 10

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	usr := b.users.For(chatID)
	// Saving registers the chat for live alerts.
	p := usr.Profile.Save(ctx, usr.Profile.Load(ctx))
	usr.Engagement.Track(ctx, "start", nil)

	b.reply(chatID, fmt.Sprintf(`Welcome to Ampere, %s!

Live games, shows and movies ranked for you.

Quick start:
1. /rails - see what's on
2. /fav league NBA - tell me what you like
3. /search <words> - find something specific

Use /help for the full command reference.`, p.DisplayName))
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Browsing:
/rails - list rails
/rail <name> - show a rail, ranked for you
/search <words> - search every rail
  scopes: title: league: genre: platform: badge:
  -word excludes, /regex/ matches a pattern

Profile:
/profile - your preferences
/fav platform|league|team <value> - add or remove a favorite
/platforms - streaming platforms
/connect <platform> - mark a platform as connected
/disconnect <platform> - unmark a platform
/notify on|off - live alerts for your favorites
/name <display name> - rename yourself
/history - recently opened`)
}

func (b *Bot) handleRails(chatID int64) {
	b.reply(chatID, FormatRails(b.rails.Rails()))
}

func (b *Bot) handleRail(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /rail <name>")
		return
	}

	name := strings.ToLower(args)
	cards, err := b.rails.Cards(ctx, name)
	if errors.Is(err, rails.ErrUnknownRail) {
		b.reply(chatID, fmt.Sprintf("Rail %q not found. Use /rails to list them.", name))
		return
	}
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	rail, _ := b.rails.Rail(name)

	usr := b.users.For(chatID)
	ranked := b.ranker.Rank(cards, usr.Profile.Load(ctx), usr.Engagement.LoadViewing(ctx))
	usr.Engagement.Track(ctx, "rail_view", map[string]any{
		"rail":  rail.Name,
		"count": len(ranked),
	})

	b.sendCards(chatID, rail.Title, ranked)
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /search <words>")
		return
	}

	q, err := filter.Parse(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Invalid search: %v", err))
		return
	}

	usr := b.users.For(chatID)
	found := b.rails.Search(ctx, q)
	ranked := b.ranker.Rank(found, usr.Profile.Load(ctx), usr.Engagement.LoadViewing(ctx))
	usr.Engagement.Track(ctx, "search_submit", map[string]any{
		"query":   args,
		"results": len(ranked),
	})

	b.sendCards(chatID, fmt.Sprintf("Results for %q", args), ranked)
}

func (b *Bot) handleFav(ctx context.Context, chatID int64, args string) {
	parsed, err := ParseFavoriteArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	usr := b.users.For(chatID)
	_, added, err := usr.Profile.ToggleFavorite(ctx, parsed.Kind, parsed.Value)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	usr.Engagement.Track(ctx, "favorite_toggle", map[string]any{
		"kind":  string(parsed.Kind),
		"value": parsed.Value,
		"added": added,
	})

	if added {
		b.reply(chatID, fmt.Sprintf("Added %s %q to your favorites.", parsed.Kind, parsed.Value))
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed %s %q from your favorites.", parsed.Kind, parsed.Value))
}

func (b *Bot) handleConnect(ctx context.Context, chatID int64, args string, connected bool) {
	p, err := ParsePlatformArg(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	b.users.For(chatID).Profile.SetConnected(ctx, p.ID, connected)
	if connected {
		b.reply(chatID, fmt.Sprintf("%s connected.", p.Name))
		return
	}
	b.reply(chatID, fmt.Sprintf("%s disconnected.", p.Name))
}

func (b *Bot) handleNotify(ctx context.Context, chatID int64, args string) {
	enabled, err := ParseSwitch(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	b.users.For(chatID).Profile.SetNotifications(ctx, enabled)
	if enabled {
		b.reply(chatID, "Live alerts are on.")
		return
	}
	b.reply(chatID, "Live alerts are off.")
}

func (b *Bot) handleName(ctx context.Context, chatID int64, args string) {
	name, err := ParseDisplayName(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	p := b.users.For(chatID).Profile.SetDisplayName(ctx, name)
	b.reply(chatID, fmt.Sprintf("You are now %q.", p.DisplayName))
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64) {
	b.reply(chatID, FormatProfile(b.users.For(chatID).Profile.Load(ctx)))
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64) {
	b.reply(chatID, FormatHistory(b.users.For(chatID).Engagement.LoadViewing(ctx), historyLimit))
}

func (b *Bot) handlePlatforms(ctx context.Context, chatID int64) {
	b.reply(chatID, FormatPlatforms(b.users.For(chatID).Profile.Load(ctx)))
}
