// Package catalog lists the streaming platforms a card can reference.
package catalog

import (
	"strings"

	"ampere/internal/model"
)

// Platform is one entry of the static platform catalog.
type Platform struct {
	ID   string
	Name string
}

var platforms = []Platform{
	{ID: "netflix", Name: "Netflix"},
	{ID: "hulu", Name: "Hulu"},
	{ID: "max", Name: "Max"},
	{ID: "disney", Name: "Disney+"},
	{ID: "prime", Name: "Prime Video"},
	{ID: "appletv", Name: "Apple TV+"},
	{ID: "peacock", Name: "Peacock"},
	{ID: "paramount", Name: "Paramount+"},
	{ID: "espn", Name: "ESPN+"},
	{ID: "youtube", Name: "YouTube"},
	{ID: "dazn", Name: "DAZN"},
	{ID: "fubo", Name: "Fubo"},
}

var byID = func() map[string]Platform {
	m := make(map[string]Platform, len(platforms))
	for _, p := range platforms {
		m[p.ID] = p
	}
	return m
}()

// All returns the catalog in display order.
func All() []Platform {
	return append([]Platform(nil), platforms...)
}

// Lookup finds a platform by ID, ignoring case and surrounding spaces.
func Lookup(id string) (Platform, bool) {
	p, ok := byID[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// Label returns the display name of a card's platform: the catalog name when
// the ID is known, else the card's free-text label, else the raw ID.
func Label(c model.Card) string {
	if p, ok := Lookup(c.PlatformID); ok {
		return p.Name
	}
	if c.PlatformLabel != "" {
		return c.PlatformLabel
	}
	return c.PlatformID
}
