// Package dedup computes content identity keys and collapses duplicate cards
// coming from different rails.
package dedup

import (
	"strings"
	"unicode"

	"ampere/internal/model"
)

const sep = "|"

// Normalize lower-cases and trims s, spells out "&" as "and" and drops every
// rune that is not a letter or digit.
func Normalize(s string) string {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "&", "and")
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Key returns the identity key of a card: title, platform, league and genre.
// The platform is the platform ID when set, otherwise the free-text label.
func Key(c model.Card) string {
	platform := c.PlatformID
	if platform == "" {
		platform = c.PlatformLabel
	}
	return Normalize(c.Title) + sep + Normalize(platform) + sep + Normalize(c.League) + sep + Normalize(c.Genre)
}

// HistoryKey returns the key matching a card against viewing history.
func HistoryKey(title, platformID, league string) string {
	return Normalize(title) + sep + platformID + sep + Normalize(league)
}

// Dedupe keeps the first card seen for each key, preserving input order.
func Dedupe(cards []model.Card) []model.Card {
	seen := make(map[string]struct{}, len(cards))
	out := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		k := Key(c)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}
