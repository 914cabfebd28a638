// Package model defines the domain types used across the application.
package model

import "time"

// Badge is a short status tag shown on a card.
type Badge string

// Known badges. Any other value is carried through but earns no ranking boost.
const (
	BadgeLive     Badge = "LIVE"
	BadgeUpcoming Badge = "UPCOMING"
)

// Card is one displayable content unit supplied by a content source.
// Cards are treated as immutable once constructed.
type Card struct {
	ID            string
	Title         string
	Subtitle      string
	PlatformID    string
	PlatformLabel string
	League        string
	Genre         string
	Badge         Badge
	URL           string
	ImageURL      string
	PublishedAt   *time.Time
}

// FavoriteKind selects one of the profile's favorite collections.
type FavoriteKind string

// Supported favorite kinds.
const (
	FavoritePlatform FavoriteKind = "platform"
	FavoriteLeague   FavoriteKind = "league"
	FavoriteTeam     FavoriteKind = "team"
)

// Profile holds the declared preferences of one user.
type Profile struct {
	DisplayName          string          `json:"displayName"`
	AvatarURL            string          `json:"avatarUrl"`
	HeaderURL            string          `json:"headerUrl"`
	FavoritePlatformIDs  []string        `json:"favoritePlatformIds"`
	FavoriteLeagues      []string        `json:"favoriteLeagues"`
	FavoriteTeams        []string        `json:"favoriteTeams"`
	ConnectedPlatformIDs map[string]bool `json:"connectedPlatformIds"`
	NotificationsEnabled bool            `json:"notificationsEnabled"`
}

// Favorites returns the collection selected by kind.
func (p Profile) Favorites(kind FavoriteKind) []string {
	switch kind {
	case FavoritePlatform:
		return p.FavoritePlatformIDs
	case FavoriteLeague:
		return p.FavoriteLeagues
	case FavoriteTeam:
		return p.FavoriteTeams
	}
	return nil
}

// ViewingEvent records that the user opened a card.
type ViewingEvent struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	PlatformID string    `json:"platformId,omitempty"`
	League     string    `json:"league,omitempty"`
	At         time.Time `json:"at"`
}

// AttributionEvent is a named telemetry record correlated to a session.
type AttributionEvent struct {
	At        time.Time      `json:"at"`
	SessionID string         `json:"sessionId"`
	Event     string         `json:"event"`
	Props     map[string]any `json:"props"`
}

// Source describes one feed backing a rail and the metadata stamped on its cards.
type Source struct {
	URL           string `yaml:"url"`
	PlatformID    string `yaml:"platform"`
	PlatformLabel string `yaml:"platform_label"`
	League        string `yaml:"league"`
	Genre         string `yaml:"genre"`
}

// Rail is a named list of cards assembled from one or more sources.
type Rail struct {
	Name    string   `yaml:"name"`
	Title   string   `yaml:"title"`
	Notify  bool     `yaml:"notify"`
	Sources []Source `yaml:"sources"`
}
