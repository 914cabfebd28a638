// Package profile persists the user's declared preferences.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"ampere/internal/dedup"
	"ampere/internal/model"
	"ampere/internal/storage"
)

// Key is the storage key of the profile document.
const Key = "ampere.profile.v1"

// Default returns the built-in profile used when nothing is configured.
func Default() model.Profile {
	return model.Profile{
		DisplayName:          "Guest",
		FavoritePlatformIDs:  []string{"espn", "netflix"},
		FavoriteLeagues:      []string{"NFL", "NBA"},
		FavoriteTeams:        []string{},
		ConnectedPlatformIDs: map[string]bool{},
		NotificationsEnabled: true,
	}
}

// Store loads and saves one profile document.
type Store struct {
	kv       storage.KV
	defaults model.Profile
	log      *slog.Logger
}

// New creates a Store whose missing or invalid fields are filled from defaults.
func New(kv storage.KV, defaults model.Profile, log *slog.Logger) *Store {
	return &Store{
		kv:       kv,
		defaults: Normalize(ToMap(defaults), Default()),
		log:      log,
	}
}

// Load returns the persisted profile. Absent or corrupt data yields the defaults.
func (s *Store) Load(ctx context.Context) model.Profile {
	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("read profile", "key", Key, "error", err)
		}
		return s.Normalize(nil)
	}

	var partial map[string]any
	if err := json.Unmarshal(raw, &partial); err != nil {
		s.log.Warn("decode profile", "key", Key, "error", err)
		return s.Normalize(nil)
	}
	return s.Normalize(partial)
}

// Save normalizes and persists p. Write failures are logged and dropped; the
// caller's in-memory profile stays authoritative.
func (s *Store) Save(ctx context.Context, p model.Profile) model.Profile {
	p = s.Normalize(ToMap(p))
	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Warn("encode profile", "key", Key, "error", err)
		return p
	}
	if err := s.kv.Put(ctx, Key, raw); err != nil {
		s.log.Warn("write profile", "key", Key, "error", err)
	}
	return p
}

// Normalize applies Normalize with the store's defaults.
func (s *Store) Normalize(partial map[string]any) model.Profile {
	return Normalize(partial, s.defaults)
}

// ToggleFavorite adds value to the collection selected by kind, or removes it
// when already present. Presence ignores case and punctuation, so "nba"
// removes "NBA". It reports whether the value is a favorite afterwards.
func (s *Store) ToggleFavorite(ctx context.Context, kind model.FavoriteKind, value string) (model.Profile, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.Profile{}, false, fmt.Errorf("favorite value is required")
	}

	p := s.Load(ctx)
	var list *[]string
	switch kind {
	case model.FavoritePlatform:
		list = &p.FavoritePlatformIDs
	case model.FavoriteLeague:
		list = &p.FavoriteLeagues
	case model.FavoriteTeam:
		list = &p.FavoriteTeams
	default:
		return p, false, fmt.Errorf("unknown favorite kind %q", kind)
	}

	added := true
	key := dedup.Normalize(value)
	kept := make([]string, 0, len(*list)+1)
	for _, v := range *list {
		if v == value || (key != "" && dedup.Normalize(v) == key) {
			added = false
			continue
		}
		kept = append(kept, v)
	}
	if added {
		kept = append(kept, value)
	}
	*list = kept

	return s.Save(ctx, p), added, nil
}

// SetConnected marks a platform as connected or disconnected.
func (s *Store) SetConnected(ctx context.Context, platformID string, connected bool) model.Profile {
	p := s.Load(ctx)
	p.ConnectedPlatformIDs[platformID] = connected
	return s.Save(ctx, p)
}

// SetNotifications toggles live notifications.
func (s *Store) SetNotifications(ctx context.Context, enabled bool) model.Profile {
	p := s.Load(ctx)
	p.NotificationsEnabled = enabled
	return s.Save(ctx, p)
}

// SetDisplayName renames the profile.
func (s *Store) SetDisplayName(ctx context.Context, name string) model.Profile {
	p := s.Load(ctx)
	p.DisplayName = name
	return s.Save(ctx, p)
}
