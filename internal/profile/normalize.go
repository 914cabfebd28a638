package profile

import (
	"maps"
	"strings"

	"ampere/internal/model"
)

// Normalize builds a valid profile from a loosely-shaped document. Fields that
// are absent or carry the wrong type are taken from defaults; unknown keys are
// ignored. Favorite collections are trimmed and deduplicated, keeping the
// first occurrence. A connectedPlatformIds value that is not an object becomes
// an empty map. Normalize is idempotent over ToMap.
func Normalize(partial map[string]any, defaults model.Profile) model.Profile {
	p := model.Profile{
		DisplayName:          stringField(partial, "displayName", defaults.DisplayName),
		AvatarURL:            stringField(partial, "avatarUrl", defaults.AvatarURL),
		HeaderURL:            stringField(partial, "headerUrl", defaults.HeaderURL),
		FavoritePlatformIDs:  setField(partial, "favoritePlatformIds", defaults.FavoritePlatformIDs),
		FavoriteLeagues:      setField(partial, "favoriteLeagues", defaults.FavoriteLeagues),
		FavoriteTeams:        setField(partial, "favoriteTeams", defaults.FavoriteTeams),
		NotificationsEnabled: defaults.NotificationsEnabled,
	}

	if v, ok := partial["notificationsEnabled"].(bool); ok {
		p.NotificationsEnabled = v
	}

	if raw, present := partial["connectedPlatformIds"]; present {
		p.ConnectedPlatformIDs = connectedField(raw)
	} else {
		p.ConnectedPlatformIDs = maps.Clone(defaults.ConnectedPlatformIDs)
	}
	if p.ConnectedPlatformIDs == nil {
		p.ConnectedPlatformIDs = map[string]bool{}
	}

	return p
}

// ToMap converts a profile into the loosely-typed form accepted by Normalize.
func ToMap(p model.Profile) map[string]any {
	connected := make(map[string]any, len(p.ConnectedPlatformIDs))
	for k, v := range p.ConnectedPlatformIDs {
		connected[k] = v
	}
	return map[string]any{
		"displayName":          p.DisplayName,
		"avatarUrl":            p.AvatarURL,
		"headerUrl":            p.HeaderURL,
		"favoritePlatformIds":  p.FavoritePlatformIDs,
		"favoriteLeagues":      p.FavoriteLeagues,
		"favoriteTeams":        p.FavoriteTeams,
		"connectedPlatformIds": connected,
		"notificationsEnabled": p.NotificationsEnabled,
	}
}

func stringField(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func setField(m map[string]any, key string, def []string) []string {
	switch v := m[key].(type) {
	case []string:
		return dedupe(v)
	case []any:
		vals := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				vals = append(vals, s)
			}
		}
		return dedupe(vals)
	default:
		return dedupe(def)
	}
}

func dedupe(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func connectedField(raw any) map[string]bool {
	out := map[string]bool{}
	switch v := raw.(type) {
	case map[string]bool:
		maps.Copy(out, v)
	case map[string]any:
		for k, e := range v {
			if b, ok := e.(bool); ok {
				out[k] = b
			}
		}
	}
	return out
}
