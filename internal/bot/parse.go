package bot

import (
	"fmt"
	"strings"

	"ampere/internal/catalog"
	"ampere/internal/model"
)

// FavoriteArgs holds the parsed arguments of /fav.
type FavoriteArgs struct {
	Kind  model.FavoriteKind
	Value string
}

// ParseFavoriteArgs parses arguments for /fav.
// Format: platform|league|team <value...>
// Platform values must name a catalog platform and resolve to its ID.
func ParseFavoriteArgs(args string) (FavoriteArgs, error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return FavoriteArgs{}, fmt.Errorf("usage: /fav platform|league|team <value>")
	}

	kind := model.FavoriteKind(strings.ToLower(parts[0]))
	value := strings.Join(parts[1:], " ")

	switch kind {
	case model.FavoritePlatform:
		p, err := ParsePlatformArg(value)
		if err != nil {
			return FavoriteArgs{}, err
		}
		value = p.ID
	case model.FavoriteLeague, model.FavoriteTeam:
	default:
		return FavoriteArgs{}, fmt.Errorf("invalid kind %q, use: platform, league, team", parts[0])
	}

	return FavoriteArgs{Kind: kind, Value: value}, nil
}

// ParsePlatformArg resolves a platform ID from a command argument.
func ParsePlatformArg(args string) (catalog.Platform, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return catalog.Platform{}, fmt.Errorf("platform ID is required, see /platforms")
	}
	p, ok := catalog.Lookup(s)
	if !ok {
		return catalog.Platform{}, fmt.Errorf("unknown platform %q, see /platforms", s)
	}
	return p, nil
}

// ParseSwitch parses an on/off argument.
func ParseSwitch(args string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case statusOn, "yes", "true":
		return true, nil
	case statusOff, "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("usage: /notify on|off")
}

// ParseDisplayName validates a new display name.
func ParseDisplayName(args string) (string, error) {
	name := strings.Join(strings.Fields(args), " ")
	if name == "" {
		return "", fmt.Errorf("usage: /name <display name>")
	}
	if len([]rune(name)) > 64 {
		return "", fmt.Errorf("display name must be at most 64 characters")
	}
	return name, nil
}
