package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ampere/internal/model"
)

// ProfileDefaults is the default profile block of the rails file.
type ProfileDefaults struct {
	DisplayName          string   `yaml:"display_name"`
	FavoritePlatformIDs  []string `yaml:"favorite_platforms"`
	FavoriteLeagues      []string `yaml:"favorite_leagues"`
	FavoriteTeams        []string `yaml:"favorite_teams"`
	NotificationsEnabled *bool    `yaml:"notifications"`
}

// Rails is the parsed rails file.
type Rails struct {
	Rails    []model.Rail     `yaml:"rails"`
	Defaults *ProfileDefaults `yaml:"defaults"`
}

// LoadRails reads and validates the rails file at path.
func LoadRails(path string) (*Rails, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read rails file: %w", err)
	}
	return ParseRails(data)
}

// ParseRails decodes and validates a rails document.
func ParseRails(data []byte) (*Rails, error) {
	var r Rails
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rails file: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rails) validate() error {
	if len(r.Rails) == 0 {
		return errors.New("rails file defines no rails")
	}
	seen := make(map[string]bool, len(r.Rails))
	for i := range r.Rails {
		rail := &r.Rails[i]
		rail.Name = strings.ToLower(strings.TrimSpace(rail.Name))
		if rail.Name == "" {
			return fmt.Errorf("rail #%d has no name", i+1)
		}
		if seen[rail.Name] {
			return fmt.Errorf("duplicate rail %q", rail.Name)
		}
		seen[rail.Name] = true
		if rail.Title == "" {
			rail.Title = rail.Name
		}
		if len(rail.Sources) == 0 {
			return fmt.Errorf("rail %q has no sources", rail.Name)
		}
		for _, src := range rail.Sources {
			if src.URL == "" {
				return fmt.Errorf("rail %q has a source without url", rail.Name)
			}
		}
	}
	return nil
}

// Profile overlays the configured defaults on base.
func (r *Rails) Profile(base model.Profile) model.Profile {
	d := r.Defaults
	if d == nil {
		return base
	}
	if d.DisplayName != "" {
		base.DisplayName = d.DisplayName
	}
	if d.FavoritePlatformIDs != nil {
		base.FavoritePlatformIDs = d.FavoritePlatformIDs
	}
	if d.FavoriteLeagues != nil {
		base.FavoriteLeagues = d.FavoriteLeagues
	}
	if d.FavoriteTeams != nil {
		base.FavoriteTeams = d.FavoriteTeams
	}
	if d.NotificationsEnabled != nil {
		base.NotificationsEnabled = *d.NotificationsEnabled
	}
	return base
}
