// Package rails assembles named card lists from their configured sources.
package rails

import (
	"context"
	"errors"
	"log/slog"

	"ampere/internal/cache"
	"ampere/internal/dedup"
	"ampere/internal/filter"
	"ampere/internal/model"
)

// ErrUnknownRail is returned when a rail name is not configured.
var ErrUnknownRail = errors.New("unknown rail")

// Source loads the cards of one feed source.
type Source interface {
	SourceCards(ctx context.Context, src model.Source) ([]model.Card, error)
}

// Service serves rail card lists, caching each source's cards.
type Service struct {
	rails  []model.Rail
	byName map[string]int
	src    Source
	cache  *cache.LRU[[]model.Card]
	log    *slog.Logger
}

// New creates a Service over the given rails. Per-source card lists are kept
// in c.
func New(rails []model.Rail, src Source, c *cache.LRU[[]model.Card], log *slog.Logger) *Service {
	byName := make(map[string]int, len(rails))
	for i, r := range rails {
		byName[r.Name] = i
	}
	return &Service{
		rails:  rails,
		byName: byName,
		src:    src,
		cache:  c,
		log:    log,
	}
}

// Names returns the rail names in configuration order.
func (s *Service) Names() []string {
	names := make([]string, len(s.rails))
	for i, r := range s.rails {
		names[i] = r.Name
	}
	return names
}

// Rails returns the configured rails.
func (s *Service) Rails() []model.Rail {
	return append([]model.Rail(nil), s.rails...)
}

// Rail looks up a rail by name.
func (s *Service) Rail(name string) (model.Rail, bool) {
	i, ok := s.byName[name]
	if !ok {
		return model.Rail{}, false
	}
	return s.rails[i], true
}

// Cards returns the deduplicated cards of the named rail. Sources that fail
// to load are logged and skipped.
func (s *Service) Cards(ctx context.Context, name string) ([]model.Card, error) {
	r, ok := s.Rail(name)
	if !ok {
		return nil, ErrUnknownRail
	}
	return s.railCards(ctx, r), nil
}

// Search returns the cards of every rail matching q, deduplicated across
// rails.
func (s *Service) Search(ctx context.Context, q filter.Query) []model.Card {
	var all []model.Card
	for _, r := range s.rails {
		if ctx.Err() != nil {
			break
		}
		all = append(all, s.railCards(ctx, r)...)
	}

	var matched []model.Card
	for _, c := range dedup.Dedupe(all) {
		if filter.Match(c, q) {
			matched = append(matched, c)
		}
	}
	return matched
}

func (s *Service) railCards(ctx context.Context, r model.Rail) []model.Card {
	var cards []model.Card
	for _, src := range r.Sources {
		if ctx.Err() != nil {
			break
		}
		cards = append(cards, s.sourceCards(ctx, r.Name, src)...)
	}
	return dedup.Dedupe(cards)
}

func (s *Service) sourceCards(ctx context.Context, rail string, src model.Source) []model.Card {
	key := sourceKey(src)
	if cards, ok := s.cache.Get(key); ok {
		return cards
	}

	cards, err := s.src.SourceCards(ctx, src)
	if err != nil {
		s.log.Warn("load source", "rail", rail, "url", src.URL, "error", err)
		return nil
	}
	s.cache.Add(key, cards)
	s.log.Debug("loaded source", "rail", rail, "url", src.URL, "cards", len(cards))
	return cards
}

// The same URL may back several rails with different metadata.
func sourceKey(src model.Source) string {
	return src.URL + "|" + src.PlatformID + "|" + src.PlatformLabel + "|" + src.League + "|" + src.Genre
}
