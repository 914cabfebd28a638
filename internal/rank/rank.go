// Package rank orders candidate cards by the user's declared and inferred
// interests. Ranking is pure: the same cards, profile and history always give
// the same order.
package rank

import (
	"math"
	"slices"
	"sort"
	"strings"

	"ampere/internal/dedup"
	"ampere/internal/model"
)

// Reasons recorded on a scored card.
const (
	ReasonPlatform = "favorite_platform"
	ReasonLeague   = "favorite_league"
	ReasonTeam     = "favorite_team"
	ReasonLive     = "live"
	ReasonUpcoming = "upcoming"
	ReasonRecent   = "recently_viewed"
)

// Scored is a card with its total score and the signals that produced it.
type Scored struct {
	Card    model.Card
	Index   int
	Score   float64
	Reasons []string
}

// Live reports whether the card earned the live boost.
func (s Scored) Live() bool {
	return slices.Contains(s.Reasons, ReasonLive)
}

// Favorite reports whether the card matched any declared favorite.
func (s Scored) Favorite() bool {
	for _, r := range s.Reasons {
		switch r {
		case ReasonPlatform, ReasonLeague, ReasonTeam:
			return true
		}
	}
	return false
}

// Ranker scores and orders cards.
type Ranker struct {
	cfg Config
}

// New creates a Ranker. The config is expected to pass Validate.
func New(cfg Config) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank returns every card of cards, highest score first. Cards are never
// dropped or duplicated.
func (r *Ranker) Rank(cards []model.Card, p model.Profile, viewing []model.ViewingEvent) []model.Card {
	scored := r.Ranked(cards, p, viewing)
	out := make([]model.Card, len(scored))
	for i, s := range scored {
		out[i] = s.Card
	}
	return out
}

// Ranked is Rank with the scores and reasons kept.
func (r *Ranker) Ranked(cards []model.Card, p model.Profile, viewing []model.ViewingEvent) []Scored {
	scored := r.Score(cards, p, viewing)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Score computes the score of every card, in input order.
func (r *Ranker) Score(cards []model.Card, p model.Profile, viewing []model.ViewingEvent) []Scored {
	platforms := normalizedSet(p.FavoritePlatformIDs)
	leagues := normalizedSet(p.FavoriteLeagues)
	teams := normalizedList(p.FavoriteTeams)
	recent := r.recency(viewing)

	out := make([]Scored, len(cards))
	for i, c := range cards {
		s := Scored{Card: c, Index: i}
		w := r.cfg.Weights

		if _, ok := platforms[dedup.Normalize(c.PlatformID)]; ok {
			s.add(w.Platform, ReasonPlatform)
		}
		if _, ok := leagues[dedup.Normalize(c.League)]; ok {
			s.add(w.League, ReasonLeague)
		}
		if matchesTeam(teams, dedup.Normalize(c.Title), dedup.Normalize(c.Subtitle)) {
			s.add(w.Team, ReasonTeam)
		}

		switch model.Badge(strings.ToUpper(strings.TrimSpace(string(c.Badge)))) {
		case model.BadgeLive:
			s.add(w.Live, ReasonLive)
		case model.BadgeUpcoming:
			s.add(w.Upcoming, ReasonUpcoming)
		}

		if n := recent[dedup.HistoryKey(c.Title, c.PlatformID, c.League)]; n > 0 {
			s.add(-math.Min(r.cfg.PenaltyCap, float64(n)*r.cfg.RepeatPenalty), ReasonRecent)
		}

		s.Score += float64(i%r.modulo()) * r.cfg.TieBreakStep
		out[i] = s
	}
	return out
}

func (s *Scored) add(points float64, reason string) {
	s.Score += points
	s.Reasons = append(s.Reasons, reason)
}

func (r *Ranker) modulo() int {
	if r.cfg.TieBreakModulo < 1 {
		return 1
	}
	return r.cfg.TieBreakModulo
}

// recency counts the history keys of the newest RecencyWindow events.
func (r *Ranker) recency(viewing []model.ViewingEvent) map[string]int {
	if n := r.cfg.RecencyWindow; len(viewing) > n {
		viewing = viewing[len(viewing)-max(n, 0):]
	}
	counts := make(map[string]int, len(viewing))
	for _, ev := range viewing {
		counts[dedup.HistoryKey(ev.Title, ev.PlatformID, ev.League)]++
	}
	return counts
}

func matchesTeam(teams []string, title, subtitle string) bool {
	for _, t := range teams {
		if strings.Contains(title, t) || strings.Contains(subtitle, t) {
			return true
		}
	}
	return false
}

func normalizedSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range normalizedList(vals) {
		set[v] = struct{}{}
	}
	return set
}

// normalizedList drops values that normalize to nothing, since an empty team
// name would be a substring of every title.
func normalizedList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if n := dedup.Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
