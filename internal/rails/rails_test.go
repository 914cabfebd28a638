package rails

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ampere/internal/cache"
	"ampere/internal/filter"
	"ampere/internal/model"
)

type fakeSource struct {
	mu    sync.Mutex
	cards map[string][]model.Card
	fail  map[string]bool
	calls map[string]int
}

func (f *fakeSource) SourceCards(_ context.Context, src model.Source) ([]model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[src.URL]++
	if f.fail[src.URL] {
		return nil, errors.New("boom")
	}
	return f.cards[src.URL], nil
}

func (f *fakeSource) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func card(id, title, platform, league string) model.Card {
	return model.Card{ID: id, Title: title, PlatformID: platform, League: league}
}

func newService(src Source) *Service {
	rails := []model.Rail{
		{Name: "live", Title: "Live now", Notify: true, Sources: []model.Source{
			{URL: "https://a"}, {URL: "https://b"},
		}},
		{Name: "movies", Title: "Movies", Sources: []model.Source{
			{URL: "https://c"},
		}},
	}
	return New(rails, src, cache.NewLRU[[]model.Card](10, time.Minute), testLogger())
}

func ids(cards []model.Card) []string {
	var out []string
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestNamesAndRail(t *testing.T) {
	s := newService(&fakeSource{})

	if diff := cmp.Diff([]string{"live", "movies"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	r, ok := s.Rail("live")
	if !ok || r.Title != "Live now" {
		t.Errorf("Rail(live) = %+v, %v", r, ok)
	}
	if _, ok := s.Rail("nope"); ok {
		t.Error("Rail(nope) should not exist")
	}
}

func TestCards(t *testing.T) {
	src := &fakeSource{
		cards: map[string][]model.Card{
			"https://a": {card("a1", "Chiefs vs Bills", "espn", "NFL"), card("a2", "Lakers at Celtics", "espn", "NBA")},
			"https://b": {card("b1", "Chiefs  vs. Bills", "espn", "nfl"), card("b2", "Derby", "dazn", "EPL")},
		},
		fail: map[string]bool{},
	}
	s := newService(src)

	got, err := s.Cards(context.Background(), "live")
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if diff := cmp.Diff([]string{"a1", "a2", "b2"}, ids(got)); diff != "" {
		t.Errorf("Cards() mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Cards(context.Background(), "live"); err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if n := src.callCount("https://a"); n != 1 {
		t.Errorf("source fetched %d times, want 1 (cached)", n)
	}
}

func TestCardsUnknownRail(t *testing.T) {
	s := newService(&fakeSource{})
	if _, err := s.Cards(context.Background(), "nope"); !errors.Is(err, ErrUnknownRail) {
		t.Errorf("err = %v, want ErrUnknownRail", err)
	}
}

func TestCardsSkipsFailingSource(t *testing.T) {
	src := &fakeSource{
		cards: map[string][]model.Card{"https://b": {card("b1", "Derby", "dazn", "EPL")}},
		fail:  map[string]bool{"https://a": true},
	}
	s := newService(src)

	got, err := s.Cards(context.Background(), "live")
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if diff := cmp.Diff([]string{"b1"}, ids(got)); diff != "" {
		t.Errorf("Cards() mismatch (-want +got):\n%s", diff)
	}

	// Failures are not cached.
	_, _ = s.Cards(context.Background(), "live")
	if n := src.callCount("https://a"); n != 2 {
		t.Errorf("failing source fetched %d times, want 2", n)
	}
}

func TestSearch(t *testing.T) {
	src := &fakeSource{
		cards: map[string][]model.Card{
			"https://a": {card("a1", "Chiefs vs Bills", "espn", "NFL")},
			"https://b": {card("b1", "Lakers at Celtics", "espn", "NBA")},
			"https://c": {card("c1", "Chiefs vs Bills", "espn", "NFL"), card("c2", "The Chiefs Story", "netflix", "")},
		},
	}
	s := newService(src)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "chiefs", want: []string{"a1", "c2"}},
		{query: "league:nba", want: []string{"b1"}},
		{query: "chiefs -netflix", want: []string{"a1"}},
		{query: "hockey", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := filter.Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(s.Search(context.Background(), q))); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}
