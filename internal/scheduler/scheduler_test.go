package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ampere/internal/bot"
	"ampere/internal/cache"
	"ampere/internal/engagement"
	"ampere/internal/model"
	"ampere/internal/profile"
	"ampere/internal/rails"
	"ampere/internal/rank"
	"ampere/internal/storage"
)

type sentCard struct {
	ChatID int64
	CardID string
	Text   string
}

type mockSender struct {
	mu   sync.Mutex
	sent []sentCard
}

func (m *mockSender) SendCard(chatID int64, text string, card model.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentCard{ChatID: chatID, CardID: card.ID, Text: text})
}

func (m *mockSender) getSent() []sentCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]sentCard, len(m.sent))
	copy(cp, m.sent)
	return cp
}

type fakeSource struct {
	mu    sync.Mutex
	cards map[string][]model.Card
}

func (f *fakeSource) SourceCards(_ context.Context, src model.Source) ([]model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cards, ok := f.cards[src.URL]
	if !ok {
		return nil, errors.New("no such source")
	}
	return cards, nil
}

var (
	nflLive  = model.Card{ID: "nfl", Title: "Chiefs vs Bills", PlatformID: "espn", League: "NFL", Badge: model.BadgeLive}
	eplLive  = model.Card{ID: "epl", Title: "Derby", PlatformID: "dazn", League: "EPL", Badge: model.BadgeLive}
	nbaSoon  = model.Card{ID: "nba", Title: "Lakers at Celtics", PlatformID: "espn", League: "NBA", Badge: model.BadgeUpcoming}
	movieHot = model.Card{ID: "movie", Title: "Premiere", PlatformID: "netflix", Badge: model.BadgeLive}
)

type testEnv struct {
	sched  *Scheduler
	sender *mockSender
	store  *storage.SQLite
	users  *bot.Users
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	railList := []model.Rail{
		{Name: "live", Notify: true, Sources: []model.Source{{URL: "https://live"}, {URL: "https://broken"}}},
		{Name: "movies", Sources: []model.Source{{URL: "https://movies"}}},
	}
	src := &fakeSource{cards: map[string][]model.Card{
		"https://live":   {eplLive, nbaSoon, nflLive},
		"https://movies": {movieHot},
	}}
	svc := rails.New(railList, src, cache.NewLRU[[]model.Card](10, time.Minute), log)
	users := bot.NewUsers(store, profile.Default(), engagement.Options{}, log)
	sender := &mockSender{}

	s := New(store, users, svc, rank.New(rank.DefaultConfig()), sender, log)
	s.pause = 0
	return testEnv{sched: s, sender: sender, store: store, users: users}
}

func TestSchedulerSendsFavoriteLiveCardsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	usr := env.users.For(100)
	usr.Profile.Save(ctx, usr.Profile.Load(ctx))

	env.sched.checkAll(ctx)
	env.sched.checkAll(ctx)

	want := []sentCard{{ChatID: 100, CardID: "nfl", Text: bot.FormatLiveNotification(nflLive)}}
	if diff := cmp.Diff(want, env.sender.getSent()); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}

	notified, err := env.store.IsNotified(ctx, storage.ChatNamespace(100), "chiefsvsbills|espn|nfl|")
	if err != nil {
		t.Fatalf("IsNotified: %v", err)
	}
	if !notified {
		t.Error("card should be marked notified")
	}

	events := usr.Engagement.LoadAttribution(ctx)
	if diff := cmp.Diff(1, len(events)); diff != "" {
		t.Fatalf("attribution count (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("live_alert", events[0].Event); diff != "" {
		t.Errorf("event (-want +got):\n%s", diff)
	}
}

func TestSchedulerHonorsNotificationsDisabled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.users.For(100).Profile.SetNotifications(ctx, false)
	env.sched.checkAll(ctx)

	if got := env.sender.getSent(); len(got) != 0 {
		t.Errorf("expected no alerts, got %v", got)
	}
}

func TestSchedulerSkipsChatsWithoutProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Viewing history alone does not register a chat.
	env.users.For(300).Engagement.LogViewing(ctx, nflLive)
	env.sched.checkAll(ctx)

	if got := env.sender.getSent(); len(got) != 0 {
		t.Errorf("expected no alerts, got %v", got)
	}
}

func TestSchedulerPerChatFavorites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.users.For(100).Profile.Save(ctx, profile.Default())
	if _, _, err := env.users.For(200).Profile.ToggleFavorite(ctx, model.FavoriteLeague, "EPL"); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	env.sched.checkAll(ctx)

	// Chat 200 keeps the default NFL favorite and adds EPL; the live EPL card
	// ranks below NFL (18+4 vs 8+4).
	want := []sentCard{
		{ChatID: 100, CardID: "nfl", Text: bot.FormatLiveNotification(nflLive)},
		{ChatID: 200, CardID: "nfl", Text: bot.FormatLiveNotification(nflLive)},
		{ChatID: 200, CardID: "epl", Text: bot.FormatLiveNotification(eplLive)},
	}
	if diff := cmp.Diff(want, env.sender.getSent()); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	env.sched.SetTickInterval(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.sched.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
