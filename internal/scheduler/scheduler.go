// Package scheduler pushes live cards that match a chat's favorites.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"ampere/internal/bot"
	"ampere/internal/dedup"
	"ampere/internal/model"
	"ampere/internal/profile"
	"ampere/internal/rank"
	"ampere/internal/storage"
)

// Sender is the interface for sending card messages.
type Sender interface {
	SendCard(chatID int64, text string, card model.Card)
}

// Rails supplies the cards to watch.
type Rails interface {
	Rails() []model.Rail
	Cards(ctx context.Context, name string) ([]model.Card, error)
}

// Scheduler periodically checks notify rails and sends live alerts.
type Scheduler struct {
	store  storage.Storage
	users  *bot.Users
	rails  Rails
	ranker *rank.Ranker
	sender Sender
	log    *slog.Logger
	tick   time.Duration
	pause  time.Duration
}

// New creates a Scheduler.
func New(store storage.Storage, users *bot.Users, rails Rails, ranker *rank.Ranker, sender Sender, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		users:  users,
		rails:  rails,
		ranker: ranker,
		sender: sender,
		log:    log,
		tick:   2 * time.Minute,
		pause:  50 * time.Millisecond,
	}
}

// SetTickInterval overrides the default 2-minute check interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	cards := s.watchedCards(ctx)
	if len(cards) == 0 {
		return
	}

	namespaces, err := s.store.Namespaces(ctx, profile.Key)
	if err != nil {
		s.log.Error("list profiles", "error", err)
		return
	}

	for _, ns := range namespaces {
		if ctx.Err() != nil {
			return
		}
		chatID, err := storage.ParseChatNamespace(ns)
		if err != nil {
			s.log.Warn("skip namespace", "namespace", ns, "error", err)
			continue
		}
		s.notifyChat(ctx, chatID, ns, cards)
	}
}

// watchedCards collects the live cards of every notify rail.
func (s *Scheduler) watchedCards(ctx context.Context) []model.Card {
	var cards []model.Card
	for _, r := range s.rails.Rails() {
		if !r.Notify {
			continue
		}
		rc, err := s.rails.Cards(ctx, r.Name)
		if err != nil {
			s.log.Error("load rail", "rail", r.Name, "error", err)
			continue
		}
		cards = append(cards, rc...)
	}
	return dedup.Dedupe(cards)
}

func (s *Scheduler) notifyChat(ctx context.Context, chatID int64, ns string, cards []model.Card) {
	usr := s.users.For(chatID)
	p := usr.Profile.Load(ctx)
	if !p.NotificationsEnabled {
		return
	}

	sent := 0
	for _, sc := range s.ranker.Ranked(cards, p, usr.Engagement.LoadViewing(ctx)) {
		if !sc.Live() || !sc.Favorite() {
			continue
		}
		key := dedup.Key(sc.Card)
		notified, err := s.store.IsNotified(ctx, ns, key)
		if err != nil {
			s.log.Error("check notified", "chat_id", chatID, "card", key, "error", err)
			continue
		}
		if notified {
			continue
		}

		s.sender.SendCard(chatID, bot.FormatLiveNotification(sc.Card), sc.Card)
		sent++

		if err := s.store.MarkNotified(ctx, ns, key); err != nil {
			s.log.Error("mark notified", "chat_id", chatID, "card", key, "error", err)
		}
		usr.Engagement.Track(ctx, "live_alert", map[string]any{
			"id":      sc.Card.ID,
			"reasons": sc.Reasons,
		})

		// Rate limit: ~20 messages/sec max for Telegram
		time.Sleep(s.pause)
	}

	if sent > 0 {
		s.log.Info("sent live alerts", "chat_id", chatID, "count", sent)
	}
}
