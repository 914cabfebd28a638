// Package engagement keeps the capped viewing and attribution logs.
package engagement

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"ampere/internal/model"
	"ampere/internal/storage"
)

// Storage keys of the two logs.
const (
	ViewingKey     = "ampere.viewing.v1"
	AttributionKey = "ampere.attribution.v1"
)

// Default caps.
const (
	DefaultViewingCap     = 300
	DefaultAttributionCap = 600
)

// SessionSource returns the identifier of the current session.
type SessionSource interface {
	ID(ctx context.Context) string
}

// Sink receives every tracked attribution event as a side channel.
type Sink interface {
	Emit(ctx context.Context, ev model.AttributionEvent)
}

// Options tunes a Log. Zero values select the defaults.
type Options struct {
	ViewingCap     int
	AttributionCap int
	Now            func() time.Time
	Sink           Sink
}

// Log appends to the viewing and attribution logs of one owner.
//
// Writes replace the whole list. Two processes appending to the same owner
// concurrently lose one append (last write wins); within a process appends are
// serialized.
type Log struct {
	kv      storage.KV
	session SessionSource
	log     *slog.Logger

	viewingCap     int
	attributionCap int
	now            func() time.Time
	sink           Sink

	mu sync.Mutex
}

// New creates a Log over kv.
func New(kv storage.KV, session SessionSource, log *slog.Logger, opts Options) *Log {
	l := &Log{
		kv:             kv,
		session:        session,
		log:            log,
		viewingCap:     opts.ViewingCap,
		attributionCap: opts.AttributionCap,
		now:            opts.Now,
		sink:           opts.Sink,
	}
	if l.viewingCap <= 0 {
		l.viewingCap = DefaultViewingCap
	}
	if l.attributionCap <= 0 {
		l.attributionCap = DefaultAttributionCap
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.sink == nil {
		l.sink = NewLogSink(log)
	}
	return l
}

// LoadViewing returns the viewing log, oldest first.
func (l *Log) LoadViewing(ctx context.Context) []model.ViewingEvent {
	return tail(load[model.ViewingEvent](ctx, l, ViewingKey), l.viewingCap)
}

// SaveViewing persists the newest entries of events, up to the cap.
func (l *Log) SaveViewing(ctx context.Context, events []model.ViewingEvent) {
	save(ctx, l, ViewingKey, tail(events, l.viewingCap))
}

// LoadAttribution returns the attribution log, oldest first.
func (l *Log) LoadAttribution(ctx context.Context) []model.AttributionEvent {
	return tail(load[model.AttributionEvent](ctx, l, AttributionKey), l.attributionCap)
}

// SaveAttribution persists the newest entries of events, up to the cap.
func (l *Log) SaveAttribution(ctx context.Context, events []model.AttributionEvent) {
	save(ctx, l, AttributionKey, tail(events, l.attributionCap))
}

// LogViewing appends an event for card stamped with the current time.
func (l *Log) LogViewing(ctx context.Context, card model.Card) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.LoadViewing(ctx)
	events = append(events, model.ViewingEvent{
		ID:         card.ID,
		Title:      card.Title,
		PlatformID: card.PlatformID,
		League:     card.League,
		At:         l.now().UTC(),
	})
	l.SaveViewing(ctx, events)
}

// Track appends a named attribution event and emits it to the sink.
func (l *Log) Track(ctx context.Context, name string, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	ev := model.AttributionEvent{
		At:        l.now().UTC(),
		SessionID: l.session.ID(ctx),
		Event:     name,
		Props:     props,
	}

	l.mu.Lock()
	events := l.LoadAttribution(ctx)
	l.SaveAttribution(ctx, append(events, ev))
	l.mu.Unlock()

	l.sink.Emit(ctx, ev)
}

func load[T any](ctx context.Context, l *Log, key string) []T {
	raw, err := l.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.Warn("read log", "key", key, "error", err)
		}
		return nil
	}
	var events []T
	if err := json.Unmarshal(raw, &events); err != nil {
		l.log.Warn("decode log", "key", key, "error", err)
		return nil
	}
	return events
}

func save[T any](ctx context.Context, l *Log, key string, events []T) {
	if events == nil {
		events = []T{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		l.log.Warn("encode log", "key", key, "error", err)
		return
	}
	if err := l.kv.Put(ctx, key, raw); err != nil {
		l.log.Warn("write log", "key", key, "error", err)
	}
}

// tail returns the last n elements of s in their original order.
func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
