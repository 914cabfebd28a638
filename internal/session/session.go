// Package session issues the opaque identifier that correlates attribution
// events within one session.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ampere/internal/storage"
)

// Key is the session-scoped storage key of the identifier. The value is the raw
// identifier, not JSON.
const Key = "ampere.session.v1"

// Generator produces a new opaque identifier.
type Generator func() string

// Identity hands out the session identifier for one session-scoped store.
type Identity struct {
	store storage.KV
	gen   Generator
	log   *slog.Logger
}

// New creates an Identity. A nil gen falls back to random UUIDs.
func New(store storage.KV, gen Generator, log *slog.Logger) *Identity {
	if gen == nil {
		gen = uuid.NewString
	}
	return &Identity{store: store, gen: gen, log: log}
}

// ID returns the identifier stored for this session, creating it on first use.
// When the store cannot be read or written, a fresh identifier is returned on
// every call instead.
func (i *Identity) ID(ctx context.Context) string {
	raw, err := i.store.Get(ctx, Key)
	if err == nil && len(raw) > 0 {
		return string(raw)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		i.log.Warn("read session id", "error", err)
		return i.gen()
	}

	id := i.gen()
	if err := i.store.Put(ctx, Key, []byte(id)); err != nil {
		i.log.Warn("persist session id", "error", err)
	}
	return id
}
