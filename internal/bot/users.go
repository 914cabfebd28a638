package bot

import (
	"log/slog"
	"sync"

	"ampere/internal/engagement"
	"ampere/internal/model"
	"ampere/internal/profile"
	"ampere/internal/session"
	"ampere/internal/storage"
)

// User bundles the per-chat stores. The profile and logs live in the chat's
// SQLite bucket; the session id lives in process memory and is regenerated
// after a restart.
type User struct {
	Profile    *profile.Store
	Engagement *engagement.Log
	Session    *session.Identity
}

// Users hands out one User per chat.
type Users struct {
	store    storage.Storage
	sessions *storage.Memory
	defaults model.Profile
	opts     engagement.Options
	log      *slog.Logger

	mu    sync.Mutex
	users map[int64]*User
}

// NewUsers creates a registry over store. Every chat starts from defaults.
func NewUsers(store storage.Storage, defaults model.Profile, opts engagement.Options, log *slog.Logger) *Users {
	return &Users{
		store:    store,
		sessions: storage.NewMemory(),
		defaults: defaults,
		opts:     opts,
		log:      log,
		users:    make(map[int64]*User),
	}
}

// For returns the User of chatID, creating it on first use.
func (u *Users) For(chatID int64) *User {
	u.mu.Lock()
	defer u.mu.Unlock()

	if usr, ok := u.users[chatID]; ok {
		return usr
	}

	ns := storage.ChatNamespace(chatID)
	local := u.store.Bucket(ns)
	log := u.log.With("chat_id", chatID)
	id := session.New(u.sessions.Scoped(ns), nil, log)

	usr := &User{
		Profile:    profile.New(local, u.defaults, log),
		Engagement: engagement.New(local, id, log, u.opts),
		Session:    id,
	}
	u.users[chatID] = usr
	return usr
}
