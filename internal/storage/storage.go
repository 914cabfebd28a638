// Package storage defines the keyed persistence interfaces and their implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned by KV.Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// KV is a keyed byte store. Values are opaque to the store; callers encode them.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Storage is the interface for the persistent, namespaced store.
type Storage interface {
	Bucket(namespace string) KV
	Namespaces(ctx context.Context, key string) ([]string, error)

	MarkNotified(ctx context.Context, namespace, cardKey string) error
	IsNotified(ctx context.Context, namespace, cardKey string) (bool, error)

	Close() error
}

const chatPrefix = "chat:"

// ChatNamespace returns the namespace holding the state of one chat.
func ChatNamespace(chatID int64) string {
	return chatPrefix + strconv.FormatInt(chatID, 10)
}

// ParseChatNamespace extracts the chat ID from a namespace built by ChatNamespace.
func ParseChatNamespace(ns string) (int64, error) {
	raw, ok := strings.CutPrefix(ns, chatPrefix)
	if !ok {
		return 0, fmt.Errorf("namespace %q is not a chat namespace", ns)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse chat id %q: %w", raw, err)
	}
	return id, nil
}
