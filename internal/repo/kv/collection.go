// Package kv implements the repositories over a storage.Storage. Each
// repository keeps its whole collection as one JSON array under a single key
// and rewrites it on every mutation.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nthung-2k5/eventsphere/internal/storage"
)

// Storage keys.
const (
	KeyUsers        = "users"
	KeyEvents       = "events"
	KeyEventSeq     = "seq-events"
	KeyQRCodes      = "qrcodes"
	KeyCertificates = "certificates"
	KeySessions     = "sessions"
)

// FeedbackKey is the per-event feedback collection key.
func FeedbackKey(eventID int64) string {
	return fmt.Sprintf("feedbacks-%d", eventID)
}

// collection serializes read-modify-write cycles on one key.
type collection[T any] struct {
	mu    sync.Mutex
	store storage.Storage
	key   string
}

func newCollection[T any](store storage.Storage, key string) *collection[T] {
	return &collection[T]{store: store, key: key}
}

// load returns an empty slice for a key that was never written.
func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	return loadJSON[T](ctx, c.store, c.key)
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	return saveJSON(ctx, c.store, c.key, items)
}

// read takes the lock for a consistent snapshot.
func (c *collection[T]) read(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// mutate loads, applies fn and saves when fn reports a change. Nothing is
// written when fn returns an error.
func (c *collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, changed, err := fn(items)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return c.save(ctx, next)
}

func loadJSON[T any](ctx context.Context, store storage.Storage, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveJSON[T any](ctx context.Context, store storage.Storage, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
