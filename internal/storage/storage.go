// Package storage is the key-value engine under the repositories. Values are
// opaque JSON documents; each backend stores them under a string key.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nthung-2k5/eventsphere/pkg/config"
	"github.com/nthung-2k5/eventsphere/pkg/database"
)

var ErrNotFound = errors.New("storage: key not found")

type Storage interface {
	// Get returns ErrNotFound when key was never written or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite", "":
		s, err := OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s, err := NewPostgres(ctx, pool)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.Storage.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
