// Package kv is the persistence port of the inventory store: durable get, set
// and remove of opaque string values by string key.
//
// It is the only layer that touches the underlying storage. Every backend
// failure is reported wrapped in database.ErrStorageIO. An absent key is not
// a failure; Get reports it through its ok result.
//
// SetMany and RemoveMany apply a group of keys all-or-nothing, which is what
// lets a product mutation and its transaction record land together.
package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/safar/go-inventory-store/internal/config"
	"github.com/safar/go-inventory-store/internal/database"
)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	SetMany(ctx context.Context, entries map[string]string) error
	RemoveMany(ctx context.Context, keys ...string) error
	Close() error
}

// Open builds the backend named by cfg.Storage.Driver and applies the
// configured key prefix.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		s = NewMemory()
	case config.DriverSQLite:
		s, err = OpenSQLite(ctx, cfg.Storage.Path)
	case config.DriverPostgres:
		db, dbErr := database.NewConnection(&cfg.Database)
		if dbErr != nil {
			return nil, fmt.Errorf("connect postgres: %w", dbErr)
		}
		s, err = NewPostgres(ctx, db)
		if err != nil {
			db.Close()
		}
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s, err = NewRedis(ctx, client)
		if err != nil {
			client.Close()
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	return WithPrefix(s, cfg.Storage.KeyPrefix), nil
}
