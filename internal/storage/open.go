package storage

import (
	"context"
	"fmt"

	"github.com/Varun5711/shortlinks/internal/config"
	"github.com/Varun5711/shortlinks/internal/database"
)

// Open builds the Storage selected by cfg.Storage.Driver. The returned close
// func releases the underlying pools.
func Open(ctx context.Context, cfg *config.Config) (Storage, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewDBManager(ctx, database.Config{
			PrimaryDSN:      cfg.Database.PrimaryDSN,
			ReplicaDSNs:     cfg.Database.ReplicaDSNs,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := EnsurePostgresSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewPostgresStorage(db), db.Close, nil

	case "sqlite":
		store, err := NewSQLiteStorage(ctx, cfg.Storage.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case "memory":
		return NewMemoryStorage(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
