// Package app assembles the portal core from configuration. It is shared by
// the HTTP server and the admin CLI.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/api/metrics"
	"github.com/kalakrut/portal/internal/core/ports"
	"github.com/kalakrut/portal/internal/core/service"
	"github.com/kalakrut/portal/internal/infrastructure/db/mongo"
	"github.com/kalakrut/portal/internal/infrastructure/db/postgres"
	redisdb "github.com/kalakrut/portal/internal/infrastructure/db/redis"
	"github.com/kalakrut/portal/internal/infrastructure/file"
	"github.com/kalakrut/portal/internal/infrastructure/seed"
	"github.com/kalakrut/portal/internal/pkg/config"
)

// Backing holds the opened store and the connections behind it.
type Backing struct {
	Store   ports.DirectoryStore
	Redis   *redis.Client
	Pingers map[string]ports.Pinger

	closers []func()
}

// Close releases every connection in reverse opening order.
func (b *Backing) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// OpenBacking connects the configured directory store, plus Redis when
// notifications are published there. The memory backend opens nothing.
func OpenBacking(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backing, error) {
	b := &Backing{Pingers: map[string]ports.Pinger{}}

	if cfg.NeedsRedis() {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		b.Redis = rdb
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.Pingers["redis"] = redisdb.Pinger{Client: rdb}
	}

	var store ports.DirectoryStore
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn().Msg("directory is memory-only; changes are lost on restart")
		return b, nil

	case config.BackendFile:
		fs := file.NewDirectoryStore(cfg.Store.File)
		b.Pingers["file"] = fs
		store = fs

	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		ms := mongo.NewDirectoryStore(db)
		if err := ms.EnsureIndexes(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Pingers["mongodb"] = ms
		store = ms

	case config.BackendRedis:
		rs := redisdb.NewDirectoryStore(b.Redis, "")
		store = rs

	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.DSN})
		if err != nil {
			b.Close()
			return nil, err
		}
		ps, err := postgres.NewDirectoryStore(ctx, pool)
		if err != nil {
			pool.Close()
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, ps.Close)
		b.Pingers["postgres"] = ps
		store = ps

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	b.Store = metrics.InstrumentStore(store, cfg.Store.Backend)
	return b, nil
}

// Core is the assembled service layer.
type Core struct {
	Directory  *service.Directory
	Resolver   *service.Resolver
	Moderation *service.ModerationService
	Router     *service.ViewRouter
}

// BuildCore bootstraps the directory from store or seed and wires the
// services around it.
func BuildCore(ctx context.Context, cfg *config.Config, store ports.DirectoryStore, log zerolog.Logger) (*Core, error) {
	seeds, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	templates, err := seeds.Templates()
	if err != nil {
		return nil, err
	}

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	dir := service.NewDirectory(store, log.With().Str("component", "directory").Logger())
	if err := dir.Bootstrap(ctx, seeds, hasher); err != nil {
		return nil, err
	}

	return &Core{
		Directory: dir,
		Resolver: service.NewResolver(dir, hasher, templates, cfg.Auth.AutoRegister,
			log.With().Str("component", "resolver").Logger()),
		Moderation: service.NewModerationService(log.With().Str("component", "moderation").Logger()),
		Router:     service.NewViewRouter(),
	}, nil
}

// PortalDeps returns the collaborators shared by every portal.
func (c *Core) PortalDeps(notifier ports.Notifier, log zerolog.Logger) service.PortalDeps {
	return service.PortalDeps{
		Resolver:   c.Resolver,
		Directory:  c.Directory,
		Moderation: c.Moderation,
		Router:     c.Router,
		Notifier:   notifier,
		Log:        log,
	}
}

