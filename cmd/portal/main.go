// @title          KalaKrut Portal API
// @version        1.0
// @description    Session resolution, permissions, view routing and moderation for the KalaKrut creative portal.
// @BasePath       /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/api"
	"github.com/kalakrut/portal/internal/app"
	"github.com/kalakrut/portal/internal/core/ports"
	"github.com/kalakrut/portal/internal/core/service"
	redisdb "github.com/kalakrut/portal/internal/infrastructure/db/redis"
	"github.com/kalakrut/portal/internal/infrastructure/queue"
	"github.com/kalakrut/portal/internal/infrastructure/sessions"
	"github.com/kalakrut/portal/internal/infrastructure/wallet"
	"github.com/kalakrut/portal/internal/pkg/config"
	"github.com/kalakrut/portal/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
	refreshInterval = 30 * time.Second
)

func main() {
	envErr := godotenv.Load()

	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "portal",
		Env:     cfg.Env,
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; tokens are signed with an empty key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("portal stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backing, err := app.OpenBacking(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer backing.Close()

	core, err := app.BuildCore(ctx, cfg, backing.Store, log)
	if err != nil {
		return err
	}

	inbox := sessions.NewInbox(0)
	sinks := []ports.NotificationSink{queue.NewLogSink(logger.Component("notifications")), inbox}
	if cfg.Notify.Redis {
		sinks = append(sinks, redisdb.NewNotificationPublisher(backing.Redis))
	}
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, logger.Component("dispatcher"), sinks...)
	dispatcher.Start(ctx)

	registry := sessions.NewRegistry()
	go sweep(ctx, registry, inbox, cfg.Sessions.IdleTTL, log)
	if cfg.Store.Backend == config.BackendFile {
		go refresh(ctx, core.Directory, logger.Component("directory"))
	}

	deps := core.PortalDeps(dispatcher, logger.Component("portal"))
	e := api.NewRouter(api.Deps{
		JWTSecret: cfg.JWTSecret,
		NewPortal: func(address string) *service.Portal {
			return service.NewPortal(deps, wallet.NewProvided(address))
		},
		Sessions:   registry,
		Tokens:     service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Inbox:      inbox,
		Directory:  core.Directory,
		Moderation: core.Moderation,
		Pingers:    backing.Pingers,
		Log:        logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Backend).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down")
	return e.Shutdown(shutdownCtx)
}

func sweep(ctx context.Context, registry *sessions.Registry, inbox *sessions.Inbox, idle time.Duration, log zerolog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := registry.Sweep(idle)
			for _, id := range removed {
				inbox.Forget(id)
			}
			if len(removed) > 0 {
				log.Debug().Int("sessions", len(removed)).Msg("idle sessions swept")
			}
		}
	}
}

// refresh reloads a directory file that portalctl may also write to.
func refresh(ctx context.Context, dir *service.Directory, log zerolog.Logger) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := dir.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("directory refresh failed")
			}
		}
	}
}
