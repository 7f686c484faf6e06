package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/shadowcast/internal/infra/config"
	"github.com/yanqian/shadowcast/internal/infra/scheduler"
)

// App encapsulates the HTTP server and analysis schedule lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler *scheduler.Scheduler
}

// NewApp is used by Wire to build the runnable app. sched is nil when periodic
// analyses are disabled.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, sched *scheduler.Scheduler) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, scheduler: sched}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "store", a.cfg.Store.Driver)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()
	a.scheduler.Start()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	case err := <-errCh:
		if stopErr := a.stopScheduler(); stopErr != nil {
			a.logger.Warn("scheduler stop failed", "error", stopErr)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduled analysis still running at shutdown", "error", err)
	}
	return a.server.Shutdown(shutdownCtx)
}

func (a *App) stopScheduler() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.scheduler.Stop(ctx)
}
