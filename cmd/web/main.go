// Package main provides the entry point for the timeline web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/narvanalabs/timeline/internal/app"
	"github.com/narvanalabs/timeline/internal/loader"
	"github.com/narvanalabs/timeline/internal/server"
	"github.com/narvanalabs/timeline/internal/shutdown"
	"github.com/narvanalabs/timeline/internal/watch"
	"github.com/narvanalabs/timeline/pkg/config"
	"github.com/narvanalabs/timeline/pkg/logger"
	"github.com/narvanalabs/timeline/web/health"
	"github.com/narvanalabs/timeline/web/live"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format != "text")

	pipeline := app.New(cfg, log)

	checker := health.NewChecker(func(ctx context.Context) error {
		_, err := pipeline.Fetcher.Fetch(ctx)
		return err
	}, iconChecker(cfg), health.Version)

	dataFile, local := pipeline.LocalDataFile()
	liveReload := cfg.WatchData && local

	var hub *live.Hub
	if liveReload {
		hub = live.NewHub(log)
	}

	srv := server.New(cfg, pipeline.Loader, hub, checker, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	if liveReload {
		w := watch.New(dataFile, watch.DefaultDebounce, func() {
			pipeline.Invalidate()
			hub.Broadcast(live.ReloadMessage)
		}, log)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	coordinator := shutdown.NewCoordinator(
		shutdown.WithTimeout(cfg.ShutdownTimeout),
		shutdown.WithLogger(log),
	)
	coordinator.Register(shutdown.Stop("background tasks", cancel))
	if hub != nil {
		coordinator.Register(shutdown.Stop("live reload", hub.Close))
	}
	coordinator.Register(shutdown.NewServerComponent("http server", srv))

	g.Go(func() error {
		return coordinator.WaitForSignal(gctx)
	})

	log.Info("timeline server configured",
		"data", cfg.DataSource,
		"addr", cfg.Addr(),
		"live_reload", liveReload,
		"cache_ttl", cfg.DataCacheTTL.String(),
	)

	runErr := g.Wait()
	shutdownErr := coordinator.Shutdown()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("server error", "error", runErr)
		os.Exit(1)
	}
	if shutdownErr != nil {
		log.Error("shutdown error", "error", shutdownErr)
	}
	log.Info("server stopped")
	os.Exit(coordinator.ExitCode())
}

// iconChecker reports a missing icons directory as a degraded component.
// Remote icon hosts are not checked.
func iconChecker(cfg *config.Config) health.IconChecker {
	if cfg.IconsDir == "" || loader.IsRemote(cfg.IconsURL) {
		return nil
	}
	return func(context.Context) error {
		info, err := os.Stat(cfg.IconsDir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", cfg.IconsDir)
		}
		return nil
	}
}
