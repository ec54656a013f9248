package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/postmove/backend/internal/router"
	"github.com/itchan-dev/postmove/backend/internal/setup"
	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	deps.Access.StartBackgroundUpdate(ctx, cfg.Public.CategoryAccessRefreshInterval*time.Second, deps.Storage)

	if err := deps.Queue.Start(ctx); err != nil {
		logger.Log.Error("failed to start job queue", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Public.ListenAddr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Log.Error("server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("failed to shut down server", "error", err)
	}
	if err := deps.Queue.Stop(shutdownCtx); err != nil {
		logger.Log.Error("failed to stop job queue", "error", err)
	}
	logger.Log.Info("server stopped")
}
