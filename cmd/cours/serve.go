package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/server"
	"github.com/nathbrawlstatsr-afk/cours/internal/watcher"
	"github.com/nathbrawlstatsr-afk/cours/pkg/utils"
)

const (
	lockFileName    = "cours.lock"
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and watch course material directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// acquireDataLock takes an exclusive lock on the data directory so two servers never
// share one store.
func acquireDataLock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	lockPath := filepath.Join(dataDir, lockFileName)
	l := flock.New(lockPath)
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cannot acquire data lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another cours server is using %s (lock: %s)", dataDir, lockPath)
	}
	return l, nil
}

func runServe(parent context.Context, opts *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, configPath, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || opts.debug
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("config loaded", zap.String("config_path", configPath), zap.Bool("debug", debug))

	lock, err := acquireDataLock(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	watchOpts := []watcher.Option{
		watcher.WithLogger(logger),
		watcher.WithDebounce(cfg.Materials.Debounce),
		watcher.WithOnChange(func(ctx context.Context) { components.Enrich(ctx, logger) }),
	}
	watch := watcher.New(cfg.Materials.Directories, cfg.Materials.RecursiveOrDefault(), components.Ingester, watchOpts...)
	if err := watch.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watch.Stop()
	watch.SyncExistingFiles()
	components.Enrich(ctx, logger)

	svc := components.Services()
	svc.Watcher = watch
	svc.ConfigPath = configPath
	srv := server.NewServer(svc, &cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
