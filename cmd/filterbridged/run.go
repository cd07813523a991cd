package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"filterbridge/internal/config"
	"filterbridge/internal/daemon"
	"filterbridge/internal/logging"
	"filterbridge/internal/notifier"
	"filterbridge/internal/preflight"
	"filterbridge/internal/store"
)

type options struct {
	configPath string
	envFile    string
	// ready, when set, receives the running daemon once the socket is up.
	ready func(*daemon.Daemon)
}

func loadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func run(ctx context.Context, opts options) error {
	if err := loadEnv(opts.envFile); err != nil {
		return err
	}

	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if failed := preflight.Failed(preflight.RunAll(ctx, cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, r.Name+": "+r.Detail)
		}
		logging.ErrorWithContext(logger, "preflight checks failed", "daemon.preflight_failed",
			logging.String("failures", strings.Join(details, "; ")),
			logging.String(logging.FieldErrorHint, "run `filterbridge doctor` for details"),
		)
		return fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
	}

	hub := notifier.NewHub()
	st, err := store.Open(cfg, hub)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	d, err := daemon.New(cfg, st, hub, logger)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer closeDaemon(d, logger)

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if opts.ready != nil {
		opts.ready(d)
	}

	<-ctx.Done()
	logger.Info("filterbridged shutting down", logging.Int("pid", os.Getpid()))
	return nil
}

func closeDaemon(d *daemon.Daemon, logger *slog.Logger) {
	if err := d.Close(); err != nil {
		logging.WarnWithContext(logger, "failed to close store", "daemon.close_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "database may need recovery on next start"),
		)
	}
}
