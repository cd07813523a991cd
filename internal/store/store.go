package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"filterbridge/internal/catalog"
	"filterbridge/internal/config"
	"filterbridge/internal/notifier"
)

// Event names published after committed mutations.
const (
	EventSettingUpdated              = "settingUpdated"
	EventFilterEnabledDisabled       = "filterEnabledDisabled"
	EventFilterGroupEnabledDisabled  = "filterGroupEnabledDisabled"
	EventWhitelistUpdated            = "updateWhitelistFilterRules"
	EventDefaultWhitelistModeChanged = "defaultWhitelistModeChanged"
	EventUserRulesUpdated            = "updateUserFilterRules"
)

// ErrUnknownFilter reports a filter id absent from the catalog.
var ErrUnknownFilter = errors.New("unknown filter")

// ErrUnknownGroup reports a group id absent from the catalog.
var ErrUnknownGroup = errors.New("unknown filter group")

// Store is the SQLite-backed collaborator set.
type Store struct {
	db     *sql.DB
	path   string
	events notifier.Publisher
}

// Open initializes or connects to the database, applies migrations and seeds
// the built-in catalog. events may be nil.
func Open(cfg *config.Config, events notifier.Publisher) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	builtin, err := catalog.Builtin()
	if err != nil {
		return nil, err
	}
	return OpenPath(context.Background(), cfg.DatabasePath(), builtin, events)
}

// OpenPath opens the database at path and seeds it with cat.
func OpenPath(ctx context.Context, path string, cat *catalog.Catalog, events notifier.Publisher) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serializes writers; one connection keeps transactions simple.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path, events: events}
	if err := s.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if cat != nil {
		if err := s.SeedCatalog(ctx, cat); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SetPublisher replaces the event publisher. Intended for wiring before the
// store is shared.
func (s *Store) SetPublisher(events notifier.Publisher) {
	s.events = events
}

func (s *Store) publish(name string, args ...any) {
	if s.events == nil {
		return
	}
	s.events.Publish(name, args...)
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
