package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"filterbridge/internal/config"
	"filterbridge/internal/dispatch"
	"filterbridge/internal/ipc"
	"filterbridge/internal/logging"
	"filterbridge/internal/notifier"
	"filterbridge/internal/snapshot"
	"filterbridge/internal/store"
)

// Daemon owns the bridge lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *store.Store
	hub        *notifier.Hub
	dispatcher *dispatch.Dispatcher

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	server    *ipc.Server
	startedAt time.Time
	running   atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	SocketPath   string
	DatabasePath string
	LockFilePath string
	Windows      int
	StartedAt    time.Time
}

// New constructs a daemon over an open store. The store should publish to
// hub so windows receive backend events.
func New(cfg *config.Config, st *store.Store, hub *notifier.Hub, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || hub == nil {
		return nil, errors.New("daemon requires config, store, and notifier hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	builder := snapshot.FromConfig(st, cfg)
	d, err := dispatch.New(dispatch.FromBackend(st, builder), logger)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      st,
		hub:        hub,
		dispatcher: d,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins accepting UI windows.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another filterbridge daemon instance is already running")
	}

	srv, err := ipc.NewServer(ctx, d.cfg, d.dispatcher, d.hub, d.logger)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("start ipc server: %w", err)
	}
	srv.SetStatusFunc(d.statusResponse)
	srv.Serve()

	d.server = srv
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("filterbridge daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("socket", srv.Path()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop disconnects every window, stops the IPC server and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return
	}
	srv := d.server
	d.server = nil
	d.running.Store(false)
	d.mu.Unlock()

	// Close outside the lock; in-flight status requests read Status.
	if srv != nil {
		srv.Close()
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon.unlock_failed",
			logging.String("lock", d.lockPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next start may report another instance running"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no daemon is running"),
		)
	}
	d.logger.Info("filterbridge daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	started := d.startedAt
	windows := 0
	if d.server != nil {
		windows = d.server.Windows()
	}
	d.mu.Unlock()

	running := d.running.Load()
	if !running {
		started = time.Time{}
	}
	return Status{
		Running:      running,
		PID:          os.Getpid(),
		SocketPath:   d.cfg.Paths.SocketPath,
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Windows:      windows,
		StartedAt:    started,
	}
}

func (d *Daemon) statusResponse() ipc.StatusResponse {
	st := d.Status()
	return ipc.StatusResponse{
		Running:      st.Running,
		PID:          st.PID,
		SocketPath:   st.SocketPath,
		DatabasePath: st.DatabasePath,
		LockPath:     st.LockFilePath,
		Windows:      st.Windows,
		StartedAt:    st.StartedAt,
	}
}
