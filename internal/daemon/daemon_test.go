package daemon_test

import (
	"context"
	"strings"
	"testing"

	"filterbridge/internal/daemon"
	"filterbridge/internal/ipc"
	"filterbridge/internal/logging"
	"filterbridge/internal/notifier"
	"filterbridge/internal/protocol"
	"filterbridge/internal/testsupport"
)

func newDaemon(t *testing.T) (*daemon.Daemon, *notifier.Hub) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	hub := notifier.NewHub()
	st := testsupport.MustOpenStore(t, cfg, hub)
	d, err := daemon.New(cfg, st, hub, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})
	return d, hub
}

func startDaemon(t *testing.T, d *daemon.Daemon, ctx context.Context) {
	t.Helper()
	if err := d.Start(ctx); err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping daemon test: %v", err)
		}
		t.Fatalf("Start failed: %v", err)
	}
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startDaemon(t, d, ctx)

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.StartedAt.IsZero() {
		t.Fatal("expected start time to be recorded")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status()
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if status.Windows != 0 {
		t.Fatalf("expected no windows after stop, got %d", status.Windows)
	}

	// Restart after a clean stop reacquires the lock.
	startDaemon(t, d, ctx)
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	hubA := notifier.NewHub()
	first, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg, hubA), hubA, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(first.Stop)
	startDaemon(t, first, ctx)

	hubB := notifier.NewHub()
	second, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg, hubB), hubB, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	err = second.Start(ctx)
	if err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDaemonServesWindowsAndStatus(t *testing.T) {
	d, hub := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startDaemon(t, d, ctx)

	socket := d.Status().SocketPath
	client, err := ipc.Dial(ctx, socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	defer client.Close()

	frame, err := client.Call(ctx, protocol.TagGetFiltersMetadata, nil)
	if err != nil {
		t.Fatalf("Call getFiltersMetadata: %v", err)
	}
	if frame.Channel != protocol.ChannelFiltersMetadataResult {
		t.Fatalf("unexpected channel %q", frame.Channel)
	}
	if hub.Len() != 1 {
		t.Fatalf("expected one subscription, got %d", hub.Len())
	}

	status, err := ipc.FetchStatus(ctx, socket)
	if err != nil {
		t.Fatalf("FetchStatus: %v", err)
	}
	if !status.Running || status.Windows != 1 || status.DatabasePath == "" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
