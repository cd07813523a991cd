package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filterbridge/internal/daemon"
	"filterbridge/internal/ipc"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	sockDir, err := os.MkdirTemp("", "fbd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(sockDir) })

	body := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(base, "data") + `"`,
		`log_dir = "` + filepath.Join(base, "logs") + `"`,
		`socket_path = "` + filepath.Join(sockDir, "fb.sock") + `"`,
		"",
		"[logging]",
		`level = "error"`,
		"",
	}, "\n")
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunServesUntilCanceled(t *testing.T) {
	cfgPath := writeConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan *daemon.Daemon, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, options{
			configPath: cfgPath,
			envFile:    filepath.Join(t.TempDir(), "missing.env"),
			ready:      func(d *daemon.Daemon) { ready <- d },
		})
	}()

	var d *daemon.Daemon
	select {
	case d = <-ready:
	case err := <-errCh:
		if err != nil && strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping daemon run test: %v", err)
		}
		t.Fatalf("run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not become ready")
	}

	socket := d.Status().SocketPath
	status, err := ipc.FetchStatus(ctx, socket)
	if err != nil {
		t.Fatalf("FetchStatus: %v", err)
	}
	if !status.Running {
		t.Fatalf("expected running status, got %+v", status)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}
	if _, err := os.Stat(socket); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, stat err = %v", err)
	}
}

func TestLoadEnvReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("FILTERBRIDGE_TEST_VALUE=from-env-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FILTERBRIDGE_TEST_VALUE", "")
	os.Unsetenv("FILTERBRIDGE_TEST_VALUE")

	if err := loadEnv(path); err != nil {
		t.Fatalf("loadEnv: %v", err)
	}
	if got := os.Getenv("FILTERBRIDGE_TEST_VALUE"); got != "from-env-file" {
		t.Fatalf("expected value from env file, got %q", got)
	}
	if err := loadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}
