package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"filterbridge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The socket lives in a short temp dir so it stays under the unix socket
// path limit.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(shortTempDir(t), "fb.sock")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithEnvironment overrides the environment options reported in snapshots.
func WithEnvironment(env config.Environment) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Environment = env
	}
}

// WithFilterIDs replaces the known anti-banner filter identifiers.
func WithFilterIDs(ids map[string]int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Filters.AntiBannerIDs = ids
	}
}

// WithMaxMessageBytes sets the inbound message size limit.
func WithMaxMessageBytes(n int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.UI.MaxMessageBytes = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

func shortTempDir(t testing.TB) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "fb")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}
