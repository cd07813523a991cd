package testsupport

import (
	"testing"

	"filterbridge/internal/config"
	"filterbridge/internal/notifier"
	"filterbridge/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup. events
// may be nil.
func MustOpenStore(t testing.TB, cfg *config.Config, events notifier.Publisher) *store.Store {
	t.Helper()

	st, err := store.Open(cfg, events)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}
