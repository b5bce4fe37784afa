package testsupport

import (
	"testing"

	"pcsteps/internal/config"
	"pcsteps/internal/registry"
)

// MustOpenRegistry opens the configured registry for tests and registers
// cleanup.
func MustOpenRegistry(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, err := registry.Open(cfg)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
