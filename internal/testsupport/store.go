package testsupport

import (
	"context"
	"testing"

	"jellyjams/internal/config"
	"jellyjams/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginPass starts a pass for tests using the provided store.
func BeginPass(t testing.TB, store *history.Store) *history.Pass {
	t.Helper()

	pass, err := store.BeginPass(context.Background())
	if err != nil {
		t.Fatalf("store.BeginPass: %v", err)
	}
	return pass
}
