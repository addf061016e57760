package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/senyafy/internal/shared"
)

func TestFileStore(t *testing.T) {
	newStore := func(t *testing.T) *FileStore {
		t.Helper()
		store, err := NewFileStore(filepath.Join(t.TempDir(), "tokens"))
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		return store
	}

	t.Run("write then read round-trips", func(t *testing.T) {
		store := newStore(t)

		if err := store.Write(KindAccess, "access-value"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := store.Read(KindAccess)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "access-value" {
			t.Errorf("expected %q, got %q", "access-value", got)
		}
	})

	t.Run("write replaces previous value", func(t *testing.T) {
		store := newStore(t)

		store.Write(KindRefresh, "old")
		store.Write(KindRefresh, "new")

		got, err := store.Read(KindRefresh)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "new" {
			t.Errorf("expected replacement value, got %q", got)
		}
	})

	t.Run("write leaves no temporary files behind", func(t *testing.T) {
		store := newStore(t)
		store.Write(KindAccess, "v")

		entries, err := os.ReadDir(store.dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".tmp" {
				t.Errorf("stray temporary file %s", e.Name())
			}
		}
	})

	t.Run("read of absent slot reports ErrNoToken", func(t *testing.T) {
		store := newStore(t)

		if _, err := store.Read(KindAccess); !errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected ErrNoToken, got %v", err)
		}
	})

	t.Run("read of empty file reports ErrNoToken", func(t *testing.T) {
		store := newStore(t)
		if err := os.WriteFile(store.path(KindAccess), nil, 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := store.Read(KindAccess); !errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected ErrNoToken, got %v", err)
		}
	})

	t.Run("read returns only the first line", func(t *testing.T) {
		store := newStore(t)
		if err := os.WriteFile(store.path(KindAccess), []byte("token\njunk"), 0600); err != nil {
			t.Fatal(err)
		}

		got, err := store.Read(KindAccess)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "token" {
			t.Errorf("expected first line only, got %q", got)
		}
	})

	t.Run("has reflects slot contents", func(t *testing.T) {
		store := newStore(t)

		if store.Has(KindAccess) {
			t.Error("expected empty store to report no token")
		}

		store.Write(KindAccess, "v")
		if !store.Has(KindAccess) {
			t.Error("expected store to report token after write")
		}
	})

	t.Run("clear empties both slots", func(t *testing.T) {
		store := newStore(t)
		store.Write(KindAccess, "a")
		store.Write(KindRefresh, "r")

		if err := store.Clear(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.Has(KindAccess) || store.Has(KindRefresh) {
			t.Error("expected both slots to be empty after clear")
		}
	})

	t.Run("clear of empty store succeeds", func(t *testing.T) {
		store := newStore(t)
		if err := store.Clear(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
