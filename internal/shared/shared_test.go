package shared

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

func TestLogger(t *testing.T) {
	t.Run("defaults to stderr when writer is nil", func(t *testing.T) {
		l := NewLogger(nil)
		if l == nil {
			t.Fatal("expected logger, got nil")
		}
	})

	t.Run("writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		l.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("child logger carries key-value pairs", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithLogger(NewLogger(&buf), "component", "test")
		l.Info("tagged")

		if !strings.Contains(buf.String(), "component") {
			t.Errorf("expected log output to contain key, got %q", buf.String())
		}
	})

	t.Run("level filters lower severity messages", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		SetLogLevel(l, log.ErrorLevel)
		l.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected no output at error level, got %q", buf.String())
		}
	})

	t.Run("file logger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")
		l, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		l.Info("persisted")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "persisted") {
			t.Errorf("expected log file to contain message, got %q", string(data))
		}
	})
}

func TestGenerateID(t *testing.T) {
	t.Run("produces valid uuid", func(t *testing.T) {
		id := GenerateID()
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("expected valid uuid, got %q: %v", id, err)
		}
	})

	t.Run("produces unique values", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct ids")
		}
	})
}

func TestGenerateState(t *testing.T) {
	if GenerateState() == GenerateState() {
		t.Error("expected distinct state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]string{"name": "Chill Mix"}

	t.Run("compact", func(t *testing.T) {
		data, err := MarshalJSON(payload, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(data), "\n") {
			t.Errorf("expected compact output, got %q", string(data))
		}
	})

	t.Run("pretty", func(t *testing.T) {
		data, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "\n") {
			t.Errorf("expected indented output, got %q", string(data))
		}
	})
}

func TestMigrations(t *testing.T) {
	openDB := func(t *testing.T) *sql.DB {
		t.Helper()
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		// A second pool connection would see a fresh empty in-memory database.
		db.SetMaxOpenConns(1)
		return db
	}

	t.Run("loads embedded migrations in order", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}
		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations out of order: %d before %d", migrations[i-1].Version, migrations[i].Version)
			}
		}
		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration %d missing up or down", m.Version)
			}
		}
	})

	t.Run("applies migrations and records versions", func(t *testing.T) {
		db := openDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query migrations table: %v", err)
		}
		if count == 0 {
			t.Error("expected applied migrations to be recorded")
		}

		if _, err := db.Exec("SELECT id, name, track_count, tracks_href FROM playlists LIMIT 1"); err != nil {
			t.Errorf("expected playlists table to exist: %v", err)
		}
		if _, err := db.Exec("SELECT id, playlist_id, entry, position FROM tracks LIMIT 1"); err != nil {
			t.Errorf("expected tracks table to exist: %v", err)
		}
	})

	t.Run("rerunning migrations is a no-op", func(t *testing.T) {
		db := openDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}
	})
}
