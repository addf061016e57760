// package store caches fetched playlists and their normalized tracks
// in SQLite, so listings survive between runs and can be inspected or
// re-exported without another round of source pagination.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/senyafy/internal/services"
	"github.com/desertthunder/senyafy/internal/shared"
)

// CachedPlaylist is one cached playlist row with its track entries.
type CachedPlaylist struct {
	ID         string
	Name       string
	TrackCount int
	ImageURL   string
	TracksHref string
	FetchedAt  time.Time
	Tracks     []string
}

// CacheStore persists playlists keyed by name. Saving a name again
// replaces the previous snapshot entirely.
type CacheStore struct {
	db *sql.DB
}

// NewCacheStore creates a store over an already-migrated database.
func NewCacheStore(db *sql.DB) *CacheStore {
	return &CacheStore{db: db}
}

// SavePlaylist stores a playlist snapshot and its tracks in one
// transaction, replacing any earlier snapshot under the same name.
func (s *CacheStore) SavePlaylist(meta *services.PlaylistMeta, tracks []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previous string
	err = tx.QueryRow("SELECT id FROM playlists WHERE name = ?", meta.Name).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up playlist: %w", err)
	}
	if previous != "" {
		if _, err := tx.Exec("DELETE FROM tracks WHERE playlist_id = ?", previous); err != nil {
			return fmt.Errorf("failed to clear cached tracks: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", previous); err != nil {
			return fmt.Errorf("failed to clear cached playlist: %w", err)
		}
	}

	id := shared.GenerateID()

	var imageURL string
	if len(meta.Images) > 0 {
		imageURL = meta.Images[0].URL
	}
	var tracksHref string
	if meta.Tracks != nil {
		tracksHref = meta.Tracks.Href
	}

	_, err = tx.Exec(
		"INSERT INTO playlists (id, name, track_count, image_url, tracks_href, fetched_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, meta.Name, len(tracks), imageURL, tracksHref, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	for i, track := range tracks {
		_, err = tx.Exec(
			"INSERT INTO tracks (id, playlist_id, entry, position) VALUES (?, ?, ?, ?)",
			shared.GenerateID(), id, track, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetPlaylist retrieves a cached playlist and its tracks in stored
// order. A missing name reports [shared.ErrPlaylistNotFound].
func (s *CacheStore) GetPlaylist(name string) (*CachedPlaylist, error) {
	var p CachedPlaylist
	err := s.db.QueryRow(
		"SELECT id, name, track_count, image_url, tracks_href, fetched_at FROM playlists WHERE name = ?",
		name,
	).Scan(&p.ID, &p.Name, &p.TrackCount, &p.ImageURL, &p.TracksHref, &p.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}

	rows, err := s.db.Query("SELECT entry FROM tracks WHERE playlist_id = ? ORDER BY position", p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	p.Tracks = []string{}
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		p.Tracks = append(p.Tracks, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}

	return &p, nil
}

// ListPlaylists returns all cached playlists, newest first, without
// their track entries.
func (s *CacheStore) ListPlaylists() ([]CachedPlaylist, error) {
	rows, err := s.db.Query("SELECT id, name, track_count, image_url, tracks_href, fetched_at FROM playlists ORDER BY fetched_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []CachedPlaylist{}
	for rows.Next() {
		var p CachedPlaylist
		if err := rows.Scan(&p.ID, &p.Name, &p.TrackCount, &p.ImageURL, &p.TracksHref, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlists: %w", err)
	}

	return playlists, nil
}

// Clear drops every cached playlist and track.
func (s *CacheStore) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tracks"); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM playlists"); err != nil {
		return fmt.Errorf("failed to clear playlists: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
