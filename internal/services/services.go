// package services defines the source and destination music service
// clients and the shared types that flow between them.
//
// Spotify is the source; YouTube Music is the destination, reached
// through a local proxy server.
package services

import (
	"context"
	"fmt"
)

// FetchState classifies the outcome of a paginated fetch.
type FetchState int

const (
	// FetchOk means every page was retrieved.
	FetchOk FetchState = iota
	// FetchPartial means pagination stopped early and the result holds
	// only the pages gathered before the failure.
	FetchPartial
	// FetchErrored means nothing usable was retrieved.
	FetchErrored
)

func (s FetchState) String() string {
	switch s {
	case FetchOk:
		return "ok"
	case FetchPartial:
		return "partial"
	case FetchErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Image represents an image resource attached to a playlist.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// TrackCollection is the pagination handle for a playlist's tracks:
// the absolute URL of the first item page and the reported total.
type TrackCollection struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

// PlaylistMeta describes one source playlist. Tracks is nil when the
// listing payload carried no tracks field; callers must guard before
// following it.
type PlaylistMeta struct {
	Name   string
	Images []Image
	Tracks *TrackCollection
}

// PlaylistIndex maps playlist names to their metadata. Names are the
// key: when two playlists share one, the later entry overwrites the
// earlier.
type PlaylistIndex map[string]PlaylistMeta

// PlaylistsResult is the outcome of listing the user's playlists.
// Playlists holds whatever was gathered, even on partial failure.
type PlaylistsResult struct {
	State     FetchState
	Playlists PlaylistIndex
	Cause     error
}

// APIError is the error payload a source item page may carry in place
// of its items.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// TracksResult is the outcome of listing a playlist's tracks. Exactly
// one of Tracks or APIError is meaningful: an error payload on any page
// replaces the track list entirely.
type TracksResult struct {
	State    FetchState
	Tracks   []string
	APIError *APIError
	Cause    error
}

// ExportResult reports which tracks could not be pushed to the
// destination, in input order.
type ExportResult struct {
	Failed []string
}

// Source lists playlists and tracks from the service being migrated from.
type Source interface {
	// CheckToken verifies the held access token against the user
	// profile endpoint.
	CheckToken(ctx context.Context) error

	// ListPlaylists retrieves all of the user's playlists, following
	// pagination cursors until exhausted.
	ListPlaylists(ctx context.Context) PlaylistsResult

	// PlaylistTracks retrieves a playlist's tracks as normalized search
	// strings, starting from the given item page URL.
	PlaylistTracks(ctx context.Context, trackURL string) TracksResult
}

// Destination receives playlists on the service being migrated to.
type Destination interface {
	// Health verifies the destination proxy is reachable.
	Health(ctx context.Context) error

	// RefreshPlaylists reloads the name to id cache from the
	// destination library.
	RefreshPlaylists(ctx context.Context) error

	// PlaylistID resolves a playlist title to its destination id,
	// consulting the cache first.
	PlaylistID(ctx context.Context, title string) (string, error)

	// Export pushes tracks into the named playlist, creating it when
	// createIfMissing is set, and reports per-track failures.
	Export(ctx context.Context, title, description string, tracks []string, createIfMissing bool) (*ExportResult, error)

	// PushToExisting pushes tracks into a playlist resolved by title.
	PushToExisting(ctx context.Context, title string, tracks []string) (*ExportResult, error)
}
