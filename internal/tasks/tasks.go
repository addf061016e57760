// package tasks implements the playlist migration pipeline from the
// source service to the destination service.
//
// The core abstraction is [SyncEngine], which fetches a playlist's
// tracks from the source, normalizes them, and drives the destination
// export. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/senyafy/internal/services"
	"github.com/desertthunder/senyafy/internal/shared"
)

// TransferResult contains the outcome of migrating one playlist.
type TransferResult struct {
	Playlist    string              // Playlist name on both services
	TotalTracks int                 // Tracks fetched from the source
	Failed      []string            // Tracks that could not be pushed, in input order
	Fetch       services.FetchState // Whether the source fetch was complete
}

// SuccessCount returns the number of tracks that were pushed.
func (r *TransferResult) SuccessCount() int {
	return r.TotalTracks - len(r.Failed)
}

// MatchPercentage returns the success rate as a percentage.
func (r *TransferResult) MatchPercentage() float64 {
	if r.TotalTracks == 0 {
		return 0
	}
	return float64(r.SuccessCount()) / float64(r.TotalTracks) * 100
}

// SyncEngine defines operations for migrating playlists between services.
type SyncEngine interface {
	// Run migrates the named playlist, creating it on the destination
	// when it does not exist yet.
	Run(ctx context.Context, name string, progress chan<- ProgressUpdate) (*TransferResult, error)

	// Push migrates the named playlist into an existing destination
	// playlist of the same name.
	Push(ctx context.Context, name string, progress chan<- ProgressUpdate) (*TransferResult, error)

	// Tracks fetches and normalizes the named playlist's tracks without
	// touching the destination.
	Tracks(ctx context.Context, name string) ([]string, services.FetchState, error)
}

// PlaylistEngine implements [SyncEngine] over a [services.Source] and a
// [services.Destination].
type PlaylistEngine struct {
	source services.Source
	dest   services.Destination
}

// NewPlaylistEngine creates an engine over the given services.
func NewPlaylistEngine(source services.Source, dest services.Destination) *PlaylistEngine {
	return &PlaylistEngine{source: source, dest: dest}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// lookup resolves a playlist by name from the source's listing.
// Listing failures surface only when nothing at all was fetched;
// a partial listing that contains the wanted name is good enough.
func (e *PlaylistEngine) lookup(ctx context.Context, name string) (*services.PlaylistMeta, error) {
	result := e.source.ListPlaylists(ctx)
	if result.State == services.FetchErrored {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, result.Cause)
	}

	meta, ok := result.Playlists[name]
	if !ok {
		return nil, fmt.Errorf("%w: no playlist named %q", shared.ErrPlaylistNotFound, name)
	}
	return &meta, nil
}

// Tracks fetches the named playlist's normalized tracks. A playlist
// whose listing carried no track collection yields an empty sequence.
func (e *PlaylistEngine) Tracks(ctx context.Context, name string) ([]string, services.FetchState, error) {
	meta, err := e.lookup(ctx, name)
	if err != nil {
		return nil, services.FetchErrored, err
	}

	if meta.Tracks == nil {
		return []string{}, services.FetchOk, nil
	}

	result := e.source.PlaylistTracks(ctx, meta.Tracks.Href)
	if result.APIError != nil {
		return nil, services.FetchErrored, fmt.Errorf("failed to fetch tracks: %w", result.APIError)
	}
	if result.State == services.FetchErrored {
		return nil, services.FetchErrored, fmt.Errorf("%w: failed to fetch tracks: %v", shared.ErrAPIRequest, result.Cause)
	}

	return result.Tracks, result.State, nil
}

type exportFunc func(ctx context.Context, tracks []string) (*services.ExportResult, error)

// transfer runs the shared fetch-then-export pipeline.
func (e *PlaylistEngine) transfer(ctx context.Context, name string, progress chan<- ProgressUpdate, export exportFunc) (*TransferResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: engine services not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchingPlaylistsUpdate())
	e.sendProgress(progress, fetchingTracksUpdate(name))

	tracks, state, err := e.Tracks(ctx, name)
	if err != nil {
		return nil, err
	}

	if state == services.FetchPartial {
		e.sendProgress(progress, partialFetchUpdate(len(tracks)))
	}
	e.sendProgress(progress, foundPlaylistUpdate(name, len(tracks)))
	e.sendProgress(progress, exportingUpdate(name, len(tracks)))

	exported, err := export(ctx, tracks)
	if err != nil {
		return nil, fmt.Errorf("%w: export failed: %v", shared.ErrAPIRequest, err)
	}

	result := &TransferResult{
		Playlist:    name,
		TotalTracks: len(tracks),
		Failed:      exported.Failed,
		Fetch:       state,
	}

	e.sendProgress(progress, exportDoneUpdate(name, result.TotalTracks, len(result.Failed)))
	return result, nil
}

// Run migrates the named playlist, creating the destination playlist
// when it is missing. The destination description records the origin.
func (e *PlaylistEngine) Run(ctx context.Context, name string, progress chan<- ProgressUpdate) (*TransferResult, error) {
	description := fmt.Sprintf("Migrated from Spotify: %s", name)
	return e.transfer(ctx, name, progress, func(ctx context.Context, tracks []string) (*services.ExportResult, error) {
		return e.dest.Export(ctx, name, description, tracks, true)
	})
}

// Push migrates the named playlist into an existing destination
// playlist. An unresolvable destination title degrades to every track
// failing rather than an error.
func (e *PlaylistEngine) Push(ctx context.Context, name string, progress chan<- ProgressUpdate) (*TransferResult, error) {
	return e.transfer(ctx, name, progress, func(ctx context.Context, tracks []string) (*services.ExportResult, error) {
		return e.dest.PushToExisting(ctx, name, tracks)
	})
}
