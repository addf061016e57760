package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/desertthunder/senyafy/internal/formatter"
	"github.com/desertthunder/senyafy/internal/services"
	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/urfave/cli/v3"
)

// SpotifyPlaylists lists the authenticated user's playlists.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.source == nil {
		return fmt.Errorf("%w: spotify service not initialized, run 'senyafy auth login'", shared.ErrNotAuthenticated)
	}

	r.logger.Info("listing spotify playlists")

	result := r.source.ListPlaylists(ctx)
	if result.State == services.FetchErrored {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, result.Cause)
	}

	if result.State == services.FetchPartial {
		r.logger.Warnf("listing stopped early: %v", result.Cause)
		r.writePlain("⚠ Listing incomplete, showing %d playlists\n\n", len(result.Playlists))
	}

	if useJSON {
		return r.writeJSON(result.Playlists, pretty)
	}

	names := make([]string, 0, len(result.Playlists))
	for name := range result.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)

	r.writePlain("Found %d playlists:\n\n", len(names))
	for i, name := range names {
		meta := result.Playlists[name]
		r.writePlain("%d. %s\n", i+1, name)
		if meta.Tracks != nil {
			r.writePlain("   Tracks: %d\n", meta.Tracks.Total)
		} else {
			r.writePlain("   Tracks: unavailable\n")
		}
	}

	return nil
}

// fetchPlaylist resolves a playlist by name and retrieves its tracks as
// normalized search entries.
func (r *Runner) fetchPlaylist(ctx context.Context, name string) (*services.PlaylistMeta, []string, services.FetchState, error) {
	listing := r.source.ListPlaylists(ctx)
	if listing.State == services.FetchErrored {
		return nil, nil, listing.State, fmt.Errorf("%w: %v", shared.ErrAPIRequest, listing.Cause)
	}

	meta, ok := listing.Playlists[name]
	if !ok {
		return nil, nil, listing.State, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
	}

	if meta.Tracks == nil {
		return &meta, []string{}, services.FetchOk, nil
	}

	result := r.source.PlaylistTracks(ctx, meta.Tracks.Href)
	if result.APIError != nil {
		return &meta, nil, result.State, fmt.Errorf("%w: %v", shared.ErrAPIRequest, result.APIError)
	}
	if result.State == services.FetchErrored {
		return &meta, nil, result.State, fmt.Errorf("%w: %v", shared.ErrAPIRequest, result.Cause)
	}

	return &meta, result.Tracks, result.State, nil
}

// SpotifyTracks prints a playlist's tracks, optionally as CSV or markdown,
// and can snapshot the playlist to the local cache.
func (r *Runner) SpotifyTracks(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	format := cmd.String("format")
	outputFile := cmd.String("output")
	saveCache := cmd.Bool("cache")

	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	if r.source == nil {
		return fmt.Errorf("%w: spotify service not initialized, run 'senyafy auth login'", shared.ErrNotAuthenticated)
	}

	r.logger.Infof("fetching tracks for playlist %q", name)

	meta, tracks, state, err := r.fetchPlaylist(ctx, name)
	if err != nil {
		return err
	}

	if state == services.FetchPartial {
		r.writePlain("⚠ Fetch incomplete, showing %d tracks\n\n", len(tracks))
	}

	var data []byte
	switch format {
	case "csv":
		if data, err = formatter.TracksToCSV(tracks); err != nil {
			return fmt.Errorf("failed to render CSV: %w", err)
		}
	case "markdown", "md":
		imageURL := ""
		if len(meta.Images) > 0 {
			imageURL = meta.Images[0].URL
		}
		data = formatter.TracksToMarkdown(name, imageURL, tracks)
	case "", "text":
		data = formatter.TracksToText(name, tracks)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	if saveCache {
		cache, closeCache, err := r.openCache()
		if err != nil {
			return err
		}
		defer closeCache()

		if err := cache.SavePlaylist(meta, tracks); err != nil {
			return fmt.Errorf("failed to cache playlist: %w", err)
		}
		r.logger.Infof("cached playlist %q with %d tracks", name, len(tracks))
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return r.writePlain("✓ Wrote %d tracks to %s\n", len(tracks), outputFile)
	}

	return r.writePlain("%s", data)
}
