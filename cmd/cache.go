package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/senyafy/internal/formatter"
	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheList prints every cached playlist snapshot.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	playlists, err := cache.ListPlaylists()
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	if len(playlists) == 0 {
		return r.writePlain("Cache is empty. Use 'senyafy spotify tracks --cache' to snapshot a playlist.\n")
	}

	r.writePlain("Cached playlists:\n\n")
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Fetched: %s\n", p.FetchedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// CacheShow prints one cached playlist with its tracks.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	playlist, err := cache.GetPlaylist(name)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(playlist, pretty)
	}

	r.writePlain("%s", formatter.TracksToText(playlist.Name, playlist.Tracks))
	r.writePlain("\nFetched: %s\n", playlist.FetchedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// CacheClear removes every cached playlist and its tracks.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("cache cleared")
	return r.writePlain("✓ Cache cleared\n")
}
