package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/urfave/cli/v3"
)

// YTMusicHealth checks whether the proxy server is reachable.
func (r *Runner) YTMusicHealth(ctx context.Context, cmd *cli.Command) error {
	if r.dest == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("checking proxy health")

	if err := r.dest.Health(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Proxy is healthy\n")
}

// YTMusicSearch searches YouTube Music for tracks.
func (r *Runner) YTMusicSearch(ctx context.Context, cmd *cli.Command) error {
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}

	query := cmd.StringArg("query")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	r.logger.Info("searching youtube music", "query", query)

	hits, err := r.youtube.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(hits, pretty)
	}

	if len(hits) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	r.writePlain("Found %d results:\n\n", len(hits))
	for i, hit := range hits {
		r.writePlain("%d. %s\n", i+1, hit.Title)
		r.writePlain("   Video ID: %s\n", hit.VideoID)
	}

	return nil
}

// YTMusicCreate creates a new playlist on YouTube Music.
func (r *Runner) YTMusicCreate(ctx context.Context, cmd *cli.Command) error {
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}

	name := cmd.StringArg("name")
	description := cmd.String("description")

	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	r.logger.Info("creating youtube music playlist", "name", name)

	id, err := r.youtube.CreatePlaylist(ctx, name, description)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("playlist created", "id", id, "name", name)
	r.writePlain("✓ Playlist created successfully\n")
	r.writePlain("Name: %s\n", name)
	r.writePlain("ID: %s\n", id)

	return nil
}

// YTMusicAdd searches for a track and adds the top hit to an existing playlist.
func (r *Runner) YTMusicAdd(ctx context.Context, cmd *cli.Command) error {
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}

	playlistName := cmd.String("playlist")
	trackQuery := cmd.String("track")

	if playlistName == "" {
		return fmt.Errorf("%w: --playlist flag is required", shared.ErrMissingArgument)
	}
	if trackQuery == "" {
		return fmt.Errorf("%w: --track flag is required", shared.ErrMissingArgument)
	}

	r.logger.Info("adding track to playlist", "playlist", playlistName, "track", trackQuery)

	playlistID, err := r.youtube.PlaylistID(ctx, playlistName)
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			return fmt.Errorf("%w: %q, create it first with 'senyafy ytmusic create'", shared.ErrPlaylistNotFound, playlistName)
		}
		return err
	}

	hits, err := r.youtube.Search(ctx, trackQuery)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if len(hits) == 0 {
		return fmt.Errorf("%w: no results for %q", shared.ErrAPIRequest, trackQuery)
	}

	top := hits[0]
	if err := r.youtube.AddItems(ctx, playlistID, []string{top.VideoID}); err != nil {
		return fmt.Errorf("%w: failed to add track: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("track added", "video_id", top.VideoID, "title", top.Title)
	r.writePlain("✓ Track added to playlist\n")
	r.writePlain("Playlist: %s (ID: %s)\n", playlistName, playlistID)
	r.writePlain("Added: %s\n", top.Title)

	return nil
}
