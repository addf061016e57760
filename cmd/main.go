package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/senyafy/internal/auth"
	"github.com/desertthunder/senyafy/internal/services"
	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load %s, using defaults: %v", configPath, err)
		}
	}

	tokenStore, err := auth.NewFileStore(config.Tokens.Dir)
	if err != nil {
		logger.Fatalf("failed to open token store: %v", err)
	}

	var source services.Source
	if token, err := tokenStore.Read(auth.KindAccess); err == nil {
		source = services.NewSpotifyService(token)
	} else if !errors.Is(err, shared.ErrNoToken) {
		logger.Warnf("failed to read access token: %v", err)
	}

	youtube := services.NewYouTubeService(config.Credentials.YouTube, config.Export.RateLimit)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Source:     source,
		YouTube:    youtube,
		Store:      tokenStore,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "senyafy",
		Usage:    "Migrate playlists from Spotify to YouTube Music",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
