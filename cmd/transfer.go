package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/senyafy/internal/formatter"
	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/desertthunder/senyafy/internal/tasks"
	"github.com/urfave/cli/v3"
)

// printProgress drains engine progress updates onto the runner's output.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		switch update.Phase {
		case tasks.FetchPlaylists, tasks.FetchTracks:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.ResolveDest:
			r.writePlain("🔍 %s\n", update.Message)
		case tasks.ExportTracks:
			r.writePlain("🎵 %s\n", update.Message)
		case tasks.Report:
			r.writePlain("📝 %s\n", update.Message)
		}
	}
}

// TransferRun migrates one playlist from Spotify to YouTube Music,
// creating the destination playlist when it does not already exist.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	return r.runTransfer(ctx, cmd, r.engine.Run)
}

// TransferPush adds a playlist's tracks to an existing YouTube Music
// playlist without creating one.
func (r *Runner) TransferPush(ctx context.Context, cmd *cli.Command) error {
	return r.runTransfer(ctx, cmd, r.engine.Push)
}

func (r *Runner) runTransfer(ctx context.Context, cmd *cli.Command, run func(context.Context, string, chan<- tasks.ProgressUpdate) (*tasks.TransferResult, error)) error {
	name := cmd.StringArg("name")
	useJSON := cmd.Bool("json")
	outputFile := cmd.String("output")

	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	r.logger.Info("starting transfer", "playlist", name)
	r.writePlain("Starting playlist transfer: %s\n\n", name)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.printProgress(progress)
	}()

	result, err := run(ctx, name, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	var report []byte
	if useJSON {
		if report, err = formatter.ReportToJSON(result); err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
	} else {
		report = formatter.ReportToText(result)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, report, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return r.writePlain("\n✓ Report written to %s\n", outputFile)
	}

	return r.writePlain("\n%s", report)
}
