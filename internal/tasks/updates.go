package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchTracks
	ResolveDest
	ExportTracks
	Report
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case ResolveDest:
		return "resolve_dest"
	case ExportTracks:
		return "export_tracks"
	case Report:
		return "report"
	default:
		return ""
	}
}

func fetchingPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: "Fetching playlists from Spotify...",
	}
}

func foundPlaylistUpdate(name string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", name, total),
	}
}

func partialFetchUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Source fetch stopped early; continuing with %d tracks", count),
	}
}

func fetchingTracksUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracks for %s...", name),
	}
}

func exportingUpdate(name string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d tracks to %s on YouTube Music...", total, name),
	}
}

func exportDoneUpdate(name string, total, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Report,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Export of %s finished: %d/%d tracks pushed", name, total-failed, total),
	}
}
