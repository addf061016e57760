// package formatter renders fetched track lists and transfer reports
// to plain text, CSV, Markdown, and JSON for saving or display.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/senyafy/internal/services"
	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/desertthunder/senyafy/internal/tasks"
)

// splitEntry separates a normalized "Artists - Title" entry. Entries
// that do not carry the separator come back with an empty artist part.
func splitEntry(entry string) (artists, title string) {
	if idx := strings.Index(entry, " - "); idx >= 0 {
		return entry[:idx], entry[idx+3:]
	}
	return "", entry
}

// TracksToText renders a playlist's tracks as a numbered plain text list.
func TracksToText(name string, tracks []string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track))
	}

	return buf.Bytes()
}

// TracksToCSV renders tracks as CSV with columns: Position, Artists, Title.
func TracksToCSV(tracks []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Artists", "Title"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range tracks {
		artists, title := splitEntry(track)
		if err := writer.Write([]string{strconv.Itoa(i + 1), artists, title}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown renders a playlist as Markdown with an optional
// cover image reference.
func TracksToMarkdown(name, imageURL string, tracks []string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", name))
	if imageURL != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageURL))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track))
	}

	return buf.Bytes()
}

// TransferReport is the serializable shape of a transfer outcome.
type TransferReport struct {
	Playlist   string   `json:"playlist"`
	Total      int      `json:"total_tracks"`
	Succeeded  int      `json:"succeeded"`
	Failed     []string `json:"failed"`
	FetchState string   `json:"fetch_state"`
}

// NewTransferReport converts an engine result into its report shape.
func NewTransferReport(result *tasks.TransferResult) *TransferReport {
	failed := result.Failed
	if failed == nil {
		failed = []string{}
	}
	return &TransferReport{
		Playlist:   result.Playlist,
		Total:      result.TotalTracks,
		Succeeded:  result.SuccessCount(),
		Failed:     failed,
		FetchState: result.Fetch.String(),
	}
}

// ReportToJSON renders a transfer result as indented JSON.
func ReportToJSON(result *tasks.TransferResult) ([]byte, error) {
	return shared.MarshalJSON(NewTransferReport(result), true)
}

// ReportToText renders a transfer result as a terminal summary. Failed
// tracks are listed verbatim so the user can retry them by hand.
func ReportToText(result *tasks.TransferResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.Playlist))
	buf.WriteString(fmt.Sprintf("Pushed: %d/%d (%.1f%%)\n", result.SuccessCount(), result.TotalTracks, result.MatchPercentage()))
	if result.Fetch != services.FetchOk {
		buf.WriteString(fmt.Sprintf("Source fetch: %s\n", result.Fetch))
	}

	if len(result.Failed) > 0 {
		buf.WriteString("\nFailed tracks:\n")
		for _, track := range result.Failed {
			buf.WriteString(fmt.Sprintf("  %s\n", track))
		}
	}

	return buf.Bytes()
}
