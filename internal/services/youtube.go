// YouTube Music [Destination] implementation.
//
// Communicates with a local proxy server wrapping the ytmusicapi
// Python library. The proxy listens on port 8080 by default.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/senyafy/internal/shared"
	"golang.org/x/time/rate"
)

const defaultProxyURL = "http://localhost:8080"

// Library entries the proxy reports that are not real playlists.
var reservedPlaylists = map[string]bool{
	"Liked Music":        true,
	"Episodes for Later": true,
}

// SearchResult is one ranked hit from the destination search endpoint.
type SearchResult struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
}

type libraryPlaylist struct {
	PlaylistID string `json:"playlistId"`
	Title      string `json:"title"`
	Count      int    `json:"count"`
}

// YouTubeService implements [Destination] through the proxy. Playlist
// ids are cached by title once resolved and never invalidated for the
// life of the service. The cache is mutex-guarded because the TUI runs
// exports in a goroutine.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu          sync.Mutex
	playlistIDs map[string]string
}

// NewYouTubeService creates a destination client. requestsPerSecond
// throttles the per-track search and add calls of an export; zero or
// negative disables throttling.
func NewYouTubeService(cfg shared.YouTubeConfig, requestsPerSecond float64) *YouTubeService {
	baseURL := cfg.ProxyURL
	if baseURL == "" {
		baseURL = defaultProxyURL
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &YouTubeService{
		baseURL:     baseURL,
		authFile:    cfg.AuthFile,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(limit, 1),
		playlistIDs: make(map[string]string),
	}
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health verifies the proxy is up.
func (y *YouTubeService) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := y.doRequest(ctx, http.MethodGet, "/api/health", nil, &status); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}

// Search queries the destination with the songs filter and returns the
// ranked hits.
func (y *YouTubeService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs", url.QueryEscape(query))

	var results []SearchResult
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CreatePlaylist creates a destination playlist and returns its id.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	body := map[string]string{"title": title, "description": description}

	var created struct {
		PlaylistID string `json:"playlistId"`
	}
	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", body, &created); err != nil {
		return "", err
	}
	if created.PlaylistID == "" {
		return "", fmt.Errorf("%w: create returned no playlist id", shared.ErrAPIRequest)
	}
	return created.PlaylistID, nil
}

// AddItems adds video ids to a destination playlist. The proxy's status
// field must carry the success marker; anything else is a failed add.
func (y *YouTubeService) AddItems(ctx context.Context, playlistID string, videoIDs []string) error {
	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	body := map[string][]string{"videoIds": videoIDs}

	var added struct {
		Status string `json:"status"`
	}
	if err := y.doRequest(ctx, http.MethodPost, endpoint, body, &added); err != nil {
		return err
	}
	if !strings.Contains(added.Status, "STATUS_SUCCEEDED") {
		return fmt.Errorf("%w: add returned status %q", shared.ErrAPIRequest, added.Status)
	}
	return nil
}

// RefreshPlaylists reloads the title to id cache from the user's
// library, skipping the reserved system entries.
func (y *YouTubeService) RefreshPlaylists(ctx context.Context) error {
	var playlists []libraryPlaylist
	if err := y.doRequest(ctx, http.MethodGet, "/api/library/playlists", nil, &playlists); err != nil {
		return err
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	for _, p := range playlists {
		if reservedPlaylists[p.Title] {
			continue
		}
		y.playlistIDs[p.Title] = p.PlaylistID
	}
	return nil
}

// PlaylistID resolves a playlist title to its id. The cache answers
// repeat lookups without another library request; a miss triggers one
// refresh before giving up with [shared.ErrPlaylistNotFound].
func (y *YouTubeService) PlaylistID(ctx context.Context, title string) (string, error) {
	if id, ok := y.cachedID(title); ok {
		return id, nil
	}

	if err := y.RefreshPlaylists(ctx); err != nil {
		return "", err
	}

	if id, ok := y.cachedID(title); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, title)
}

func (y *YouTubeService) cachedID(title string) (string, bool) {
	y.mu.Lock()
	defer y.mu.Unlock()
	id, ok := y.playlistIDs[title]
	return id, ok
}

// exportTracks runs the per-track loop: search with the songs filter,
// take the top hit, add it to the playlist. Any miss or failed add
// lands the track in the failed list and the loop moves on; one bad
// track never aborts the batch.
func (y *YouTubeService) exportTracks(ctx context.Context, playlistID string, tracks []string) *ExportResult {
	result := &ExportResult{Failed: []string{}}

	for _, track := range tracks {
		if err := y.limiter.Wait(ctx); err != nil {
			result.Failed = append(result.Failed, track)
			continue
		}

		hits, err := y.Search(ctx, track)
		if err != nil || len(hits) == 0 {
			result.Failed = append(result.Failed, track)
			continue
		}

		if err := y.AddItems(ctx, playlistID, []string{hits[0].VideoID}); err != nil {
			result.Failed = append(result.Failed, track)
		}
	}

	return result
}

// Export pushes tracks into the playlist named by title, creating it
// when createIfMissing is set and it cannot be resolved. An empty track
// list returns immediately without touching the destination.
func (y *YouTubeService) Export(ctx context.Context, title, description string, tracks []string, createIfMissing bool) (*ExportResult, error) {
	if len(tracks) == 0 {
		return &ExportResult{Failed: []string{}}, nil
	}

	id, ok := y.cachedID(title)
	if !ok {
		if !createIfMissing {
			return y.PushToExisting(ctx, title, tracks)
		}

		created, err := y.CreatePlaylist(ctx, title, description)
		if err != nil {
			return nil, err
		}
		y.mu.Lock()
		y.playlistIDs[title] = created
		y.mu.Unlock()
		id = created
	}

	return y.exportTracks(ctx, id, tracks), nil
}

// PushToExisting pushes tracks into a playlist resolved by title. When
// the title cannot be resolved the loop still runs against an empty id
// and every add fails, which is the designed degradation: the caller
// gets the full track list back as failed.
func (y *YouTubeService) PushToExisting(ctx context.Context, title string, tracks []string) (*ExportResult, error) {
	if len(tracks) == 0 {
		return &ExportResult{Failed: []string{}}, nil
	}

	id, err := y.PlaylistID(ctx, title)
	if err != nil {
		id = ""
	}

	return y.exportTracks(ctx, id, tracks), nil
}
