// Spotify [Source] implementation.
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/senyafy/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyBaseURL   = "https://api.spotify.com/v1"
	playlistPageSize = 50
)

// UserProfile represents the authenticated user's profile.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// PlaylistItem is one entry of a paginated playlist listing.
type PlaylistItem struct {
	Name   string           `json:"name"`
	Images []Image          `json:"images"`
	Tracks *TrackCollection `json:"tracks"`
}

type paginatedPlaylists struct {
	Items    []PlaylistItem `json:"items"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// A track item page is either items plus a cursor or an error payload;
// decoding keeps both shapes and the caller checks Error first.
type trackPage struct {
	Error *APIError   `json:"error"`
	Items []TrackItem `json:"items"`
	Next  *string     `json:"next"`
}

// SpotifyService implements [Source] against the Spotify Web API.
// Requests authenticate through an [oauth2] token source carrying the
// stored access token.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify client around an access token.
// There is no refresh flow: the token is used as-is until a request
// rejects it.
func NewSpotifyService(accessToken string) *SpotifyService {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 30 * time.Second})

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: oauth2.NewClient(ctx, src),
	}
}

// fetchJSON performs an authenticated GET of an absolute URL and
// decodes the response body into result.
func (s *SpotifyService) fetchJSON(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile retrieves the authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*UserProfile, error) {
	var user UserProfile
	if err := s.fetchJSON(ctx, s.baseURL+"/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckToken verifies the held access token by requesting the user
// profile. A rejected token reports [shared.ErrNotAuthenticated].
func (s *SpotifyService) CheckToken(ctx context.Context) error {
	if _, err := s.Profile(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	return nil
}

// BuildPlaylistIndex folds one page of playlist items into the index.
// Missing images or tracks fields become nil markers rather than being
// dropped, and a repeated name overwrites the earlier entry.
func BuildPlaylistIndex(items []PlaylistItem, into PlaylistIndex) {
	for _, item := range items {
		into[item.Name] = PlaylistMeta{
			Name:   item.Name,
			Images: item.Images,
			Tracks: item.Tracks,
		}
	}
}

// ListPlaylists retrieves every playlist of the current user, fifty per
// page, following the next cursor until it is null. A failed page
// request stops pagination and the pages gathered so far are returned
// with a partial state.
func (s *SpotifyService) ListPlaylists(ctx context.Context) PlaylistsResult {
	index := make(PlaylistIndex)
	url := fmt.Sprintf("%s/me/playlists?limit=%d", s.baseURL, playlistPageSize)
	pages := 0

	for url != "" {
		var page paginatedPlaylists
		if err := s.fetchJSON(ctx, url, &page); err != nil {
			state := FetchPartial
			if pages == 0 {
				state = FetchErrored
			}
			return PlaylistsResult{State: state, Playlists: index, Cause: err}
		}

		BuildPlaylistIndex(page.Items, index)
		pages++

		if page.Next == nil {
			break
		}
		url = *page.Next
	}

	return PlaylistsResult{State: FetchOk, Playlists: index}
}

// fetchTrackPage retrieves one item page. The body is decoded whatever
// the response status, because rejected requests carry their error
// payload in the same envelope as a page of items.
func (s *SpotifyService) fetchTrackPage(ctx context.Context, url string) (*trackPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	var page trackPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: status %d: %v", shared.ErrAPIRequest, resp.StatusCode, err)
	}

	if page.Error == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return &page, nil
}

// PlaylistTracks retrieves a playlist's tracks as normalized search
// strings, following the absolute next URL across item pages. Items
// without a nested track are skipped. A page carrying an error payload
// instead of items ends the call with that payload; a transport failure
// mid-pagination returns the tracks gathered so far.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, trackURL string) TracksResult {
	tracks := []string{}
	url := trackURL

	for url != "" {
		page, err := s.fetchTrackPage(ctx, url)
		if err != nil {
			state := FetchPartial
			if len(tracks) == 0 {
				state = FetchErrored
			}
			return TracksResult{State: state, Tracks: tracks, Cause: err}
		}

		if page.Error != nil {
			return TracksResult{State: FetchErrored, APIError: page.Error}
		}

		for _, item := range page.Items {
			if track, ok := NormalizeItem(item); ok {
				tracks = append(tracks, track)
			}
		}

		if page.Next == nil {
			break
		}
		url = *page.Next
	}

	return TracksResult{State: FetchOk, Tracks: tracks}
}
