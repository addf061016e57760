package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/senyafy/internal/shared"
)

func newTestYouTube(baseURL string) *YouTubeService {
	return NewYouTubeService(shared.YouTubeConfig{ProxyURL: baseURL}, 0)
}

// newFakeProxy builds a stub destination proxy. Search answers every
// query with a single hit whose video id is "vid:" plus the query, and
// adds fail for any id in failAdds.
func newFakeProxy(t *testing.T, playlistID string, failAdds map[string]bool) (*httptest.Server, *struct{ searches, creates, adds int }) {
	t.Helper()
	counts := &struct{ searches, creates, adds int }{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		counts.searches++
		if r.URL.Query().Get("filter") != "songs" {
			t.Errorf("expected songs filter, got %q", r.URL.Query().Get("filter"))
		}
		query := r.URL.Query().Get("q")
		fmt.Fprintf(w, `[{"videoId":"vid:%s","title":"%s"}]`, query, query)
	})
	mux.HandleFunc("/api/playlists", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		counts.creates++
		fmt.Fprintf(w, `{"playlistId":"%s"}`, playlistID)
	})
	mux.HandleFunc("/api/playlists/"+playlistID+"/items", func(w http.ResponseWriter, r *http.Request) {
		counts.adds++
		var body struct {
			VideoIDs []string `json:"videoIds"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.VideoIDs) == 1 && failAdds[body.VideoIDs[0]] {
			fmt.Fprint(w, `{"status":"STATUS_FAILED"}`)
			return
		}
		fmt.Fprint(w, `{"status":"STATUS_SUCCEEDED"}`)
	})
	mux.HandleFunc("/api/library/playlists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"playlistId":"LM","title":"Liked Music","count":10},
			{"playlistId":"EL","title":"Episodes for Later","count":2},
			{"playlistId":"%s","title":"Road Trip","count":3}
		]`, playlistID)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, counts
}

func TestYouTubeHealth(t *testing.T) {
	srv, _ := newFakeProxy(t, "PL1", nil)

	if err := newTestYouTube(srv.URL).Health(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRefreshPlaylists(t *testing.T) {
	srv, _ := newFakeProxy(t, "PL1", nil)
	yt := newTestYouTube(srv.URL)

	if err := yt.RefreshPlaylists(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := yt.playlistIDs["Road Trip"]; !ok {
		t.Error("expected library playlist to be cached")
	}
	if _, ok := yt.playlistIDs["Liked Music"]; ok {
		t.Error("expected system entry Liked Music to be skipped")
	}
	if _, ok := yt.playlistIDs["Episodes for Later"]; ok {
		t.Error("expected system entry Episodes for Later to be skipped")
	}
}

func TestPlaylistID(t *testing.T) {
	t.Run("resolves through the library then caches", func(t *testing.T) {
		srv, _ := newFakeProxy(t, "PL1", nil)
		yt := newTestYouTube(srv.URL)

		id, err := yt.PlaylistID(context.Background(), "Road Trip")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "PL1" {
			t.Errorf("expected PL1, got %q", id)
		}
	})

	t.Run("unknown title reports ErrPlaylistNotFound", func(t *testing.T) {
		srv, _ := newFakeProxy(t, "PL1", nil)
		yt := newTestYouTube(srv.URL)

		_, err := yt.PlaylistID(context.Background(), "No Such Mix")
		if err == nil {
			t.Fatal("expected an error")
		}
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "No Such Mix") {
			t.Errorf("expected title in error, got %v", err)
		}
	})
}

func TestExport(t *testing.T) {
	t.Run("failed add isolates only the failing track", func(t *testing.T) {
		srv, counts := newFakeProxy(t, "PL1", map[string]bool{"vid:Song 2": true})
		yt := newTestYouTube(srv.URL)

		result, err := yt.Export(context.Background(), "Mix", "", []string{"Song 1", "Song 2", "Song 3"}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Failed) != 1 || result.Failed[0] != "Song 2" {
			t.Errorf("expected only Song 2 to fail, got %v", result.Failed)
		}
		if counts.adds != 3 {
			t.Errorf("expected all three adds to be attempted, got %d", counts.adds)
		}
	})

	t.Run("repeated export reuses the created playlist id", func(t *testing.T) {
		srv, counts := newFakeProxy(t, "PL1", nil)
		yt := newTestYouTube(srv.URL)

		for range 2 {
			if _, err := yt.Export(context.Background(), "Mix", "", []string{"Song 1"}, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if counts.creates != 1 {
			t.Errorf("expected a single create request, got %d", counts.creates)
		}
	})

	t.Run("empty track list never touches the destination", func(t *testing.T) {
		srv, counts := newFakeProxy(t, "PL1", nil)
		yt := newTestYouTube(srv.URL)

		result, err := yt.Export(context.Background(), "Mix", "", nil, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Failed) != 0 {
			t.Errorf("expected no failures, got %v", result.Failed)
		}
		if counts.searches != 0 || counts.creates != 0 || counts.adds != 0 {
			t.Errorf("expected no requests, got %+v", counts)
		}
	})

	t.Run("search miss lands the track in failed", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		yt := newTestYouTube(srv.URL)
		yt.playlistIDs["Mix"] = "PL1"

		result, err := yt.Export(context.Background(), "Mix", "", []string{"Ghost Song"}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Failed) != 1 || result.Failed[0] != "Ghost Song" {
			t.Errorf("expected search miss to fail the track, got %v", result.Failed)
		}
	})
}

func TestPushToExisting(t *testing.T) {
	t.Run("pushes into a resolved playlist", func(t *testing.T) {
		srv, counts := newFakeProxy(t, "PL1", nil)
		yt := newTestYouTube(srv.URL)

		result, err := yt.PushToExisting(context.Background(), "Road Trip", []string{"Song 1", "Song 2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Failed) != 0 {
			t.Errorf("expected no failures, got %v", result.Failed)
		}
		if counts.adds != 2 {
			t.Errorf("expected two adds, got %d", counts.adds)
		}
	})

	t.Run("unresolved title degrades to every track failing", func(t *testing.T) {
		srv, _ := newFakeProxy(t, "PL1", nil)
		yt := newTestYouTube(srv.URL)

		result, err := yt.PushToExisting(context.Background(), "No Such Mix", []string{"Song 1", "Song 2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Failed) != 2 {
			t.Errorf("expected every track to fail, got %v", result.Failed)
		}
	})
}
