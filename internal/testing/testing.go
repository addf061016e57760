// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/senyafy/internal/services"
)

// MockSource is a test double for [services.Source]. Each function
// field overrides the corresponding method; unset fields return empty
// successful results.
type MockSource struct {
	CheckTokenFunc     func(ctx context.Context) error
	ListPlaylistsFunc  func(ctx context.Context) services.PlaylistsResult
	PlaylistTracksFunc func(ctx context.Context, trackURL string) services.TracksResult
}

func (m *MockSource) CheckToken(ctx context.Context) error {
	if m.CheckTokenFunc != nil {
		return m.CheckTokenFunc(ctx)
	}
	return nil
}

func (m *MockSource) ListPlaylists(ctx context.Context) services.PlaylistsResult {
	if m.ListPlaylistsFunc != nil {
		return m.ListPlaylistsFunc(ctx)
	}
	return services.PlaylistsResult{State: services.FetchOk, Playlists: services.PlaylistIndex{}}
}

func (m *MockSource) PlaylistTracks(ctx context.Context, trackURL string) services.TracksResult {
	if m.PlaylistTracksFunc != nil {
		return m.PlaylistTracksFunc(ctx, trackURL)
	}
	return services.TracksResult{State: services.FetchOk, Tracks: []string{}}
}

// MockDestination is a test double for [services.Destination].
type MockDestination struct {
	HealthFunc           func(ctx context.Context) error
	RefreshPlaylistsFunc func(ctx context.Context) error
	PlaylistIDFunc       func(ctx context.Context, title string) (string, error)
	ExportFunc           func(ctx context.Context, title, description string, tracks []string, createIfMissing bool) (*services.ExportResult, error)
	PushToExistingFunc   func(ctx context.Context, title string, tracks []string) (*services.ExportResult, error)
}

func (m *MockDestination) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

func (m *MockDestination) RefreshPlaylists(ctx context.Context) error {
	if m.RefreshPlaylistsFunc != nil {
		return m.RefreshPlaylistsFunc(ctx)
	}
	return nil
}

func (m *MockDestination) PlaylistID(ctx context.Context, title string) (string, error) {
	if m.PlaylistIDFunc != nil {
		return m.PlaylistIDFunc(ctx, title)
	}
	return "", nil
}

func (m *MockDestination) Export(ctx context.Context, title, description string, tracks []string, createIfMissing bool) (*services.ExportResult, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, title, description, tracks, createIfMissing)
	}
	return &services.ExportResult{Failed: []string{}}, nil
}

func (m *MockDestination) PushToExisting(ctx context.Context, title string, tracks []string) (*services.ExportResult, error) {
	if m.PushToExistingFunc != nil {
		return m.PushToExistingFunc(ctx, title, tracks)
	}
	return &services.ExportResult{Failed: []string{}}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
}
