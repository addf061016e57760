package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/senyafy/internal/auth"
	"github.com/desertthunder/senyafy/internal/shared"
)

func newTestFlow(t *testing.T, tokenURL string) (*CallbackHandler, *auth.Session, *auth.FileStore) {
	t.Helper()

	store, err := auth.NewFileStore(filepath.Join(t.TempDir(), "tokens"))
	if err != nil {
		t.Fatal(err)
	}

	authenticator := auth.NewAuthenticator(shared.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:8888/callback",
	})
	authenticator.TokenURL = tokenURL

	session := auth.NewSession()
	session.SetVerifier("verifier")
	session.SetState("expected-state")

	return NewCallbackHandler(authenticator, session, store), session, store
}

func TestCallbackHandler(t *testing.T) {
	newTokenServer := func(t *testing.T) *httptest.Server {
		t.Helper()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"access_token":"AT","refresh_token":"RT"}`)
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	t.Run("exchanges code and persists both tokens", func(t *testing.T) {
		tokenSrv := newTokenServer(t)
		handler, session, store := newTestFlow(t, tokenSrv.URL)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=expected-state", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected the success page")
		}

		select {
		case err := <-session.Done():
			if err != nil {
				t.Fatalf("expected successful completion, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("session never completed")
		}

		access, err := store.Read(auth.KindAccess)
		if err != nil || access != "AT" {
			t.Errorf("expected stored access token, got %q (%v)", access, err)
		}
		refresh, err := store.Read(auth.KindRefresh)
		if err != nil || refresh != "RT" {
			t.Errorf("expected stored refresh token, got %q (%v)", refresh, err)
		}
		if tokens := session.Tokens(); tokens == nil || tokens.Access != "AT" {
			t.Errorf("expected tokens on session, got %+v", tokens)
		}
	})

	t.Run("rejects mismatched state", func(t *testing.T) {
		tokenSrv := newTokenServer(t)
		handler, session, _ := newTestFlow(t, tokenSrv.URL)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=tampered", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if err := <-session.Done(); err == nil {
			t.Error("expected failed completion")
		}
	})

	t.Run("missing code completes with the provider error", func(t *testing.T) {
		tokenSrv := newTokenServer(t)
		handler, session, _ := newTestFlow(t, tokenSrv.URL)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		err := <-session.Done()
		if err == nil || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected provider error, got %v", err)
		}
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		tokenSrv := newTokenServer(t)
		handler, _, _ := newTestFlow(t, tokenSrv.URL)

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=expected-state", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?code=def&state=expected-state", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", second.Code)
		}
	})
}

func TestShutdownHandler(t *testing.T) {
	t.Run("post closes the signal channel", func(t *testing.T) {
		handler := NewShutdownHandler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shutdown", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		select {
		case <-handler.Done():
		case <-time.After(time.Second):
			t.Fatal("shutdown signal never arrived")
		}
	})

	t.Run("get is rejected", func(t *testing.T) {
		handler := NewShutdownHandler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shutdown", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		select {
		case <-handler.Done():
			t.Error("unexpected shutdown signal")
		default:
		}
	})

	t.Run("repeat triggers collapse", func(t *testing.T) {
		handler := NewShutdownHandler()
		for range 2 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shutdown", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
		}
	})
}

func TestRouter(t *testing.T) {
	t.Run("routes registered handler paths", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewShutdownHandler())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shutdown", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("method filtering on Handle", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %q", rec.Body.String())
		}
	})

	t.Run("middleware wraps in registration order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(tag("outer"), tag("inner"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}
