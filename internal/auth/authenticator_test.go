package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/senyafy/internal/shared"
)

func TestGenerateVerifier(t *testing.T) {
	t.Run("has expected length", func(t *testing.T) {
		v, err := GenerateVerifier()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(v) != VerifierLength {
			t.Errorf("expected length %d, got %d", VerifierLength, len(v))
		}
	})

	t.Run("stays within the unreserved alphabet", func(t *testing.T) {
		v, err := GenerateVerifier()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range v {
			if !strings.ContainsRune(verifierAlphabet, c) {
				t.Errorf("verifier contains character %q outside the alphabet", c)
			}
		}
	})

	t.Run("produces distinct values", func(t *testing.T) {
		a, _ := GenerateVerifier()
		b, _ := GenerateVerifier()
		if a == b {
			t.Error("expected distinct verifiers")
		}
	})
}

func TestChallenge(t *testing.T) {
	t.Run("matches the S256 reference vector", func(t *testing.T) {
		// RFC 7636 appendix B.
		got := Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
		want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
		if got != want {
			t.Errorf("expected challenge %q, got %q", want, got)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		if Challenge("some-verifier") != Challenge("some-verifier") {
			t.Error("expected identical challenges for identical verifiers")
		}
	})

	t.Run("differs for different verifiers", func(t *testing.T) {
		if Challenge("one") == Challenge("two") {
			t.Error("expected distinct challenges")
		}
	})
}

func TestAuthorizeURL(t *testing.T) {
	t.Run("parameters appear in documented order", func(t *testing.T) {
		a := &Authenticator{
			ClientID:    "client_id",
			RedirectURI: "redirect_uri",
			Scope:       "mocked_scope",
			AuthURL:     "mocked_auth_url",
		}

		got := a.AuthorizeURL("mocked_code_challenge")
		want := "mocked_auth_url?response_type=code&client_id=client_id&scope=mocked_scope&redirect_uri=redirect_uri&code_challenge_method=S256&code_challenge=mocked_code_challenge"
		if got != want {
			t.Errorf("expected\n%s\ngot\n%s", want, got)
		}
	})

	t.Run("escapes scope and redirect values", func(t *testing.T) {
		a := &Authenticator{
			ClientID:    "abc",
			RedirectURI: "http://localhost:8888/callback",
			Scope:       "playlist-read-private user-read-private",
			AuthURL:     SpotifyAuthURL,
		}

		got := a.AuthorizeURL("ch")
		if !strings.Contains(got, "scope=playlist-read-private+user-read-private") {
			t.Errorf("expected escaped scope, got %s", got)
		}
		if !strings.Contains(got, "redirect_uri=http%3A%2F%2Flocalhost%3A8888%2Fcallback") {
			t.Errorf("expected escaped redirect uri, got %s", got)
		}
	})
}

func TestExchangeCode(t *testing.T) {
	newAuthenticator := func(tokenURL string) *Authenticator {
		return &Authenticator{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://localhost:8888/callback",
			TokenURL:     tokenURL,
			client:       &http.Client{Timeout: 5 * time.Second},
		}
	}

	t.Run("sends basic auth and form fields", func(t *testing.T) {
		var gotAuth, gotGrant, gotCode, gotVerifier, gotRedirect string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			r.ParseForm()
			gotGrant = r.PostFormValue("grant_type")
			gotCode = r.PostFormValue("code")
			gotVerifier = r.PostFormValue("code_verifier")
			gotRedirect = r.PostFormValue("redirect_uri")
			json.NewEncoder(w).Encode(map[string]string{
				"access_token":  "AT",
				"refresh_token": "RT",
			})
		}))
		defer srv.Close()

		tokens, err := newAuthenticator(srv.URL).ExchangeCode(context.Background(), "the-code", "the-verifier")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if tokens.Access != "AT" || tokens.Refresh != "RT" {
			t.Errorf("unexpected token set %+v", tokens)
		}
		if !strings.HasPrefix(gotAuth, "Basic ") {
			t.Errorf("expected basic auth header, got %q", gotAuth)
		}
		if gotGrant != "authorization_code" {
			t.Errorf("unexpected grant type %q", gotGrant)
		}
		if gotCode != "the-code" || gotVerifier != "the-verifier" {
			t.Errorf("unexpected code %q / verifier %q", gotCode, gotVerifier)
		}
		if gotRedirect != "http://localhost:8888/callback" {
			t.Errorf("unexpected redirect uri %q", gotRedirect)
		}
	})

	t.Run("surfaces error payloads", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid authorization code",
			})
		}))
		defer srv.Close()

		_, err := newAuthenticator(srv.URL).ExchangeCode(context.Background(), "bad", "v")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "invalid_grant") {
			t.Errorf("expected error code in message, got %v", err)
		}
	})

	t.Run("rejects responses without an access token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := newAuthenticator(srv.URL).ExchangeCode(context.Background(), "c", "v")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := newAuthenticator(srv.URL).ExchangeCode(context.Background(), "c", "v")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestTokenSetValid(t *testing.T) {
	cases := []struct {
		name   string
		tokens *TokenSet
		want   bool
	}{
		{"nil set", nil, false},
		{"empty access token", &TokenSet{Refresh: "r"}, false},
		{"access token present", &TokenSet{Access: "a"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tokens.Valid(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
