// package auth implements the PKCE authorization code flow against the
// Spotify accounts service and the durable token storage behind it.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/senyafy/internal/shared"
)

const (
	// SpotifyAuthURL is the accounts endpoint the user is sent to.
	SpotifyAuthURL = "https://accounts.spotify.com/authorize"
	// SpotifyTokenURL is the endpoint authorization codes are exchanged at.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// VerifierLength is the number of characters in a generated code verifier.
	VerifierLength = 128

	verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
)

// TokenSet holds the pair of tokens returned by a successful code exchange.
type TokenSet struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Valid reports whether the set carries a usable access token.
func (t *TokenSet) Valid() bool {
	return t != nil && t.Access != ""
}

// Authenticator drives the PKCE flow for a single Spotify application.
type Authenticator struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	AuthURL      string
	TokenURL     string

	client *http.Client
}

// NewAuthenticator builds an [Authenticator] from Spotify credentials,
// pointing at the production accounts endpoints.
func NewAuthenticator(creds shared.SpotifyConfig) *Authenticator {
	return &Authenticator{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURI:  creds.RedirectURI,
		Scope:        creds.Scope,
		AuthURL:      SpotifyAuthURL,
		TokenURL:     SpotifyTokenURL,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateVerifier returns a random code verifier of [VerifierLength]
// characters drawn from the unreserved URL alphabet.
func GenerateVerifier() (string, error) {
	buf := make([]byte, VerifierLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	for i, b := range buf {
		buf[i] = verifierAlphabet[int(b)%len(verifierAlphabet)]
	}

	return string(buf), nil
}

// Challenge derives the S256 code challenge for a verifier: the
// unpadded base64url encoding of its SHA-256 digest.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// AuthorizeURL assembles the authorization URL for the given code
// challenge. Parameters appear in the order Spotify documents them, so
// the string is stable for a fixed challenge.
func (a *Authenticator) AuthorizeURL(challenge string) string {
	var b strings.Builder
	b.WriteString(a.AuthURL)
	b.WriteString("?response_type=code")
	b.WriteString("&client_id=" + url.QueryEscape(a.ClientID))
	b.WriteString("&scope=" + url.QueryEscape(a.Scope))
	b.WriteString("&redirect_uri=" + url.QueryEscape(a.RedirectURI))
	b.WriteString("&code_challenge_method=S256")
	b.WriteString("&code_challenge=" + url.QueryEscape(challenge))
	return b.String()
}

type tokenResponse struct {
	TokenSet
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCode trades an authorization code and its verifier for a token
// set. The request authenticates with HTTP Basic client credentials.
// Error payloads from the accounts service are surfaced as
// [shared.ErrAuthFailed].
func (a *Authenticator) ExchangeCode(ctx context.Context, code, verifier string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", a.RedirectURI)
	form.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}

	req.SetBasicAuth(a.ClientID, a.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token request failed: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", shared.ErrAuthFailed, err)
	}

	if tr.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", shared.ErrAuthFailed, tr.Error, tr.ErrorDescription)
	}

	if !tr.TokenSet.Valid() {
		return nil, fmt.Errorf("%w: response missing access token (status %d)", shared.ErrAuthFailed, resp.StatusCode)
	}

	return &tr.TokenSet, nil
}
