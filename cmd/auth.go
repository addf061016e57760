package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/senyafy/internal/auth"
	"github.com/desertthunder/senyafy/internal/server"
	"github.com/desertthunder/senyafy/internal/services"
	"github.com/desertthunder/senyafy/internal/shared"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the callback server waits for the user to
// finish authorizing in the browser.
const loginTimeout = 2 * time.Minute

// profileFetcher is satisfied by the concrete Spotify service. Status uses it
// to show account details when the source is not a bare mock.
type profileFetcher interface {
	Profile(ctx context.Context) (*services.UserProfile, error)
}

// AuthLogin performs the OAuth2 authorization code flow with PKCE.
//
// Starts a local HTTP server for the redirect, opens the browser for user
// authorization, exchanges the code for tokens, and persists them to disk.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized", shared.ErrServiceUnavailable)
	}

	// Stale tokens from a previous login are cleared up front so a failed
	// flow never leaves a mix of old and new credentials.
	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token store: %w", err)
	}

	verifier, err := auth.GenerateVerifier()
	if err != nil {
		return fmt.Errorf("failed to generate verifier: %w", err)
	}

	session := auth.NewSession()
	session.SetVerifier(verifier)

	authenticator := auth.NewAuthenticator(creds)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(server.NewCallbackHandler(authenticator, session, r.store))

	shutdown := server.NewShutdownHandler()
	router.Handler(shutdown)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := server.New(addr, router)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Errorf("callback server error: %v", err)
			session.Complete(fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err))
		}
	}()

	authURL := authenticator.AuthorizeURL(auth.Challenge(verifier))

	r.writePlain("Opening browser for Spotify authorization...\n")
	r.writePlain("If the browser does not open, visit:\n\n  %s\n\n", authURL)

	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
	}

	var flowErr error
	select {
	case flowErr = <-session.Done():
	case <-shutdown.Done():
		flowErr = fmt.Errorf("%w: login cancelled", shared.ErrAuthFailed)
	case <-time.After(loginTimeout):
		flowErr = fmt.Errorf("%w: no callback received within %s", shared.ErrTimeout, loginTimeout)
	case <-ctx.Done():
		flowErr = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		r.logger.Warnf("callback server shutdown: %v", err)
	}

	if flowErr != nil {
		return flowErr
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.config.Tokens.Dir)
	r.writePlain("You can now use: senyafy spotify playlists\n")

	return nil
}

// AuthStatus reports whether tokens are on disk and still accepted upstream.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized", shared.ErrServiceUnavailable)
	}

	if !r.store.Has(auth.KindAccess) {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run 'senyafy auth login' to authorize with Spotify.\n")
		return nil
	}

	r.writePlain("✓ Access token present\n")
	if r.store.Has(auth.KindRefresh) {
		r.writePlain("✓ Refresh token present\n")
	}

	if r.source == nil {
		return nil
	}

	if err := r.source.CheckToken(ctx); err != nil {
		r.writePlain("✗ Token rejected by Spotify: %v\n", err)
		r.writePlain("Run 'senyafy auth login' to reauthorize.\n")
		return nil
	}

	r.writePlain("✓ Token accepted by Spotify\n")

	if fetcher, ok := r.source.(profileFetcher); ok {
		if profile, err := fetcher.Profile(ctx); err == nil {
			r.writePlain("Account: %s (%s)\n", profile.DisplayName, profile.ID)
		}
	}

	return nil
}

// AuthLogout removes persisted tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	r.logger.Info("tokens cleared")
	return r.writePlain("✓ Logged out\n")
}
