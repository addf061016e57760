package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/senyafy/internal/auth"
)

// CallbackHandler receives the OAuth redirect, exchanges the code using
// the session's verifier, persists the resulting tokens, and completes
// the session. Only the first callback is processed; replays get a 400.
type CallbackHandler struct {
	authenticator *auth.Authenticator
	session       *auth.Session
	store         auth.Store

	mu  sync.Mutex
	hit bool
}

// NewCallbackHandler wires the handler to an in-flight login session.
func NewCallbackHandler(authenticator *auth.Authenticator, session *auth.Session, store auth.Store) *CallbackHandler {
	return &CallbackHandler{
		authenticator: authenticator,
		session:       session,
		store:         store,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if state := query.Get("state"); h.session.State() != "" && state != h.session.State() {
		err := fmt.Errorf("invalid state parameter")
		h.session.Complete(err)
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("authorization failed: %s: %s", query.Get("error"), query.Get("error_description"))
		h.session.Complete(err)
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	tokens, err := h.authenticator.ExchangeCode(r.Context(), code, h.session.Verifier())
	if err != nil {
		h.session.Complete(err)
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	if err := h.store.Write(auth.KindAccess, tokens.Access); err != nil {
		h.session.Complete(err)
		http.Error(w, "Failed to persist tokens", http.StatusInternalServerError)
		return
	}
	if tokens.Refresh != "" {
		if err := h.store.Write(auth.KindRefresh, tokens.Refresh); err != nil {
			h.session.Complete(err)
			http.Error(w, "Failed to persist tokens", http.StatusInternalServerError)
			return
		}
	}

	h.session.SetTokens(tokens)
	h.session.Complete(nil)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

// ShutdownHandler exposes a POST trigger that signals the listener to
// stop. Repeated triggers are collapsed into one signal.
type ShutdownHandler struct {
	once sync.Once
	done chan struct{}
}

// NewShutdownHandler creates a handler with a fresh signal channel.
func NewShutdownHandler() *ShutdownHandler {
	return &ShutdownHandler{done: make(chan struct{})}
}

// Routes returns the HTTP routes this handler serves.
func (h *ShutdownHandler) Routes() []string {
	return []string{"/shutdown"}
}

// Done returns the channel closed when a shutdown is requested.
func (h *ShutdownHandler) Done() <-chan struct{} {
	return h.done
}

func (h *ShutdownHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.once.Do(func() { close(h.done) })
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "shutting down")
}
