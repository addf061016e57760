package auth

import "sync"

// Session carries the in-flight state of a single login attempt: the
// code verifier handed to the browser, the tokens produced by the
// callback, and a completion signal for whoever started the flow.
type Session struct {
	mu       sync.Mutex
	once     sync.Once
	verifier string
	state    string
	tokens   *TokenSet
	done     chan error
}

// NewSession creates an empty session. The completion channel is
// buffered so the callback handler never blocks on delivery.
func NewSession() *Session {
	return &Session{done: make(chan error, 1)}
}

// SetVerifier records the code verifier for the pending exchange.
func (s *Session) SetVerifier(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = v
}

// Verifier returns the recorded code verifier.
func (s *Session) Verifier() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifier
}

// SetState records the CSRF state token sent with the authorization URL.
func (s *Session) SetState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// State returns the recorded CSRF state token.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetTokens stores the token set produced by the exchange.
func (s *Session) SetTokens(t *TokenSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

// Tokens returns the stored token set, or nil before completion.
func (s *Session) Tokens() *TokenSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// Complete signals the waiter exactly once. A nil error marks success;
// later calls are ignored.
func (s *Session) Complete(err error) {
	s.once.Do(func() {
		s.done <- err
	})
}

// Done returns the channel the flow's outcome is delivered on.
func (s *Session) Done() <-chan error {
	return s.done
}
