package admin

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Authenticator decides whether an admin id/password pair is accepted.
type Authenticator interface {
	Authenticate(id, password string) bool
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(id, password string) bool

func (f AuthenticatorFunc) Authenticate(id, password string) bool { return f(id, password) }

// StaticCredentials accepts exactly one id/password pair.
type StaticCredentials struct {
	ID       string
	Password string
}

func (c StaticCredentials) Authenticate(id, password string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(c.ID)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return idOK && pwOK && c.ID != ""
}

// Sessions tracks open admin panels by opaque token.
type Sessions struct {
	mu     sync.Mutex
	TTL    time.Duration
	now    func() time.Time
	tokens map[string]time.Time // token -> expiry
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{TTL: ttl, now: time.Now, tokens: map[string]time.Time{}}
}

// Open issues a new token valid for TTL.
func (s *Sessions) Open() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.tokens[token] = s.now().Add(s.TTL)
	return token
}

// Valid reports whether token names an open, unexpired session.
func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.tokens, token)
		return false
	}
	return true
}

func (s *Sessions) Close(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// sweep drops expired tokens; callers hold mu.
func (s *Sessions) sweep() {
	now := s.now()
	for t, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, t)
		}
	}
}
