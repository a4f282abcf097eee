// Package session holds the bearer credential for the running client. There is
// exactly one live credential per Session; it is replaced with a single atomic
// pointer swap so request workers never observe a partially updated value.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// AdminPermission is the permissions claim value that unlocks the admin screens.
const AdminPermission = "A"

var (
	// ErrEmptyToken is returned when establishing a session with an empty token.
	ErrEmptyToken = errors.New("empty token")
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the JWT payload issued by the backend on login.
type Claims struct {
	Username    string `json:"username,omitempty"`
	Permissions string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Credential is an issued token together with whatever claims could be read from it.
type Credential struct {
	Token  string
	Claims Claims
	// Decoded is false when the token is opaque to the client.
	Decoded bool
}

// Session is the token holder injected into the HTTP client.
type Session struct {
	cred   atomic.Pointer[Credential]
	secret []byte
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates an empty session. When secret is non-empty, tokens are verified
// as HS256 before their claims are trusted.
func New(secret string, clock clockwork.Clock, logger *slog.Logger) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{secret: []byte(secret), clock: clock, logger: logger}
}

// Establish stores token as the live credential, replacing any previous one.
func (s *Session) Establish(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	cred := &Credential{Token: token}
	claims, err := s.decode(token)
	switch {
	case err == nil:
		cred.Claims = claims
		cred.Decoded = true
	case len(s.secret) > 0:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	default:
		s.logger.Debug("token is not a readable jwt, keeping it opaque", "error", err)
	}

	s.cred.Store(cred)
	s.logger.Info("session established", "user", cred.Claims.Username, "admin", cred.Claims.Permissions == AdminPermission)
	return nil
}

// Clear drops the live credential.
func (s *Session) Clear() {
	if old := s.cred.Swap(nil); old != nil {
		s.logger.Info("session cleared", "user", old.Claims.Username)
	}
}

// Credential returns the live credential or nil.
func (s *Session) Credential() *Credential {
	return s.cred.Load()
}

// Token returns the live bearer token or "".
func (s *Session) Token() string {
	if c := s.cred.Load(); c != nil {
		return c.Token
	}
	return ""
}

// Authenticated reports whether a credential is set.
func (s *Session) Authenticated() bool {
	return s.cred.Load() != nil
}

// IsAdmin reports whether the live credential carries admin permissions.
func (s *Session) IsAdmin() bool {
	c := s.cred.Load()
	return c != nil && c.Claims.Permissions == AdminPermission
}

// Username returns the username claim of the live credential.
func (s *Session) Username() string {
	if c := s.cred.Load(); c != nil {
		return c.Claims.Username
	}
	return ""
}

// Expired reports whether the live credential's exp claim has passed. Opaque
// tokens and tokens without exp never expire client-side.
func (s *Session) Expired() bool {
	c := s.cred.Load()
	if c == nil || c.Claims.ExpiresAt == nil {
		return false
	}
	return !s.clock.Now().Before(c.Claims.ExpiresAt.Time)
}

// ExpiresIn returns the time left on the live credential, or zero when unknown.
func (s *Session) ExpiresIn() time.Duration {
	c := s.cred.Load()
	if c == nil || c.Claims.ExpiresAt == nil {
		return 0
	}
	return c.Claims.ExpiresAt.Time.Sub(s.clock.Now())
}

func (s *Session) decode(token string) (Claims, error) {
	var claims Claims
	if len(s.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			return Claims{}, err
		}
		return claims, nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}
