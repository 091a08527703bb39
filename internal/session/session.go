// Package session implements server-side sessions keyed by an opaque cookie
// token. A session is either anonymous (UserID zero) or authenticated.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist in the store.
var ErrNotFound = errors.New("session not found")

// ErrExpired is returned when a session exists but has expired.
var ErrExpired = errors.New("session expired")

// Store is the storage backend for sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, id string, sess *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Session is the server-side state for one browser.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// destroyed marks a logged-out session so the middleware does not
	// resurrect it on write.
	destroyed bool
}

// Flash is a one-time message drained at render time.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Flash message types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// New creates an anonymous session with the given ID and TTL.
func New(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Authenticated reports whether a user is logged in on this session.
func (s *Session) Authenticated() bool {
	return s.UserID != 0
}

// AddFlash queues a one-time message.
func (s *Session) AddFlash(flashType, message string) {
	s.Flashes = append(s.Flashes, Flash{Type: flashType, Message: message})
}

// TakeFlashes returns all queued messages and clears them.
func (s *Session) TakeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// Config holds session cookie and store configuration.
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// MaxAge is the session TTL in seconds.
	MaxAge int

	// Secure requires HTTPS for the cookie.
	Secure bool

	// Store is the session storage backend.
	Store Store
}

// DefaultConfig returns the default session configuration.
func DefaultConfig(store Store) *Config {
	return &Config{
		CookieName: "racha_session",
		MaxAge:     86400 * 30, // 30 days
		Secure:     true,
		Store:      store,
	}
}

// TTL returns the configured MaxAge as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.MaxAge) * time.Second
}
