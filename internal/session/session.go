// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoSession is returned when an operation needs a logged-in user.
	ErrNoSession = errors.New("no active session")

	// ErrEmptyToken is returned when the server issued an empty token.
	ErrEmptyToken = errors.New("empty token")

	// ErrTokenExpired is returned when a stored token is past its exp claim.
	ErrTokenExpired = errors.New("token expired")

	// ErrNoSubject is returned when a token cannot identify its user.
	ErrNoSubject = errors.New("token has no subject")
)

// =============================================================================
// SESSION
// =============================================================================

// RoleSource records where a session's role came from.
type RoleSource string

const (
	RoleFromClaim     RoleSource = "claim"
	RoleFromDirectory RoleSource = "directory"
	RoleFromDefault   RoleSource = "default"
)

// Session is the logged-in identity.
type Session struct {
	Username   string        `json:"username"`
	Role       security.Role `json:"role"`
	RoleSource RoleSource    `json:"role_source"`
	Token      string        `json:"-"`
	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Can reports whether the session's role allows action. A nil session can do
// nothing.
func (s *Session) Can(action security.Action) bool {
	if s == nil {
		return false
	}
	return security.Allowed(s.Role, action)
}

// Expired reports whether the token's exp claim is in the past at now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Claims is the subset of token claims the client reads.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// DecodeClaims decodes the claims of a JWT without verifying its signature.
func DecodeClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// ResolveRole picks the display role: the claim when it names a known role,
// then the directory entry for username, then the least privileged role.
// directory keys must be lowercase, as NewManager stores them.
func ResolveRole(claimRole, username string, directory map[string]string) (security.Role, RoleSource) {
	if r, ok := security.ParseRole(claimRole); ok {
		return r, RoleFromClaim
	}
	if name, ok := directory[strings.ToLower(username)]; ok {
		if r, ok := security.ParseRole(name); ok {
			return r, RoleFromDirectory
		}
	}
	return security.LeastPrivilegedRole, RoleFromDefault
}

// =============================================================================
// MANAGER
// =============================================================================

// TokenStore persists the bearer token.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Manager owns the current session. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	current   *Session
	tokens    TokenStore
	directory map[string]string
	now       func() time.Time
	log       logrus.FieldLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a Manager persisting tokens in tokens. directory maps
// usernames to role names for tokens without a role claim.
func NewManager(tokens TokenStore, directory map[string]string, opts ...Option) *Manager {
	dir := make(map[string]string, len(directory))
	for k, v := range directory {
		dir[strings.ToLower(k)] = v
	}
	m := &Manager{
		tokens:    tokens,
		directory: dir,
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a copy of the current session, or nil.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// HasPermission reports whether the current user may perform action.
// Returns false when nobody is logged in.
func (m *Manager) HasPermission(action security.Action) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Can(action)
}

// build turns a token into a session. fallbackUser is used when the token
// has no subject claim or is not a JWT.
func (m *Manager) build(token, fallbackUser string) (*Session, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	s := &Session{Token: token, Username: fallbackUser}
	claimRole := ""

	claims, err := DecodeClaims(token)
	if err != nil {
		if fallbackUser == "" {
			return nil, err
		}
		m.log.WithError(err).Debug("token is not a decodable JWT, using login username")
	} else {
		if claims.Subject != "" {
			s.Username = claims.Subject
		}
		if claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
		claimRole = claims.Role
	}

	if s.Username == "" {
		return nil, ErrNoSubject
	}
	s.Role, s.RoleSource = ResolveRole(claimRole, s.Username, m.directory)
	return s, nil
}

// Begin starts a session from a freshly issued token and persists the token.
// username is the name typed at login, used when the token has no subject.
func (m *Manager) Begin(ctx context.Context, token, username string) (*Session, error) {
	s, err := m.build(token, username)
	if err != nil {
		return nil, err
	}
	if err := m.tokens.Set(ctx, storage.TokenKey, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"user": s.Username, "role": s.Role, "source": s.RoleSource}).Info("session started")
	out := *s
	return &out, nil
}

// Restore rebuilds the session from the persisted token. An expired or
// undecodable token is removed from storage.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	token, ok, err := m.tokens.Get(ctx, storage.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		m.clear()
		return nil, ErrNoSession
	}

	s, err := m.build(token, "")
	if err == nil && s.Expired(m.now()) {
		err = ErrTokenExpired
	}
	if err != nil {
		m.clear()
		if rmErr := m.tokens.Remove(ctx, storage.TokenKey); rmErr != nil {
			m.log.WithError(rmErr).Warn("failed to discard stored token")
		}
		return nil, err
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	out := *s
	return &out, nil
}

// End destroys the session and removes the persisted token (logout).
func (m *Manager) End(ctx context.Context) error {
	m.clear()
	if err := m.tokens.Remove(ctx, storage.TokenKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Invalidate handles a 401 for a request that carried token. The session
// and the stored token are dropped only while they still hold that token:
// a late 401 for a token replaced by a newer login is ignored. Storage
// errors are logged since the caller is already handling a failure.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	if m.current == nil || m.current.Token != token {
		m.mu.Unlock()
		m.log.Debug("401 for a replaced token ignored")
		return
	}
	user := m.current.Username
	m.current = nil
	m.mu.Unlock()

	stored, ok, err := m.tokens.Get(ctx, storage.TokenKey)
	switch {
	case err != nil:
		m.log.WithError(err).Warn("failed to read token after 401")
	case ok && stored == token:
		if err := m.tokens.Remove(ctx, storage.TokenKey); err != nil {
			m.log.WithError(err).Warn("failed to clear token after 401")
		}
	}
	m.log.WithField("user", user).Warn("session invalidated by server")
}

// Sync reconciles the in-memory session with the persisted token, for use
// when another process may have logged in or out. It reports whether the
// session changed.
func (m *Manager) Sync(ctx context.Context) (bool, error) {
	token, ok, err := m.tokens.Get(ctx, storage.TokenKey)
	if err != nil {
		return false, fmt.Errorf("read token: %w", err)
	}
	if !ok {
		token = ""
	}
	if token == m.Token() {
		return false, nil
	}
	if token == "" {
		m.clear()
		return true, nil
	}
	if _, err := m.Restore(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		return true, err
	}
	return true, nil
}

// CheckExpiry ends the session when its token has expired. It reports
// whether the session was ended.
func (m *Manager) CheckExpiry(ctx context.Context) bool {
	if !m.Current().Expired(m.now()) {
		return false
	}
	if err := m.End(ctx); err != nil {
		m.log.WithError(err).Warn("failed to clear expired token")
	}
	return true
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check token expiry.
type TickMsg struct {
	Time time.Time
}

// ExpiredMsg indicates the session token expired.
type ExpiredMsg struct{}

// TickCmd returns a command that ticks every interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick checks expiry and schedules the next tick.
func (m *Manager) HandleTick(ctx context.Context, interval time.Duration) tea.Cmd {
	if m.CheckExpiry(ctx) {
		return tea.Batch(func() tea.Msg { return ExpiredMsg{} }, TickCmd(interval))
	}
	return TickCmd(interval)
}
