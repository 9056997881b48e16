// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/wayne-tui/internal/config"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/storage"
)

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemTokens() *memTokens {
	return &memTokens{data: map[string]string{}}
}

func (m *memTokens) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memTokens) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memTokens) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func sign(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	claims := Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func newManager(tokens TokenStore) *Manager {
	return NewManager(tokens, config.DefaultUsers(), WithLogger(quietLogger()))
}

// =============================================================================
// ROLE RESOLUTION
// =============================================================================

func TestResolveRole(t *testing.T) {
	dir := map[string]string{"funcionario": "funcionario", "gerente": "gerente", "admin": "admin", "alfred": "visitante"}

	tests := []struct {
		name     string
		claim    string
		user     string
		want     security.Role
		wantFrom RoleSource
	}{
		{"claim wins", "admin", "funcionario", security.RoleAdmin, RoleFromClaim},
		{"directory", "", "gerente", security.RoleGerente, RoleFromDirectory},
		{"directory ignores case", "", "ADMIN", security.RoleAdmin, RoleFromDirectory},
		{"unknown claim falls through", "overlord", "gerente", security.RoleGerente, RoleFromDirectory},
		{"unknown directory role", "", "alfred", security.RoleFuncionario, RoleFromDefault},
		{"unknown user", "", "joker", security.RoleFuncionario, RoleFromDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, from := ResolveRole(tt.claim, tt.user, dir)
			assert.Equal(t, tt.want, role)
			assert.Equal(t, tt.wantFrom, from)
		})
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestHasPermission_NoSessionDenies(t *testing.T) {
	m := newManager(newMemTokens())
	for _, a := range security.Actions() {
		assert.False(t, m.HasPermission(a), a)
	}
	var s *Session
	assert.False(t, s.Can(security.ActionViewDashboard))
}

func TestHasPermission_FollowsTable(t *testing.T) {
	ctx := context.Background()
	for _, role := range security.Roles() {
		m := newManager(newMemTokens())
		_, err := m.Begin(ctx, sign(t, "u", string(role), time.Time{}), "u")
		require.NoError(t, err)
		for _, a := range security.Actions() {
			assert.Equal(t, security.Allowed(role, a), m.HasPermission(a), "%s/%s", role, a)
		}
	}
}

func TestBegin_RoleFromDirectoryWhenNoClaim(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	m := newManager(tokens)

	s, err := m.Begin(ctx, sign(t, "gerente", "", time.Time{}), "gerente")
	require.NoError(t, err)
	assert.Equal(t, "gerente", s.Username)
	assert.Equal(t, security.RoleGerente, s.Role)
	assert.Equal(t, RoleFromDirectory, s.RoleSource)

	stored, ok, _ := tokens.Get(ctx, storage.TokenKey)
	assert.True(t, ok)
	assert.Equal(t, s.Token, stored)
}

func TestBegin_MixedCaseDirectoryEntry(t *testing.T) {
	m := NewManager(newMemTokens(), map[string]string{"Lucius": "gerente"}, WithLogger(quietLogger()))

	s, err := m.Begin(context.Background(), sign(t, "LUCIUS", "", time.Time{}), "LUCIUS")
	require.NoError(t, err)
	assert.Equal(t, security.RoleGerente, s.Role)
	assert.Equal(t, RoleFromDirectory, s.RoleSource)
}

func TestBegin_OpaqueTokenUsesLoginName(t *testing.T) {
	m := newManager(newMemTokens())

	s, err := m.Begin(context.Background(), "opaque-token", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Username)
	assert.Equal(t, security.RoleAdmin, s.Role)
	assert.Equal(t, "opaque-token", m.Token())
}

func TestBegin_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newManager(newMemTokens()).Begin(ctx, "", "admin")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = newManager(newMemTokens()).Begin(ctx, sign(t, "", "", time.Time{}), "")
	assert.ErrorIs(t, err, ErrNoSubject)

	failing := newMemTokens()
	failing.err = errors.New("disk full")
	m := newManager(failing)
	_, err = m.Begin(ctx, sign(t, "admin", "admin", time.Time{}), "admin")
	assert.Error(t, err)
	assert.Nil(t, m.Current(), "session not set when the token cannot be persisted")
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	m := newManager(newMemTokens())
	_, err := m.Begin(context.Background(), sign(t, "funcionario", "", time.Time{}), "funcionario")
	require.NoError(t, err)

	s := m.Current()
	s.Role = security.RoleAdmin
	assert.False(t, m.HasPermission(security.ActionRemoveResource))
}

func TestEnd_ClearsSessionAndToken(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	m := newManager(tokens)
	_, err := m.Begin(ctx, sign(t, "admin", "admin", time.Time{}), "admin")
	require.NoError(t, err)

	require.NoError(t, m.End(ctx))
	assert.Nil(t, m.Current())
	assert.Empty(t, m.Token())
	_, ok, _ := tokens.Get(ctx, storage.TokenKey)
	assert.False(t, ok)
}

func TestInvalidate_ClearsStoredToken(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	m := newManager(tokens)
	_, err := m.Begin(ctx, sign(t, "gerente", "gerente", time.Time{}), "gerente")
	require.NoError(t, err)

	m.Invalidate(ctx, m.Token())
	assert.Nil(t, m.Current())
	_, ok, _ := tokens.Get(ctx, storage.TokenKey)
	assert.False(t, ok)
}

func TestInvalidate_IgnoresReplacedToken(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	m := newManager(tokens)
	_, err := m.Begin(ctx, sign(t, "funcionario", "funcionario", time.Time{}), "funcionario")
	require.NoError(t, err)
	old := m.Token()

	newer := sign(t, "admin", "admin", time.Time{})
	_, err = m.Begin(ctx, newer, "admin")
	require.NoError(t, err)

	m.Invalidate(ctx, old)

	s := m.Current()
	require.NotNil(t, s)
	assert.Equal(t, "admin", s.Username)
	stored, ok, _ := tokens.Get(ctx, storage.TokenKey)
	require.True(t, ok)
	assert.Equal(t, newer, stored)
}

func TestInvalidate_KeepsTokenWrittenByAnotherProcess(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	m := newManager(tokens)
	_, err := m.Begin(ctx, sign(t, "gerente", "gerente", time.Time{}), "gerente")
	require.NoError(t, err)
	sent := m.Token()

	other := sign(t, "admin", "admin", time.Time{})
	require.NoError(t, tokens.Set(ctx, storage.TokenKey, other))

	m.Invalidate(ctx, sent)

	assert.Nil(t, m.Current())
	stored, ok, _ := tokens.Get(ctx, storage.TokenKey)
	require.True(t, ok)
	assert.Equal(t, other, stored, "a later login from another terminal survives")
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid token", func(t *testing.T) {
		tokens := newMemTokens()
		tokens.data[storage.TokenKey] = sign(t, "admin", "admin", now.Add(30*time.Minute))
		m := NewManager(tokens, nil, WithClock(func() time.Time { return now }), WithLogger(quietLogger()))

		s, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.Equal(t, "admin", s.Username)
		assert.Equal(t, security.RoleAdmin, s.Role)
	})

	t.Run("nothing stored", func(t *testing.T) {
		m := newManager(newMemTokens())
		_, err := m.Restore(ctx)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("expired token is discarded", func(t *testing.T) {
		tokens := newMemTokens()
		tokens.data[storage.TokenKey] = sign(t, "admin", "admin", now.Add(-time.Minute))
		m := NewManager(tokens, nil, WithClock(func() time.Time { return now }), WithLogger(quietLogger()))

		_, err := m.Restore(ctx)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Nil(t, m.Current())
		_, ok, _ := tokens.Get(ctx, storage.TokenKey)
		assert.False(t, ok)
	})

	t.Run("garbage token is discarded", func(t *testing.T) {
		tokens := newMemTokens()
		tokens.data[storage.TokenKey] = "not-a-jwt"
		m := newManager(tokens)

		_, err := m.Restore(ctx)
		assert.Error(t, err)
		_, ok, _ := tokens.Get(ctx, storage.TokenKey)
		assert.False(t, ok)
	})
}

func TestSync_DetectsExternalLogoutAndLogin(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	m := newManager(tokens)
	_, err := m.Begin(ctx, sign(t, "gerente", "gerente", time.Time{}), "gerente")
	require.NoError(t, err)

	changed, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "own token is a no-op")

	require.NoError(t, tokens.Remove(ctx, storage.TokenKey))
	changed, err = m.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, m.Current())

	require.NoError(t, tokens.Set(ctx, storage.TokenKey, sign(t, "admin", "admin", time.Time{})))
	changed, err = m.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "admin", m.Current().Username)
}

func TestCheckExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	tokens := newMemTokens()
	m := NewManager(tokens, nil, WithClock(func() time.Time { return clock }), WithLogger(quietLogger()))

	_, err := m.Begin(ctx, sign(t, "admin", "admin", now.Add(time.Minute)), "admin")
	require.NoError(t, err)
	assert.False(t, m.CheckExpiry(ctx))

	clock = now.Add(2 * time.Minute)
	assert.True(t, m.CheckExpiry(ctx))
	assert.Nil(t, m.Current())
	assert.False(t, m.CheckExpiry(ctx), "nothing left to expire")
}

func TestManager_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "storage.db"))
	require.NoError(t, err)
	defer store.Close()

	first := newManager(store)
	_, err = first.Begin(ctx, sign(t, "gerente", "gerente", time.Time{}), "gerente")
	require.NoError(t, err)

	second := newManager(store)
	s, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, security.RoleGerente, s.Role)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := newManager(newMemTokens())
	token := sign(t, "admin", "admin", time.Time{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = m.Begin(ctx, token, "admin")
		}()
		go func() {
			defer wg.Done()
			_ = m.HasPermission(security.ActionViewDashboard)
			_ = m.Token()
		}()
		go func() {
			defer wg.Done()
			_ = m.End(ctx)
		}()
	}
	wg.Wait()
}
