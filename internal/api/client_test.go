// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/wayne-tui/internal/apitest"
	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/session"
	"github.com/jeranaias/wayne-tui/internal/storage"
)

// fakeSession is a Session that records invalidations.
type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Invalidate(_ context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == f.token {
		f.token = ""
	}
	f.invalidated++
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewClient(baseURL, append([]Option{WithLogger(log), WithTimeout(2 * time.Second)}, opts...)...)
}

// =============================================================================
// RESULT CONTRACT
// =============================================================================

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	srv := apitest.New(t)
	sess := &fakeSession{token: srv.Token("admin")}
	c := newTestClient(t, srv.URL, WithSession(sess))

	res := c.Do(context.Background(), http.MethodGet, PathResources, nil)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.NotEmpty(t, res.RequestID)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, sess.token, reqs[0].Bearer)
	assert.Equal(t, res.RequestID, reqs[0].RequestID)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, WithSession(&fakeSession{}))
	res := c.Do(context.Background(), http.MethodGet, "/anything", nil)
	require.True(t, res.OK)
	assert.Empty(t, got)
}

func TestDo_NetworkFailureIsStatusZero(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := newTestClient(t, url)
	res := c.Do(context.Background(), http.MethodGet, PathStats, nil)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
	assert.NotEmpty(t, res.Message)
	assert.ErrorIs(t, res.Err(), ErrNetwork)
	assert.Equal(t, model.MsgConnectionFailed, UserMessage(res.Err()))
}

func TestDo_TimeoutIsStatusZero(t *testing.T) {
	srv := apitest.New(t)
	srv.DelayOnce(http.MethodGet, "/health", time.Second)

	c := newTestClient(t, srv.URL, WithTimeout(50*time.Millisecond))
	res := c.Do(context.Background(), http.MethodGet, PathHealth, nil)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
}

func TestDo_CancelledContextIsStatusZero(t *testing.T) {
	srv := apitest.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestClient(t, srv.URL).Do(ctx, http.MethodGet, PathHealth, nil)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
}

func TestDo_DetailMessage(t *testing.T) {
	srv := apitest.New(t)
	sess := &fakeSession{token: srv.Token("funcionario")}
	c := newTestClient(t, srv.URL, WithSession(sess))

	res := c.Do(context.Background(), http.MethodDelete, PathResources+"1", nil)
	assert.False(t, res.OK)
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Equal(t, "Sem permissão", res.Message)
	assert.ErrorIs(t, res.Err(), ErrForbidden)
	assert.Equal(t, model.MsgPermissionDenied, UserMessage(res.Err()))
}

func TestDetailMessage(t *testing.T) {
	assert.Equal(t, "boom", detailMessage([]byte(`{"detail":"boom"}`), 500))
	assert.Equal(t, "field required; too long", detailMessage([]byte(`{"detail":[{"msg":"field required"},{"msg":"too long"}]}`), 422))
	assert.Equal(t, "gone", detailMessage([]byte(`{"message":"gone"}`), 410))
	assert.Equal(t, "Bad Gateway", detailMessage([]byte(`<html>`), 502))
	assert.Equal(t, "HTTP 599", detailMessage(nil, 599))
}

func TestDo_ResponseSizeLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"` + strings.Repeat("x", 200) + `"`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, WithMaxResponseSize(64))
	res := c.Do(context.Background(), http.MethodGet, "/big", nil)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
	assert.Contains(t, res.Message, "maximum size")

	err := res.Err()
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotContains(t, err.Error(), "HTTP 200")
	assert.Equal(t, model.MsgConnectionFailed, UserMessage(err))
}

func TestDo_OversizedErrorBodyKeepsStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 200)))
	}))
	defer ts.Close()

	res := newTestClient(t, ts.URL, WithMaxResponseSize(64)).Do(context.Background(), http.MethodGet, "/big", nil)
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.ErrorIs(t, res.Err(), ErrServer)
}

// =============================================================================
// 401 HANDLING
// =============================================================================

func TestDo_UnauthorizedInvalidatesSession(t *testing.T) {
	srv := apitest.New(t)
	sess := &fakeSession{token: "forged.token.value"}
	signalled := 0
	c := newTestClient(t, srv.URL, WithSession(sess), WithUnauthorizedHandler(func() { signalled++ }))

	res := c.Do(context.Background(), http.MethodGet, PathIncidents, nil)
	assert.False(t, res.OK)
	assert.True(t, res.Unauthorized)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, 1, sess.invalidated)
	assert.Empty(t, sess.Token())
	assert.Equal(t, 1, signalled)
	assert.ErrorIs(t, res.Err(), ErrUnauthorized)
}

func TestDo_LateUnauthorizedKeepsNewerSession(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	log, _ := test.NewNullLogger()
	tokens, err := storage.Open(filepath.Join(t.TempDir(), "wayne.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tokens.Close() })

	sessions := session.NewManager(tokens, nil, session.WithLogger(log))
	_, err = sessions.Begin(ctx, srv.Token("funcionario"), "funcionario")
	require.NoError(t, err)

	srv.FailOnceAfter(http.MethodGet, PathResources, http.StatusUnauthorized, 300*time.Millisecond)
	c := newTestClient(t, srv.URL, WithSession(sessions))
	done := make(chan Result, 1)
	go func() { done <- c.Do(ctx, http.MethodGet, PathResources, nil) }()

	require.Eventually(t, func() bool { return len(srv.Requests()) == 1 }, 2*time.Second, 5*time.Millisecond)
	newer := srv.Token("admin")
	_, err = sessions.Begin(ctx, newer, "admin")
	require.NoError(t, err)

	res := <-done
	assert.True(t, res.Unauthorized)

	current := sessions.Current()
	require.NotNil(t, current, "the 401 answered the replaced token")
	assert.Equal(t, "admin", current.Username)
	stored, ok, err := tokens.Get(ctx, storage.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newer, stored)
}

func TestDo_UnauthorizedOnAnyEndpoint(t *testing.T) {
	srv := apitest.New(t)
	paths := []string{PathResources, PathIncidents, PathStats}

	for _, p := range paths {
		sess := &fakeSession{token: srv.Token("admin")}
		srv.FailOnce(http.MethodGet, p, http.StatusUnauthorized)
		res := newTestClient(t, srv.URL, WithSession(sess)).Do(context.Background(), http.MethodGet, p, nil)
		assert.True(t, res.Unauthorized, p)
		assert.Equal(t, 1, sess.invalidated, p)
	}
}

func TestDo_NoRetry(t *testing.T) {
	srv := apitest.New(t)
	srv.FailOnce(http.MethodGet, "/health", http.StatusServiceUnavailable)

	res := newTestClient(t, srv.URL).Do(context.Background(), http.MethodGet, PathHealth, nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.ErrorIs(t, res.Err(), ErrServer)
	assert.Len(t, srv.Requests(), 1)
}

// =============================================================================
// RATE LIMITING
// =============================================================================

func TestRateLimit_CancelledWaitIsStatusZero(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv.URL, WithRateLimit(0.001, 1))

	require.True(t, c.Do(context.Background(), http.MethodGet, PathHealth, nil).OK, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := c.Do(ctx, http.MethodGet, PathHealth, nil)
	assert.Equal(t, 0, res.Status)
	assert.Len(t, srv.Requests(), 1)
}

// =============================================================================
// TYPED ENDPOINTS
// =============================================================================

func TestLogin(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv.URL)

	tok, err := c.Login(context.Background(), "gerente", "4321")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = c.Login(context.Background(), "gerente", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, model.MsgInvalidCredentials, UserMessage(err))
}

func TestResourceLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	c := newTestClient(t, srv.URL, WithSession(&fakeSession{token: srv.Token("gerente")}))

	created, err := c.CreateResource(ctx, model.ResourceInput{
		Tipo: model.ResourceDevice, Nome: "Câmera Norte", Status: model.ResourceActive, Localizacao: "Torre",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	list, err := c.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Câmera Norte", list[0].Nome)

	require.NoError(t, c.DeleteResource(ctx, created.ID))
	err = c.DeleteResource(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncidentLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	staff := newTestClient(t, srv.URL, WithSession(&fakeSession{token: srv.Token("funcionario")}))

	inc, err := staff.CreateIncident(ctx, model.IncidentInput{
		Titulo: "Porta forçada", Gravidade: model.SeverityHigh, Status: model.IncidentOpen,
	})
	require.NoError(t, err, "funcionario may add incidents")

	err = staff.DeleteIncident(ctx, inc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := newTestClient(t, srv.URL, WithSession(&fakeSession{token: srv.Token("admin")}))
	require.NoError(t, admin.DeleteIncident(ctx, inc.ID))
	assert.Empty(t, srv.Incidents())
}

func TestStatsAndHealth(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.SeedResource(model.Resource{Tipo: model.ResourceDevice, Status: model.ResourceActive, Nome: "cam"})
	srv.SeedIncident(model.Incident{Titulo: "x", Gravidade: model.SeverityCritical, Status: model.IncidentOpen})
	c := newTestClient(t, srv.URL, WithSession(&fakeSession{token: srv.Token("admin")}))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecursos)
	assert.Equal(t, 1, stats.CamerasAtivas)
	assert.Equal(t, "CRÍTICO", stats.StatusSistema)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
}

func TestRegisterAndSetupAdmin(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	c := newTestClient(t, srv.URL)

	reg := model.Registration{Username: "lucius", Nome: "Lucius Fox", Email: "lucius@wayne.com", Role: "gerente", Senha: "fox1"}
	require.NoError(t, c.Register(ctx, reg))
	err := c.Register(ctx, reg)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "Usuário já existe", UserMessage(err))

	_, err = c.Login(ctx, "lucius", "fox1")
	assert.NoError(t, err)

	msg, err := c.SetupAdmin(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	_, err = c.SetupAdmin(ctx)
	assert.Error(t, err)
}

func TestError_Is(t *testing.T) {
	e := &Error{Status: 500}
	assert.True(t, errors.Is(e, ErrServer))
	assert.False(t, errors.Is(e, ErrNotFound))
	assert.Contains(t, (&Error{Method: "GET", Path: "/x", Status: 0, Message: "refused"}).Error(), "network failure")
}
