// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/apitest"
	"github.com/jeranaias/wayne-tui/internal/model"
)

// gatedBackend returns whatever the test sends on the next gate.
type gatedBackend struct {
	gates chan chan []model.Resource
}

func (b *gatedBackend) List(ctx context.Context) ([]model.Resource, error) {
	gate := make(chan []model.Resource)
	b.gates <- gate
	select {
	case items := <-gate:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *gatedBackend) Create(context.Context, model.ResourceInput) error { return nil }
func (b *gatedBackend) Delete(context.Context, int) error                 { return nil }

type tokenSession struct{ token string }

func (s *tokenSession) Token() string                      { return s.token }
func (s *tokenSession) Invalidate(context.Context, string) { s.token = "" }

func newClient(t *testing.T, srv *apitest.Server, user string) *api.Client {
	t.Helper()
	log, _ := test.NewNullLogger()
	return api.NewClient(srv.URL, api.WithLogger(log), api.WithSession(&tokenSession{token: srv.Token(user)}))
}

// =============================================================================
// OUT-OF-ORDER GUARD
// =============================================================================

func TestLoad_StaleResponseNeverOverwritesNewer(t *testing.T) {
	backend := &gatedBackend{gates: make(chan chan []model.Resource)}
	log, _ := test.NewNullLogger()
	cache := New[model.Resource, model.ResourceInput]("recursos", backend, log)
	ctx := context.Background()

	older := make(chan error, 1)
	go func() { older <- cache.Load(ctx) }()
	firstGate := <-backend.gates

	newer := make(chan error, 1)
	go func() { newer <- cache.Load(ctx) }()
	secondGate := <-backend.gates

	// The second Load answers first.
	secondGate <- []model.Resource{{ID: 2, Nome: "new"}}
	require.NoError(t, <-newer)

	firstGate <- []model.Resource{{ID: 1, Nome: "old"}}
	assert.ErrorIs(t, <-older, ErrStale)

	items := cache.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].Nome)
}

func TestLoad_InOrderResponsesApply(t *testing.T) {
	backend := &gatedBackend{gates: make(chan chan []model.Resource)}
	cache := New[model.Resource, model.ResourceInput]("recursos", backend, nil)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		done := make(chan error, 1)
		go func() { done <- cache.Load(ctx) }()
		gate := <-backend.gates
		gate <- make([]model.Resource, i)
		require.NoError(t, <-done)
		assert.Equal(t, i, cache.Len())
	}
}

func TestClear_MakesInflightLoadStale(t *testing.T) {
	backend := &gatedBackend{gates: make(chan chan []model.Resource)}
	cache := New[model.Resource, model.ResourceInput]("recursos", backend, nil)

	done := make(chan error, 1)
	go func() { done <- cache.Load(context.Background()) }()
	gate := <-backend.gates

	cache.Clear()
	gate <- []model.Resource{{ID: 7}}
	assert.ErrorIs(t, <-done, ErrStale)
	assert.Zero(t, cache.Len())
	loaded, _ := cache.Loaded()
	assert.False(t, loaded)
}

func TestLoad_FailureKeepsItems(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedResource(model.Resource{Nome: "a", Tipo: model.ResourceEquipment, Status: model.ResourceActive})
	cache := NewResources(newClient(t, srv, "admin"), nil)
	ctx := context.Background()

	require.NoError(t, cache.Load(ctx))
	srv.FailOnce(http.MethodGet, api.PathResources, http.StatusInternalServerError)

	err := cache.Load(ctx)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 1, cache.Len())
}

func TestLoad_StaleOverHTTP(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedResource(model.Resource{Nome: "first", Tipo: model.ResourceEquipment, Status: model.ResourceActive})
	cache := NewResources(newClient(t, srv, "admin"), nil)
	ctx := context.Background()

	srv.DelayOnce(http.MethodGet, api.PathResources, 300*time.Millisecond)
	slow := make(chan error, 1)
	go func() { slow <- cache.Load(ctx) }()

	// Wait until the slow request is in flight before changing the data.
	require.Eventually(t, func() bool { return len(srv.Requests()) == 1 }, time.Second, 5*time.Millisecond)
	srv.SeedResource(model.Resource{Nome: "second", Tipo: model.ResourceVehicle, Status: model.ResourceActive})
	require.NoError(t, cache.Load(ctx))

	assert.ErrorIs(t, <-slow, ErrStale)
	assert.Equal(t, 2, cache.Len(), "fresher data survives the slow response")
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestAdd_ReloadedListContainsItemOnce(t *testing.T) {
	srv := apitest.New(t)
	cache := NewResources(newClient(t, srv, "gerente"), nil)
	ctx := context.Background()

	require.NoError(t, cache.Add(ctx, model.ResourceInput{
		Tipo: model.ResourceVehicle, Nome: "Batmóvel", Status: model.ResourceMaintenance, Localizacao: "Caverna",
	}))

	count := 0
	for _, r := range cache.Items() {
		if r.Nome == "Batmóvel" {
			count++
			assert.NotZero(t, r.ID, "id comes from the server")
		}
	}
	assert.Equal(t, 1, count)
}

func TestAdd_FailureDoesNotTouchCache(t *testing.T) {
	srv := apitest.New(t)
	cache := NewResources(newClient(t, srv, "funcionario"), nil)

	err := cache.Add(context.Background(), model.ResourceInput{Tipo: model.ResourceVehicle, Nome: "x", Status: model.ResourceActive})
	assert.ErrorIs(t, err, api.ErrForbidden)
	assert.Zero(t, cache.Len())
	assert.Empty(t, srv.Resources())
}

func TestRemove_IncidentGoneFromCache(t *testing.T) {
	srv := apitest.New(t)
	keep := srv.SeedIncident(model.Incident{Titulo: "keep", Gravidade: model.SeverityLow, Status: model.IncidentOpen})
	drop := srv.SeedIncident(model.Incident{Titulo: "drop", Gravidade: model.SeverityHigh, Status: model.IncidentOpen})
	cache := NewIncidents(newClient(t, srv, "admin"), nil)
	ctx := context.Background()

	require.NoError(t, cache.Load(ctx))
	require.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Remove(ctx, drop.ID))
	_, found := cache.Get(drop.ID)
	assert.False(t, found)
	_, found = cache.Get(keep.ID)
	assert.True(t, found)
}

func TestRemove_ForbiddenForFuncionario(t *testing.T) {
	srv := apitest.New(t)
	inc := srv.SeedIncident(model.Incident{Titulo: "x", Gravidade: model.SeverityLow, Status: model.IncidentOpen})
	cache := NewIncidents(newClient(t, srv, "funcionario"), nil)

	err := cache.Remove(context.Background(), inc.ID)
	assert.True(t, errors.Is(err, api.ErrForbidden))
	assert.Len(t, srv.Incidents(), 1)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestItems_ReturnsCopy(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedResource(model.Resource{Nome: "orig", Tipo: model.ResourceDevice, Status: model.ResourceActive})
	cache := NewResources(newClient(t, srv, "admin"), nil)
	require.NoError(t, cache.Load(context.Background()))

	items := cache.Items()
	items[0].Nome = "mutated"
	assert.Equal(t, "orig", cache.Items()[0].Nome)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	srv := apitest.New(t)
	for i := 0; i < 5; i++ {
		srv.SeedResource(model.Resource{Nome: "r", Tipo: model.ResourceDevice, Status: model.ResourceActive})
	}
	cache := NewResources(newClient(t, srv, "admin"), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := cache.Load(ctx)
			if err != nil && !errors.Is(err, ErrStale) {
				t.Errorf("Load: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = cache.Items()
			_, _ = cache.Loaded()
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, cache.Len())
}
