// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/model"
)

// ErrStale is returned by Load when a newer Load has already been applied.
// The cache is unchanged and holds the newer data.
var ErrStale = errors.New("stale response discarded")

// Backend is the server side of a cache.
type Backend[T model.Entity, In any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) error
	Delete(ctx context.Context, id int) error
}

// Cache mirrors one server collection. It is safe for concurrent use.
type Cache[T model.Entity, In any] struct {
	name    string
	backend Backend[T, In]
	log     logrus.FieldLogger

	mu       sync.RWMutex
	items    []T
	issued   uint64
	applied  uint64
	loadedAt time.Time
	loaded   bool
}

// New creates an empty cache over backend. name is used in logs and errors.
func New[T model.Entity, In any](name string, backend Backend[T, In], log logrus.FieldLogger) *Cache[T, In] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache[T, In]{
		name:    name,
		backend: backend,
		log:     log.WithField("cache", name),
	}
}

// Name returns the cache name.
func (c *Cache[T, In]) Name() string {
	return c.name
}

// Load fetches the full collection and replaces the cache with it.
// A failed fetch leaves the cache untouched.
func (c *Cache[T, In]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	ticket := c.issued
	c.mu.Unlock()

	items, err := c.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket <= c.applied {
		c.log.WithFields(logrus.Fields{"ticket": ticket, "applied": c.applied}).Debug("Discarding stale load")
		return ErrStale
	}
	c.applied = ticket
	c.items = items
	c.loaded = true
	c.loadedAt = time.Now()
	c.log.WithField("count", len(items)).Debug("Cache loaded")
	return nil
}

// Add creates an item on the server and reloads.
func (c *Cache[T, In]) Add(ctx context.Context, in In) error {
	if err := c.backend.Create(ctx, in); err != nil {
		return fmt.Errorf("add %s: %w", c.name, err)
	}
	return c.reload(ctx)
}

// Remove deletes the item with id on the server and reloads.
func (c *Cache[T, In]) Remove(ctx context.Context, id int) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove %s %d: %w", c.name, id, err)
	}
	return c.reload(ctx)
}

// reload is Load after a mutation. Losing the race to a newer Load is fine:
// that Load started after the mutation and already reflects it.
func (c *Cache[T, In]) reload(ctx context.Context) error {
	if err := c.Load(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}

// Items returns a copy of the cached items in server order.
func (c *Cache[T, In]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the cached item with id.
func (c *Cache[T, In]) Get(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of cached items.
func (c *Cache[T, In]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loaded reports whether a Load has succeeded, and when.
func (c *Cache[T, In]) Loaded() (bool, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.loadedAt
}

// Clear empties the cache, as on logout. In-flight loads become stale.
func (c *Cache[T, In]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = c.issued
	c.items = nil
	c.loaded = false
	c.loadedAt = time.Time{}
}

// =============================================================================
// API BACKENDS
// =============================================================================

// Resources caches /recursos/.
type Resources = Cache[model.Resource, model.ResourceInput]

// Incidents caches /incidentes/.
type Incidents = Cache[model.Incident, model.IncidentInput]

// NewResources creates the resource cache over client.
func NewResources(client *api.Client, log logrus.FieldLogger) *Resources {
	return New[model.Resource, model.ResourceInput]("recursos", resourceBackend{client}, log)
}

// NewIncidents creates the incident cache over client.
func NewIncidents(client *api.Client, log logrus.FieldLogger) *Incidents {
	return New[model.Incident, model.IncidentInput]("incidentes", incidentBackend{client}, log)
}

type resourceBackend struct{ c *api.Client }

func (b resourceBackend) List(ctx context.Context) ([]model.Resource, error) {
	return b.c.ListResources(ctx)
}

func (b resourceBackend) Create(ctx context.Context, in model.ResourceInput) error {
	_, err := b.c.CreateResource(ctx, in)
	return err
}

func (b resourceBackend) Delete(ctx context.Context, id int) error {
	return b.c.DeleteResource(ctx, id)
}

type incidentBackend struct{ c *api.Client }

func (b incidentBackend) List(ctx context.Context) ([]model.Incident, error) {
	return b.c.ListIncidents(ctx)
}

func (b incidentBackend) Create(ctx context.Context, in model.IncidentInput) error {
	_, err := b.c.CreateIncident(ctx, in)
	return err
}

func (b incidentBackend) Delete(ctx context.Context, id int) error {
	return b.c.DeleteIncident(ctx, id)
}
