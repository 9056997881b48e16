// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jeranaias/wayne-tui/internal/model"
)

// Endpoint paths. Collection paths keep the trailing slash the server
// routes on.
const (
	PathToken      = "/token"
	PathRegister   = "/cadastro"
	PathResources  = "/recursos/"
	PathIncidents  = "/incidentes/"
	PathStats      = "/dashboard/stats"
	PathHealth     = "/health"
	PathSetupAdmin = "/setup-admin"
)

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login exchanges credentials for a bearer token (form-encoded POST /token).
// A 401 is reported as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	res := c.DoForm(ctx, http.MethodPost, PathToken, map[string]string{
		"username": username,
		"password": password,
	})
	if res.Status == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, res.Message)
	}

	var tok model.TokenResponse
	if err := res.Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.New("login response has no access_token")
	}
	return tok.AccessToken, nil
}

// Register creates a user account (JSON POST /cadastro).
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	return c.Do(ctx, http.MethodPost, PathRegister, reg).Err()
}

// SetupAdmin asks the server to create its initial admin account.
func (c *Client) SetupAdmin(ctx context.Context) (string, error) {
	var msg model.MessageResponse
	if err := c.Do(ctx, http.MethodPost, PathSetupAdmin, nil).Decode(&msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// =============================================================================
// RESOURCES
// =============================================================================

// ListResources fetches every resource.
func (c *Client) ListResources(ctx context.Context) ([]model.Resource, error) {
	var out []model.Resource
	if err := c.Do(ctx, http.MethodGet, PathResources, nil).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateResource creates a resource. The server assigns the id.
func (c *Client) CreateResource(ctx context.Context, in model.ResourceInput) (model.Resource, error) {
	var out model.Resource
	err := c.Do(ctx, http.MethodPost, PathResources, in).Decode(&out)
	return out, err
}

// DeleteResource deletes the resource with id.
func (c *Client) DeleteResource(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, PathResources+strconv.Itoa(id), nil).Err()
}

// =============================================================================
// INCIDENTS
// =============================================================================

// ListIncidents fetches every incident.
func (c *Client) ListIncidents(ctx context.Context) ([]model.Incident, error) {
	var out []model.Incident
	if err := c.Do(ctx, http.MethodGet, PathIncidents, nil).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIncident creates an incident. The server assigns the id.
func (c *Client) CreateIncident(ctx context.Context, in model.IncidentInput) (model.Incident, error) {
	var out model.Incident
	err := c.Do(ctx, http.MethodPost, PathIncidents, in).Decode(&out)
	return out, err
}

// DeleteIncident deletes the incident with id.
func (c *Client) DeleteIncident(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, PathIncidents+strconv.Itoa(id), nil).Err()
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Stats fetches the dashboard aggregates.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	err := c.Do(ctx, http.MethodGet, PathStats, nil).Decode(&out)
	return out, err
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (model.Health, error) {
	var out model.Health
	err := c.Do(ctx, http.MethodGet, PathHealth, nil).Decode(&out)
	return out, err
}
