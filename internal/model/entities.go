// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// TIMESTAMP
// =============================================================================

// Timestamp accepts the server's naive ISO-8601 datetimes (no zone, optional
// fraction) as well as RFC 3339. Naive values are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

// =============================================================================
// ENTITIES
// =============================================================================

// Entity is implemented by every server-side record with an id.
type Entity interface {
	EntityID() int
}

// Resource is a managed asset as returned by /recursos/.
type Resource struct {
	ID          int            `json:"id"`
	Tipo        ResourceType   `json:"tipo"`
	Nome        string         `json:"nome"`
	Status      ResourceStatus `json:"status"`
	Localizacao string         `json:"localizacao"`
	CreatedAt   Timestamp      `json:"created_at"`
	UpdatedAt   *Timestamp     `json:"updated_at,omitempty"`
	CriadoPor   int            `json:"criado_por,omitempty"`
}

// EntityID implements Entity.
func (r Resource) EntityID() int { return r.ID }

// IsActiveCamera reports whether the resource counts as an active camera.
func (r Resource) IsActiveCamera() bool {
	return r.Tipo == ResourceDevice && r.Status == ResourceActive
}

// ResourceInput is the body of POST /recursos/.
type ResourceInput struct {
	Tipo        ResourceType   `json:"tipo" validate:"resource_type"`
	Nome        string         `json:"nome" validate:"required,max=120"`
	Status      ResourceStatus `json:"status" validate:"resource_status"`
	Localizacao string         `json:"localizacao" validate:"max=200"`
}

// Incident is a recorded security event as returned by /incidentes/.
type Incident struct {
	ID        int            `json:"id"`
	Titulo    string         `json:"titulo"`
	Gravidade Severity       `json:"gravidade"`
	Status    IncidentStatus `json:"status"`
	Descricao string         `json:"descricao,omitempty"`
	RecursoID *int           `json:"recurso_id,omitempty"`
	CreatedAt Timestamp      `json:"created_at"`
	UpdatedAt *Timestamp     `json:"updated_at,omitempty"`
	CriadoPor int            `json:"criado_por,omitempty"`
}

// EntityID implements Entity.
func (i Incident) EntityID() int { return i.ID }

// SortBySeverity orders incidents from most to least severe, oldest id
// first within a severity. Unknown severities sort last.
func SortBySeverity(items []Incident) {
	sort.SliceStable(items, func(a, b int) bool {
		ra, rb := items[a].Gravidade.Rank(), items[b].Gravidade.Rank()
		if ra != rb {
			return ra > rb
		}
		return items[a].ID < items[b].ID
	})
}

// IncidentInput is the body of POST /incidentes/.
type IncidentInput struct {
	Titulo    string         `json:"titulo" validate:"required,max=200"`
	Gravidade Severity       `json:"gravidade" validate:"severity"`
	Status    IncidentStatus `json:"status" validate:"incident_status"`
	Descricao string         `json:"descricao,omitempty" validate:"max=2000"`
	RecursoID *int           `json:"recurso_id,omitempty" validate:"omitempty,gt=0"`
}

// =============================================================================
// DASHBOARD AND USERS
// =============================================================================

// Stats is the body of GET /dashboard/stats. Servers omit some fields;
// missing values decode as zero.
type Stats struct {
	StatusSistema        string `json:"status_sistema"`
	TotalRecursos        int    `json:"total_recursos"`
	RecursosAtivos       int    `json:"recursos_ativos"`
	TotalIncidentes      int    `json:"total_incidentes"`
	TotalCameras         int    `json:"total_cameras"`
	CamerasAtivas        int    `json:"cameras_ativas"`
	IncidentesAbertos    int    `json:"incidentes_abertos"`
	IncidentesResolvidos int    `json:"incidentes_resolvidos"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// Registration is the body of POST /cadastro.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Nome     string `json:"nome" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Cargo    string `json:"cargo,omitempty" validate:"max=80"`
	Role     string `json:"role" validate:"required,role"`
	Senha    string `json:"senha" validate:"required,min=4"`
}

// TokenResponse is the body of POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is the body of DELETE and setup endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
