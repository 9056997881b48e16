// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard derives the dashboard's widget values from server stats
// and the entity caches. Everything here is a pure function.
package dashboard

import (
	"math"

	"github.com/jeranaias/wayne-tui/internal/model"
)

// =============================================================================
// SYSTEM STATUS
// =============================================================================

// Status is the overall security state shown on the dashboard badge.
type Status string

const (
	StatusCritical Status = "CRÍTICO"
	StatusAlert    Status = "ALERTA"
	StatusNormal   Status = "NORMAL"
)

// LocalStatus derives the security state from incidents: CRÍTICO when any
// unresolved incident is Crítica, ALERTA when any unresolved incident is
// Alta, NORMAL otherwise.
func LocalStatus(incidents []model.Incident) Status {
	status := StatusNormal
	for _, inc := range incidents {
		if inc.Status == model.IncidentResolved {
			continue
		}
		switch inc.Gravidade {
		case model.SeverityCritical:
			return StatusCritical
		case model.SeverityHigh:
			status = StatusAlert
		}
	}
	return status
}

// ParseStatus maps the server's status_sistema text onto a Status.
// Unrecognized text yields "" and false.
func ParseStatus(s string) (Status, bool) {
	switch model.Fold(s) {
	case "critico":
		return StatusCritical, true
	case "alerta":
		return StatusAlert, true
	case "normal":
		return StatusNormal, true
	}
	return "", false
}

// EffectiveStatus prefers the server's status and falls back to LocalStatus
// when the server sent nothing usable.
func EffectiveStatus(stats *model.Stats, incidents []model.Incident) Status {
	if stats != nil {
		if s, ok := ParseStatus(stats.StatusSistema); ok {
			return s
		}
	}
	return LocalStatus(incidents)
}

// =============================================================================
// CAMERA RING
// =============================================================================

// RingCircumference is the stroke length of the camera usage ring.
const RingCircumference = 389.0

// CameraPercent returns round(cameras_ativas / total_recursos × 100),
// clamped to [0, 100]. It is 0 when there are no resources.
func CameraPercent(stats model.Stats) int {
	if stats.TotalRecursos <= 0 || stats.CamerasAtivas <= 0 {
		return 0
	}
	pct := int(math.Round(float64(stats.CamerasAtivas) / float64(stats.TotalRecursos) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// RingDashOffset returns the unfilled length of the ring for pct percent:
// RingCircumference at 0%, 0 at 100%. pct is clamped to [0, 100].
func RingDashOffset(pct int) float64 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return RingCircumference - RingCircumference*float64(pct)/100
}

// RingFill is the filled fraction of the ring, in [0, 1].
func RingFill(pct int) float64 {
	return (RingCircumference - RingDashOffset(pct)) / RingCircumference
}

// =============================================================================
// ACTIVITY CHART
// =============================================================================

// Point is one bar of the activity chart.
type Point struct {
	Label string
	Value int
}

// ChartSeries returns the activity chart bars in display order: total
// resources, open incidents, resolved incidents, active cameras. Open
// counts every unresolved incident, matching ComputeStats.
func ChartSeries(resources []model.Resource, incidents []model.Incident) []Point {
	open, resolved := 0, 0
	for _, inc := range incidents {
		switch {
		case inc.Status.IsOpen():
			open++
		case inc.Status == model.IncidentResolved:
			resolved++
		}
	}
	cameras := 0
	for _, r := range resources {
		if r.IsActiveCamera() {
			cameras++
		}
	}
	return []Point{
		{Label: "Recursos", Value: len(resources)},
		{Label: "Incidentes Abertos", Value: open},
		{Label: "Incidentes Resolvidos", Value: resolved},
		{Label: "Câmeras Ativas", Value: cameras},
	}
}

// =============================================================================
// STATS
// =============================================================================

// ComputeStats aggregates the caches into the /dashboard/stats shape.
// Used when the server's stats are unavailable.
func ComputeStats(resources []model.Resource, incidents []model.Incident) model.Stats {
	s := model.Stats{
		TotalRecursos:   len(resources),
		TotalIncidentes: len(incidents),
		StatusSistema:   string(LocalStatus(incidents)),
	}
	for _, r := range resources {
		if r.Status == model.ResourceActive {
			s.RecursosAtivos++
		}
		if r.Tipo == model.ResourceDevice {
			s.TotalCameras++
		}
		if r.IsActiveCamera() {
			s.CamerasAtivas++
		}
	}
	for _, inc := range incidents {
		if inc.Status.IsOpen() {
			s.IncidentesAbertos++
		}
		if inc.Status == model.IncidentResolved {
			s.IncidentesResolvidos++
		}
	}
	return s
}
