// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/model"
)

// =============================================================================
// BRAND COLORS
// =============================================================================

// WayneGold - Brand accent, header and active tab
var WayneGold = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FACC15"}

// Slate - Secondary accent, borders of inactive elements
var Slate = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}

// Cyan - Info, key hints
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, critical severity
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, high severity
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Yellow - Medium severity
var Yellow = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FDE047"}

// Emerald - Success, low severity, active resources
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Blue - In-progress incidents
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
var SelectionBg = lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#3F3A1D"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// ACCESSIBILITY: Shapes for colorblind users
// =============================================================================

// StatusIndicatorSet contains text indicators for status states.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// StatusIndicators provides ASCII indicators alongside colors.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}

// =============================================================================
// DOMAIN COLOR LOOKUPS
// =============================================================================

// SeverityColor returns the color for an incident severity.
func SeverityColor(s model.Severity) lipgloss.AdaptiveColor {
	switch s {
	case model.SeverityCritical:
		return Rose
	case model.SeverityHigh:
		return Amber
	case model.SeverityMedium:
		return Yellow
	case model.SeverityLow:
		return Emerald
	}
	return TextSecondary
}

// IncidentStatusColor returns the color for an incident status.
func IncidentStatusColor(s model.IncidentStatus) lipgloss.AdaptiveColor {
	switch s {
	case model.IncidentOpen:
		return Rose
	case model.IncidentInProgress:
		return Blue
	case model.IncidentResolved:
		return Emerald
	}
	return TextSecondary
}

// ResourceStatusColor returns the color for a resource status.
func ResourceStatusColor(s model.ResourceStatus) lipgloss.AdaptiveColor {
	switch s {
	case model.ResourceActive:
		return Emerald
	case model.ResourceInactive:
		return TextMuted
	case model.ResourceMaintenance:
		return Amber
	}
	return TextSecondary
}

// SystemStatusColor returns the badge color for the overall status.
func SystemStatusColor(s dashboard.Status) lipgloss.AdaptiveColor {
	switch s {
	case dashboard.StatusCritical:
		return Rose
	case dashboard.StatusAlert:
		return Amber
	}
	return Emerald
}

// SystemStatusIndicator returns the ASCII shape paired with a status badge.
func SystemStatusIndicator(s dashboard.Status) string {
	switch s {
	case dashboard.StatusCritical:
		return StatusIndicators.Error
	case dashboard.StatusAlert:
		return StatusIndicators.Warning
	}
	return StatusIndicators.Success
}
