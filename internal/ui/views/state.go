// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/session"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
)

// AppState is the snapshot every renderer draws from.
type AppState struct {
	Session   *session.Session
	Resources []model.Resource
	Incidents []model.Incident
	// Stats is nil until /dashboard/stats has answered.
	Stats *model.Stats

	Theme  *styles.Theme
	Width  int
	Height int
}

// Can reports whether the session may perform action.
func (s AppState) Can(action security.Action) bool {
	return s.Session.Can(action)
}

// EffectiveStats returns the server stats, or stats computed from the
// caches when the server has not answered.
func (s AppState) EffectiveStats() model.Stats {
	if s.Stats != nil {
		return *s.Stats
	}
	return dashboard.ComputeStats(s.Resources, s.Incidents)
}

// Status returns the badge status.
func (s AppState) Status() dashboard.Status {
	return dashboard.EffectiveStatus(s.Stats, s.Incidents)
}

func (s AppState) theme() *styles.Theme {
	if s.Theme == nil {
		return styles.NewTheme(styles.ModeDark)
	}
	return s.Theme
}

func (s AppState) width() int {
	if s.Width <= 0 {
		return 80
	}
	return s.Width
}

// =============================================================================
// SCREENS
// =============================================================================

// Screen identifies one screen of the app.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenResources
	ScreenIncidents
	ScreenReports
	ScreenHelp
)

var screenTitles = map[Screen]string{
	ScreenLogin:     "Login",
	ScreenDashboard: "Dashboard",
	ScreenResources: "Recursos",
	ScreenIncidents: "Incidentes",
	ScreenReports:   "Relatórios",
	ScreenHelp:      "Ajuda",
}

// Title returns the tab label.
func (s Screen) Title() string {
	return screenTitles[s]
}

// Requires returns the action needed to open the screen, or "" when any
// logged-in role may.
func (s Screen) Requires() security.Action {
	switch s {
	case ScreenDashboard, ScreenResources, ScreenIncidents:
		return security.ActionViewDashboard
	case ScreenReports:
		return security.ActionViewReports
	}
	return ""
}

// Allowed reports whether state's session may open the screen.
func (s Screen) Allowed(state AppState) bool {
	if s == ScreenLogin {
		return true
	}
	if state.Session == nil {
		return false
	}
	if req := s.Requires(); req != "" {
		return state.Can(req)
	}
	return true
}

// NavScreens lists the tab order.
var NavScreens = []Screen{ScreenDashboard, ScreenResources, ScreenIncidents, ScreenReports, ScreenHelp}

// VisibleScreens returns the tabs state's session may open.
func VisibleScreens(state AppState) []Screen {
	out := make([]Screen, 0, len(NavScreens))
	for _, s := range NavScreens {
		if s.Allowed(state) {
			out = append(out, s)
		}
	}
	return out
}
