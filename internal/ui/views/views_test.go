// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/session"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
)

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "adicionar"))
	removeKey = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remover"))
)

func stateFor(role security.Role) AppState {
	return AppState{
		Session: &session.Session{Username: "bruce", Role: role},
		Resources: []model.Resource{
			{ID: 1, Tipo: model.ResourceDevice, Nome: "Câmera Portão", Status: model.ResourceActive, Localizacao: "Portão"},
			{ID: 2, Tipo: model.ResourceVehicle, Nome: "Batmóvel", Status: model.ResourceMaintenance, Localizacao: "Caverna"},
			{ID: 3, Tipo: model.ResourceEquipment, Nome: "Gancho", Status: model.ResourceInactive},
		},
		Incidents: []model.Incident{
			{ID: 10, Titulo: "Invasão", Gravidade: model.SeverityCritical, Status: model.IncidentOpen},
			{ID: 11, Titulo: "Alarme", Gravidade: model.SeverityLow, Status: model.IncidentResolved},
		},
		Theme: styles.NewTheme(styles.ModeDark),
		Width: 100,
	}
}

// =============================================================================
// SCREENS
// =============================================================================

func TestVisibleScreens(t *testing.T) {
	assert.Empty(t, VisibleScreens(AppState{}), "no session, no tabs")

	for _, role := range security.Roles() {
		screens := VisibleScreens(stateFor(role))
		assert.Contains(t, screens, ScreenDashboard, role)
		assert.Equal(t, security.Allowed(role, security.ActionViewReports), containsScreen(screens, ScreenReports), role)
	}
}

func containsScreen(list []Screen, s Screen) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func TestScreen_LoginAlwaysAllowed(t *testing.T) {
	assert.True(t, ScreenLogin.Allowed(AppState{}))
	assert.False(t, ScreenHelp.Allowed(AppState{}))
	assert.True(t, ScreenHelp.Allowed(stateFor(security.RoleFuncionario)))
}

func TestHeader_ShowsUserAndRole(t *testing.T) {
	out := Header(stateFor(security.RoleGerente), ScreenResources)
	assert.Contains(t, out, "WAYNE SECURITY")
	assert.Contains(t, out, "bruce")
	assert.Contains(t, out, "(gerente)")
	assert.Contains(t, out, "Recursos")
}

func TestStatusBar_SkipsDisabledBindings(t *testing.T) {
	disabled := key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "escondido"), key.WithDisabled())
	out := StatusBar(stateFor(security.RoleAdmin), []key.Binding{addKey, disabled}, "falhou", true)
	assert.Contains(t, out, "adicionar")
	assert.NotContains(t, out, "escondido")
	assert.Contains(t, out, styles.StatusIndicators.Error+" falhou")
}

// =============================================================================
// PERMISSION GATING
// =============================================================================

func TestControls_GatedByRole(t *testing.T) {
	tests := []struct {
		role       security.Role
		kind       Kind
		wantAdd    bool
		wantRemove bool
	}{
		{security.RoleFuncionario, KindResources, false, false},
		{security.RoleFuncionario, KindIncidents, true, false},
		{security.RoleGerente, KindResources, true, true},
		{security.RoleGerente, KindIncidents, true, true},
		{security.RoleAdmin, KindResources, true, true},
	}
	for _, tt := range tests {
		out := Controls(stateFor(tt.role), tt.kind, addKey, removeKey)
		assert.Equal(t, tt.wantAdd, strings.Contains(out, "adicionar"), "%s add", tt.role)
		assert.Equal(t, tt.wantRemove, strings.Contains(out, "remover"), "%s remove", tt.role)
		if !tt.wantAdd && !tt.wantRemove {
			assert.Contains(t, out, "somente leitura")
		}
	}
}

func TestControls_NoSessionRendersNothingActionable(t *testing.T) {
	out := Controls(AppState{}, KindIncidents, addKey, removeKey)
	assert.NotContains(t, out, "adicionar")
	assert.NotContains(t, out, "remover")
}

func TestReports_PermissionDeniedWithoutSession(t *testing.T) {
	assert.Contains(t, Reports(AppState{}), model.MsgPermissionDenied)
}

func TestReports_Counts(t *testing.T) {
	out := Reports(stateFor(security.RoleFuncionario))
	assert.Contains(t, out, "Total de recursos:")
	assert.Contains(t, out, "Recursos por tipo")
	assert.Contains(t, out, "Dispositivo")
	assert.Contains(t, out, "Crítica")
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_UsesLocalStatsWithoutServer(t *testing.T) {
	out := Dashboard(stateFor(security.RoleAdmin))
	assert.Contains(t, out, "CRÍTICO")
	assert.Contains(t, out, "33%")
	assert.Contains(t, out, "Câmeras Ativas")
}

func TestDashboard_PrefersServerStats(t *testing.T) {
	state := stateFor(security.RoleAdmin)
	state.Stats = &model.Stats{StatusSistema: "NORMAL", TotalRecursos: 4, CamerasAtivas: 1}
	out := Dashboard(state)
	assert.Contains(t, out, "NORMAL")
	assert.Contains(t, out, "25%")
}

func TestDashboard_ZeroResources(t *testing.T) {
	out := Dashboard(AppState{Session: &session.Session{Username: "x", Role: security.RoleAdmin}})
	assert.Contains(t, out, "  0%")
	assert.Contains(t, out, "NORMAL")
}

func TestRenderers_AreIdempotent(t *testing.T) {
	state := stateFor(security.RoleGerente)
	assert.Equal(t, Dashboard(state), Dashboard(state))
	assert.Equal(t, Reports(state), Reports(state))
	assert.Equal(t, Header(state, ScreenDashboard), Header(state, ScreenDashboard))
	assert.Equal(t, HelpMarkdown(state), HelpMarkdown(state))
}

func TestRenderers_DoNotMutateState(t *testing.T) {
	state := stateFor(security.RoleAdmin)
	before := append([]model.Resource(nil), state.Resources...)
	_ = Dashboard(state)
	_ = Reports(state)
	_ = ResourceRows(state.Resources)
	assert.Equal(t, before, state.Resources)
}

// =============================================================================
// TABLES
// =============================================================================

func TestResourceRows(t *testing.T) {
	rows := ResourceRows(stateFor(security.RoleAdmin).Resources)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Dispositivo", "Câmera Portão", "Ativo", "Portão"}, []string(rows[0]))
	assert.Equal(t, "Batmóvel", rows[1][2])
}

func TestIncidentRows(t *testing.T) {
	rows := IncidentRows(stateFor(security.RoleAdmin).Incidents)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"10", "Invasão", "Crítica", "Aberto"}, []string(rows[0]))
}

func TestColumns_FitWidth(t *testing.T) {
	for _, width := range []int{80, 100, 160} {
		for _, kind := range []Kind{KindResources, KindIncidents} {
			cols := Columns(kind, width)
			total := 0
			for _, c := range cols {
				total += c.Width + 2
			}
			assert.LessOrEqual(t, total, width, "kind=%d width=%d", kind, width)
			assert.Equal(t, len(cols[0].Title), 2)
		}
	}
	assert.Len(t, ResourceColumns(80), 5)
	assert.Len(t, IncidentColumns(80), 4)
}

// =============================================================================
// HELP, LOGIN, FORMS
// =============================================================================

func TestHelpMarkdown_ListsOnlyAllowedActions(t *testing.T) {
	staff := HelpMarkdown(stateFor(security.RoleFuncionario))
	assert.Contains(t, staff, "registrar incidente")
	assert.NotContains(t, staff, "remover recurso")

	manager := HelpMarkdown(stateFor(security.RoleGerente))
	assert.Contains(t, manager, "remover recurso selecionado")
	assert.Contains(t, manager, "remover incidente selecionado")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Título\n\ntexto **forte**", 60, MarkdownPlain)
	require.NoError(t, err)
	assert.Contains(t, out, "Título")
	assert.Contains(t, out, "forte")
}

func TestLogin_ShowsErrorAndBusy(t *testing.T) {
	state := AppState{Theme: styles.NewTheme(styles.ModeDark), Width: 80, Height: 20}
	out := Login(state, LoginView{Username: "admin", Password: "••••", Error: model.MsgInvalidCredentials})
	assert.Contains(t, out, model.MsgInvalidCredentials)

	out = Login(state, LoginView{Busy: "|", Error: "ignored while busy"})
	assert.Contains(t, out, "Entrando")
	assert.NotContains(t, out, "ignored while busy")
}

func TestForm_RendersFieldsAndError(t *testing.T) {
	out := Form(stateFor(security.RoleAdmin), FormView{
		Title:  "Novo Recurso",
		Fields: []FormField{{Label: "Nome", Input: "> _", Hint: "obrigatório"}},
		Error:  model.MsgResourceNameRequired,
	})
	assert.Contains(t, out, "Novo Recurso")
	assert.Contains(t, out, "obrigatório")
	assert.Contains(t, out, model.MsgResourceNameRequired)
}
