// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/wayne-tui/internal/ui/views"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the dashboard.
type KeyMap struct {
	NextTab   key.Binding
	PrevTab   key.Binding
	GoTo      key.Binding
	Add       key.Binding
	Remove    key.Binding
	Refresh   key.Binding
	Logout    key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Confirm   key.Binding
	Deny      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "próxima tela"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "tela anterior"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "ir para tela"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "adicionar"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remover"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "recarregar"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "sair da sessão"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirmar"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancelar"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "próximo campo"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "campo anterior"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "s"),
			key.WithHelp("s", "sim"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "não"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "fechar"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "fechar"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the status bar for screen. Add
// and Remove are listed by views.Controls instead, gated by role.
func (k KeyMap) ShortHelp(screen views.Screen) []key.Binding {
	switch screen {
	case views.ScreenLogin:
		return []key.Binding{k.Submit, k.NextField, k.ForceQuit}
	case views.ScreenResources, views.ScreenIncidents:
		return []key.Binding{k.NextTab, k.Refresh, k.Logout, k.Quit}
	}
	return []key.Binding{k.NextTab, k.GoTo, k.Refresh, k.Logout, k.Quit}
}

// FormHelp returns the bindings shown while an add form is open.
func (k KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.Cancel}
}
