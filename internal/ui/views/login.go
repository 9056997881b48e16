// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LoginView is the pre-rendered content of the login screen.
type LoginView struct {
	Username string // rendered username input
	Password string // rendered password input
	Error    string
	Busy     string // spinner frame while the request is in flight
	Notice   string // e.g. why the previous session ended
}

// Login renders the login box centered in the window.
func Login(state AppState, v LoginView) string {
	t := state.theme()

	lines := []string{
		t.LoginTitle.Render("WAYNE SECURITY"),
		t.FormLabel.Render("Usuário") + v.Username,
		t.FormLabel.Render("Senha") + v.Password,
		"",
	}
	switch {
	case v.Busy != "":
		lines = append(lines, v.Busy+" Entrando...")
	case v.Error != "":
		lines = append(lines, t.ErrorStyle.Render(v.Error))
	case v.Notice != "":
		lines = append(lines, t.WarningStyle.Render(v.Notice))
	default:
		lines = append(lines, t.FormHint.Render("enter para entrar, tab para trocar de campo"))
	}

	box := t.LoginBox.Render(strings.Join(lines, "\n"))
	height := state.Height
	if height <= 0 {
		height = lipgloss.Height(box)
	}
	return lipgloss.Place(state.width(), height, lipgloss.Center, lipgloss.Center, box)
}
