// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import "strings"

// FormField is one pre-rendered input line.
type FormField struct {
	Label string
	Input string
	Hint  string
}

// FormView is the pre-rendered content of an add form.
type FormView struct {
	Title  string
	Fields []FormField
	Error  string
	Busy   string
}

// Form renders an add form box.
func Form(state AppState, v FormView) string {
	t := state.theme()

	lines := []string{t.LoginTitle.Render(v.Title)}
	for _, f := range v.Fields {
		line := t.FormLabel.Render(f.Label) + f.Input
		if f.Hint != "" {
			line += "  " + t.FormHint.Render(f.Hint)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")
	switch {
	case v.Busy != "":
		lines = append(lines, v.Busy+" Salvando...")
	case v.Error != "":
		lines = append(lines, t.ErrorStyle.Render(v.Error))
	default:
		lines = append(lines, t.FormHint.Render("enter salva, esc cancela, tab troca de campo"))
	}
	return t.FormBox.Render(strings.Join(lines, "\n"))
}
