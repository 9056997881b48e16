// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/wayne-tui/internal/security"
)

// Glamour style names accepted by RenderMarkdown.
const (
	MarkdownDark  = "dark"
	MarkdownLight = "light"
	MarkdownPlain = "notty"
)

// HelpMarkdown returns the help text for state's session as markdown. Only
// the commands the role may use are listed.
func HelpMarkdown(state AppState) string {
	var b strings.Builder
	b.WriteString("# Wayne Security\n\n")

	if s := state.Session; s != nil {
		desc := security.Describe(s.Role)
		fmt.Fprintf(&b, "Conectado como **%s**, perfil **%s** (%s).\n\n", s.Username, desc.Name, desc.Description)
	}

	b.WriteString("## Navegação\n\n")
	b.WriteString("| Tecla | Ação |\n|---|---|\n")
	b.WriteString("| `1`-`5` / `tab` | trocar de tela |\n")
	b.WriteString("| `↑`/`↓` | selecionar linha |\n")
	b.WriteString("| `r` | recarregar dados |\n")
	b.WriteString("| `ctrl+l` | sair da sessão |\n")
	b.WriteString("| `q` | fechar o programa |\n")

	var actions []string
	if state.Can(security.ActionAddResource) {
		actions = append(actions, "| `a` em Recursos | adicionar recurso |")
	}
	if state.Can(security.ActionRemoveResource) {
		actions = append(actions, "| `x` em Recursos | remover recurso selecionado |")
	}
	if state.Can(security.ActionAddIncident) {
		actions = append(actions, "| `a` em Incidentes | registrar incidente |")
	}
	if state.Can(security.ActionRemoveIncident) {
		actions = append(actions, "| `x` em Incidentes | remover incidente selecionado |")
	}
	if len(actions) > 0 {
		b.WriteString("\n## Ações do seu perfil\n\n")
		b.WriteString("| Tecla | Ação |\n|---|---|\n")
		b.WriteString(strings.Join(actions, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n## Estado de segurança\n\n")
	b.WriteString("- **CRÍTICO**: há incidente de gravidade Crítica não resolvido\n")
	b.WriteString("- **ALERTA**: há incidente de gravidade Alta não resolvido\n")
	b.WriteString("- **NORMAL**: nenhum dos casos acima\n")
	return b.String()
}

// RenderMarkdown renders md with glamour at width using style
// (MarkdownDark, MarkdownLight or MarkdownPlain).
func RenderMarkdown(md string, width int, style string) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Help renders HelpMarkdown for the terminal, falling back to the raw
// markdown if rendering fails.
func Help(state AppState) string {
	style := MarkdownDark
	if !state.theme().IsDark {
		style = MarkdownLight
	}
	md := HelpMarkdown(state)
	out, err := RenderMarkdown(md, state.width()-4, style)
	if err != nil {
		return md
	}
	return out
}
