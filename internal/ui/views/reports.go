// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
	"github.com/jeranaias/wayne-tui/internal/util"
)

// Reports renders the reports screen. Roles without ver_relatorios get the
// permission message instead.
func Reports(state AppState) string {
	t := state.theme()
	if !state.Can(security.ActionViewReports) {
		return t.ErrorStyle.Render(model.MsgPermissionDenied)
	}

	rep := dashboard.BuildReport(state.Resources, state.Incidents)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", t.CardLabel.Render("Total de recursos:"), t.CardValue.Render(fmt.Sprint(rep.TotalResources)))
	fmt.Fprintf(&b, "%s %s\n", t.CardLabel.Render("Total de incidentes:"), t.CardValue.Render(fmt.Sprint(rep.TotalIncidents)))

	left := lipgloss.JoinVertical(lipgloss.Left,
		countBlock(t, "Recursos por tipo", rep.ResourcesByType, nil),
		countBlock(t, "Recursos por status", rep.ResourcesByStatus, func(l string) lipgloss.TerminalColor {
			return styles.ResourceStatusColor(model.ResourceStatus(l))
		}),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		countBlock(t, "Incidentes por gravidade", rep.IncidentsBySeverity, func(l string) lipgloss.TerminalColor {
			return styles.SeverityColor(model.Severity(l))
		}),
		countBlock(t, "Incidentes por status", rep.IncidentsByStatus, func(l string) lipgloss.TerminalColor {
			return styles.IncidentStatusColor(model.IncidentStatus(l))
		}),
	)

	if t.GetLayoutMode() == styles.LayoutNarrow {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, left, right))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right))
	}
	return b.String()
}

func countBlock(t *styles.Theme, title string, counts []dashboard.Count, color func(string) lipgloss.TerminalColor) string {
	lines := []string{t.Section.Render(title)}
	for _, c := range counts {
		label := util.PadRight(c.Label, 14)
		if color != nil {
			label = lipgloss.NewStyle().Foreground(color(c.Label)).Render(label)
		}
		lines = append(lines, fmt.Sprintf("  %s %s", label, t.CardValue.Render(util.PadLeft(fmt.Sprint(c.Value), 4))))
	}
	return strings.Join(lines, "\n")
}
