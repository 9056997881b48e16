// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
	"github.com/jeranaias/wayne-tui/internal/util"
)

const chartLabelWidth = 22

// Dashboard renders the stats cards, the status badge, the camera usage
// ring and the activity chart.
func Dashboard(state AppState) string {
	t := state.theme()
	stats := state.EffectiveStats()

	cards := []string{
		card(t, "Recursos", strconv.Itoa(stats.TotalRecursos)),
		card(t, "Recursos Ativos", strconv.Itoa(stats.RecursosAtivos)),
		card(t, "Incidentes", strconv.Itoa(stats.TotalIncidentes)),
		card(t, "Abertos", strconv.Itoa(stats.IncidentesAbertos)),
		card(t, "Resolvidos", strconv.Itoa(stats.IncidentesResolvidos)),
		card(t, "Câmeras", fmt.Sprintf("%d/%d", stats.CamerasAtivas, stats.TotalCameras)),
	}
	perRow := 6
	switch t.GetLayoutMode() {
	case styles.LayoutNarrow:
		perRow = 2
	case styles.LayoutMedium:
		perRow = 3
	}
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")
	b.WriteString(t.Section.Render("Estado de Segurança"))
	b.WriteString("\n")
	b.WriteString(StatusBadge(state))
	b.WriteString("\n")
	b.WriteString(t.Section.Render("Uso de Câmeras"))
	b.WriteString("\n")
	b.WriteString(CameraRing(state))
	b.WriteString("\n")
	b.WriteString(t.Section.Render("Atividade"))
	b.WriteString("\n")
	b.WriteString(ActivityChart(state))
	return b.String()
}

func card(t *styles.Theme, label, value string) string {
	return t.Card.Render(t.CardLabel.Render(label) + "\n" + t.CardValue.Render(value))
}

// StatusBadge renders the system status with its color and ASCII shape.
func StatusBadge(state AppState) string {
	t := state.theme()
	status := state.Status()
	badge := t.Badge.Background(styles.SystemStatusColor(status)).Render(string(status))
	return styles.SystemStatusIndicator(status) + " " + badge
}

// CameraRing renders the share of active cameras as a progress bar filled
// to the ring's drawn length.
func CameraRing(state AppState) string {
	t := state.theme()
	pct := dashboard.CameraPercent(state.EffectiveStats())

	barWidth := state.width() - 30
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 10 {
		barWidth = 10
	}

	color := styles.Emerald.Dark
	if !t.IsDark {
		color = styles.Emerald.Light
	}
	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return fmt.Sprintf("%s %s", bar.ViewAs(dashboard.RingFill(pct)), t.CardValue.Render(fmt.Sprintf("%3d%%", pct)))
}

// ActivityChart renders the activity series as horizontal bars.
func ActivityChart(state AppState) string {
	t := state.theme()
	series := dashboard.ChartSeries(state.Resources, state.Incidents)

	maxValue := 0
	for _, p := range series {
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}
	barWidth := state.width() - chartLabelWidth - 10
	if barWidth < 5 {
		barWidth = 5
	}

	lines := make([]string, 0, len(series))
	for _, p := range series {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			t.ChartLabel.Render(util.PadRight(p.Label, chartLabelWidth)),
			lipgloss.NewStyle().Foreground(styles.WayneGold).Render(styles.RenderBar(p.Value, maxValue, barWidth)),
			t.ChartValue.Render(strconv.Itoa(p.Value)),
		))
	}
	return strings.Join(lines, "\n")
}
