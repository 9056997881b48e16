// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"

	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
)

// Kind selects the resource or incident variant of a table renderer.
type Kind int

const (
	KindResources Kind = iota
	KindIncidents
)

// AddAction returns the action that gates the add form.
func (k Kind) AddAction() security.Action {
	if k == KindIncidents {
		return security.ActionAddIncident
	}
	return security.ActionAddResource
}

// RemoveAction returns the action that gates delete-selected.
func (k Kind) RemoveAction() security.Action {
	if k == KindIncidents {
		return security.ActionRemoveIncident
	}
	return security.ActionRemoveResource
}

// =============================================================================
// COLUMNS AND ROWS
// =============================================================================

// fit spreads width over columns in proportion to weights. The id column
// keeps a fixed width.
func fit(width int, titles []string, weights []int) []table.Column {
	const idWidth = 5
	avail := width - idWidth - 2*len(titles) - 2
	if avail < 10*len(weights) {
		avail = 10 * len(weights)
	}
	total := 0
	for _, w := range weights {
		total += w
	}

	cols := []table.Column{{Title: "ID", Width: idWidth}}
	for i, title := range titles {
		cols = append(cols, table.Column{Title: title, Width: avail * weights[i] / total})
	}
	return cols
}

// ResourceColumns returns the resource table columns for width.
func ResourceColumns(width int) []table.Column {
	return fit(width, []string{"Tipo", "Nome", "Status", "Localização"}, []int{2, 4, 2, 3})
}

// ResourceRows converts resources to table rows in cache order.
func ResourceRows(items []model.Resource) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, r := range items {
		rows = append(rows, table.Row{strconv.Itoa(r.ID), string(r.Tipo), r.Nome, string(r.Status), r.Localizacao})
	}
	return rows
}

// IncidentColumns returns the incident table columns for width.
func IncidentColumns(width int) []table.Column {
	return fit(width, []string{"Título", "Gravidade", "Status"}, []int{5, 2, 2})
}

// IncidentRows converts incidents to table rows in cache order.
func IncidentRows(items []model.Incident) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, i := range items {
		rows = append(rows, table.Row{strconv.Itoa(i.ID), i.Titulo, string(i.Gravidade), string(i.Status)})
	}
	return rows
}

// Columns returns the columns for kind.
func Columns(kind Kind, width int) []table.Column {
	if kind == KindIncidents {
		return IncidentColumns(width)
	}
	return ResourceColumns(width)
}

// Rows returns the rows for kind from state's caches.
func Rows(kind Kind, state AppState) []table.Row {
	if kind == KindIncidents {
		return IncidentRows(state.Incidents)
	}
	return ResourceRows(state.Resources)
}

// TableStyles returns bubbles table styles from the theme.
func TableStyles(t *styles.Theme) table.Styles {
	s := table.DefaultStyles()
	s.Header = t.TableHeader.Padding(0, 1)
	s.Cell = t.TableCell.Padding(0, 1)
	s.Selected = t.TableSelected
	return s
}

// =============================================================================
// CONTROLS
// =============================================================================

// Controls renders the action hints for a table screen. Hints for actions
// the role lacks are omitted.
func Controls(state AppState, kind Kind, add, remove key.Binding) string {
	t := state.theme()
	var parts []string
	if state.Can(kind.AddAction()) {
		h := add.Help()
		parts = append(parts, t.ShortcutKey.Render(h.Key)+" "+t.ShortcutDesc.Render(h.Desc))
	}
	if state.Can(kind.RemoveAction()) {
		h := remove.Help()
		parts = append(parts, t.ShortcutKey.Render(h.Key)+" "+t.ShortcutDesc.Render(h.Desc))
	}
	if len(parts) == 0 {
		return t.Muted.Render("somente leitura")
	}
	return strings.Join(parts, "  ")
}

// EmptyTable is shown instead of a table with no rows.
func EmptyTable(state AppState, kind Kind) string {
	t := state.theme()
	if kind == KindIncidents {
		return t.Muted.Render("Nenhum incidente registrado.")
	}
	return t.Muted.Render("Nenhum recurso cadastrado.")
}
