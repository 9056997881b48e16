// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// data_cmd.go - resources and incidents subcommands.
//
// Usage:
//   wayne resources list
//   wayne resources add --tipo Veículo --nome Batmóvel --status Ativo --local Garagem
//   wayne resources rm 3 --yes
//   wayne incidents list --ordem gravidade
//   wayne incidents add --titulo "Alarme" --gravidade alta --recurso 3
//   wayne incidents rm 7

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
)

// RemovedData is the --json answer of rm.
type RemovedData struct {
	ID int `json:"id"`
}

func (r *Runner) runResources(ctx context.Context, p *ArgParser) (interface{}, error) {
	switch sub := p.Subcommand(); sub {
	case "", "list", "ls":
		return r.listResources(ctx)
	case "add":
		return r.addResource(ctx, p)
	case "rm", "remove", "delete":
		return r.removeEntity(ctx, p, security.ActionRemoveResource, "recurso", r.Client.DeleteResource)
	default:
		return nil, &UsageError{Message: fmt.Sprintf("subcomando desconhecido: resources %s", sub)}
	}
}

func (r *Runner) runIncidents(ctx context.Context, p *ArgParser) (interface{}, error) {
	switch sub := p.Subcommand(); sub {
	case "", "list", "ls":
		return r.listIncidents(ctx, p)
	case "add":
		return r.addIncident(ctx, p)
	case "rm", "remove", "delete":
		return r.removeEntity(ctx, p, security.ActionRemoveIncident, "incidente", r.Client.DeleteIncident)
	default:
		return nil, &UsageError{Message: fmt.Sprintf("subcomando desconhecido: incidents %s", sub)}
	}
}

// =============================================================================
// LIST
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SeparatorStyle).
		Headers(headers...)
}

func (r *Runner) listResources(ctx context.Context) (interface{}, error) {
	if _, err := r.require(security.ActionViewDashboard); err != nil {
		return nil, err
	}
	items, err := r.Client.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	if !r.human() {
		return items, nil
	}
	if len(items) == 0 {
		r.println(DimStyle.Render("Nenhum recurso cadastrado."))
		return items, nil
	}

	t := newTable("ID", "Tipo", "Nome", "Status", "Localização").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Bold(true).Foreground(styles.WayneGold)
			case col == 3 && row < len(items):
				return s.Foreground(styles.ResourceStatusColor(items[row].Status))
			}
			return s
		})
	for _, it := range items {
		t.Row(strconv.Itoa(it.ID), string(it.Tipo), it.Nome, string(it.Status), it.Localizacao)
	}
	r.println(t.Render())
	r.println(DimStyle.Render(fmt.Sprintf("%d recurso(s)", len(items))))
	return items, nil
}

func (r *Runner) listIncidents(ctx context.Context, p *ArgParser) (interface{}, error) {
	order := model.Fold(p.FlagOrDefault("ordem", "id"))
	if order != "id" && order != "gravidade" {
		return nil, &UsageError{Message: fmt.Sprintf("--ordem inválida: %q (id, gravidade)", p.Flag("ordem"))}
	}
	if _, err := r.require(security.ActionViewDashboard); err != nil {
		return nil, err
	}
	items, err := r.Client.ListIncidents(ctx)
	if err != nil {
		return nil, err
	}
	if order == "gravidade" {
		model.SortBySeverity(items)
	}
	if !r.human() {
		return items, nil
	}
	if len(items) == 0 {
		r.println(DimStyle.Render("Nenhum incidente registrado."))
		return items, nil
	}

	t := newTable("ID", "Título", "Gravidade", "Status", "Recurso").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Bold(true).Foreground(styles.WayneGold)
			case row >= len(items):
				return s
			case col == 2:
				return s.Foreground(styles.SeverityColor(items[row].Gravidade))
			case col == 3:
				return s.Foreground(styles.IncidentStatusColor(items[row].Status))
			}
			return s
		})
	for _, it := range items {
		res := "-"
		if it.RecursoID != nil {
			res = strconv.Itoa(*it.RecursoID)
		}
		t.Row(strconv.Itoa(it.ID), it.Titulo, string(it.Gravidade), string(it.Status), res)
	}
	r.println(t.Render())
	r.println(DimStyle.Render(fmt.Sprintf("%d incidente(s)", len(items))))
	return items, nil
}

// =============================================================================
// ADD
// =============================================================================

// enumFlag parses an optional enum flag, keeping def when absent.
func enumFlag[T ~string](p *ArgParser, name string, def T, parse func(string) (T, error)) (T, error) {
	raw := p.Flag(name)
	if raw == "" {
		return def, nil
	}
	v, err := parse(raw)
	if err != nil {
		return def, &UsageError{Message: fmt.Sprintf("--%s: %v", name, err)}
	}
	return v, nil
}

func (r *Runner) addResource(ctx context.Context, p *ArgParser) (interface{}, error) {
	if _, err := r.require(security.ActionAddResource); err != nil {
		return nil, err
	}
	tipo, err := enumFlag(p, "tipo", model.ResourceEquipment, model.ParseResourceType)
	if err != nil {
		return nil, err
	}
	status, err := enumFlag(p, "status", model.ResourceActive, model.ParseResourceStatus)
	if err != nil {
		return nil, err
	}
	in := model.ResourceInput{
		Tipo:        tipo,
		Nome:        p.Flag("nome"),
		Status:      status,
		Localizacao: p.FlagOrDefault("local", p.Flag("localizacao")),
	}
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	created, err := r.Client.CreateResource(ctx, in)
	if err != nil {
		return nil, err
	}
	r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("Recurso #%d %q salvo.", created.ID, created.Nome))
	return created, nil
}

func (r *Runner) addIncident(ctx context.Context, p *ArgParser) (interface{}, error) {
	if _, err := r.require(security.ActionAddIncident); err != nil {
		return nil, err
	}
	sev, err := enumFlag(p, "gravidade", model.SeverityLow, model.ParseSeverity)
	if err != nil {
		return nil, err
	}
	status, err := enumFlag(p, "status", model.IncidentOpen, model.ParseIncidentStatus)
	if err != nil {
		return nil, err
	}
	in := model.IncidentInput{
		Titulo:    p.Flag("titulo"),
		Gravidade: sev,
		Status:    status,
		Descricao: p.Flag("descricao"),
	}
	if raw := strings.TrimSpace(p.Flag("recurso")); raw != "" {
		id, err := ParseID(raw)
		if err != nil {
			return nil, err
		}
		in.RecursoID = &id
	}
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	created, err := r.Client.CreateIncident(ctx, in)
	if err != nil {
		return nil, err
	}
	r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("Incidente #%d %q registrado.", created.ID, created.Titulo))
	return created, nil
}

// =============================================================================
// REMOVE
// =============================================================================

func (r *Runner) removeEntity(ctx context.Context, p *ArgParser, action security.Action, noun string, del func(context.Context, int) error) (interface{}, error) {
	if _, err := r.require(action); err != nil {
		return nil, err
	}
	id, err := ParseID(p.Positional(1))
	if err != nil {
		return nil, err
	}

	// --json is for scripts, which cannot answer a prompt.
	if !p.BoolFlag("yes") && !p.BoolFlag("y") && !r.Args.JSON {
		ok, err := r.Prompt.Confirm(fmt.Sprintf("Remover %s #%d?", noun, id))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	if err := del(ctx, id); err != nil {
		return nil, err
	}
	r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("%s #%d removido.", strings.ToUpper(noun[:1])+noun[1:], id))
	return RemovedData{ID: id}, nil
}
