// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/ui/views"
)

// formError is a validation failure worded for the user.
type formError string

func (e formError) Error() string { return string(e) }

const errBadResourceID = formError("Recurso deve ser um número.")

type formField struct {
	label string
	hint  string
	input textinput.Model
}

// addForm is the add-resource or add-incident form.
type addForm struct {
	kind   views.Kind
	fields []formField
	focus  int
	err    string
	busy   bool
}

func newField(label, hint, value string, limit int) formField {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = limit
	ti.SetValue(value)
	return formField{label: label, hint: hint, input: ti}
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, " | ")
}

func newResourceForm() *addForm {
	f := &addForm{kind: views.KindResources, fields: []formField{
		newField("Tipo", joinValues(model.ResourceTypes), string(model.ResourceEquipment), 20),
		newField("Nome", "obrigatório", "", 120),
		newField("Status", joinValues(model.ResourceStatuses), string(model.ResourceActive), 20),
		newField("Localização", "", "", 200),
	}}
	f.setFocus(1)
	return f
}

func newIncidentForm() *addForm {
	f := &addForm{kind: views.KindIncidents, fields: []formField{
		newField("Título", "obrigatório", "", 200),
		newField("Gravidade", joinValues(model.Severities), string(model.SeverityLow), 20),
		newField("Status", joinValues(model.IncidentStatuses), string(model.IncidentOpen), 20),
		newField("Descrição", "opcional", "", 2000),
		newField("Recurso", "id, opcional", "", 10),
	}}
	f.setFocus(0)
	return f
}

func (f *addForm) setFocus(i int) tea.Cmd {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.fields {
		if j == f.focus {
			cmd = f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	return cmd
}

func (f *addForm) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *addForm) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// update forwards msg to the focused input.
func (f *addForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *addForm) value(i int) string {
	return f.fields[i].input.Value()
}

func (f *addForm) title() string {
	if f.kind == views.KindIncidents {
		return "Novo Incidente"
	}
	return "Novo Recurso"
}

// resourceInput returns the normalized, validated payload.
func (f *addForm) resourceInput() (model.ResourceInput, error) {
	in := model.ResourceInput{
		Tipo:        model.ResourceType(f.value(0)),
		Nome:        f.value(1),
		Status:      model.ResourceStatus(f.value(2)),
		Localizacao: f.value(3),
	}
	in.Normalize()
	return in, model.Validate(in)
}

// incidentInput returns the normalized, validated payload.
func (f *addForm) incidentInput() (model.IncidentInput, error) {
	in := model.IncidentInput{
		Titulo:    f.value(0),
		Gravidade: model.Severity(f.value(1)),
		Status:    model.IncidentStatus(f.value(2)),
		Descricao: f.value(3),
	}
	in.Normalize()
	if raw := strings.TrimSpace(f.value(4)); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return in, errBadResourceID
		}
		in.RecursoID = &id
	}
	return in, model.Validate(in)
}

func (f *addForm) view(spinnerFrame string) views.FormView {
	v := views.FormView{Title: f.title(), Error: f.err}
	for _, fld := range f.fields {
		v.Fields = append(v.Fields, views.FormField{Label: fld.label, Input: fld.input.View(), Hint: fld.hint})
	}
	if f.busy {
		v.Busy = spinnerFrame
	}
	return v
}
