// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/wayne-tui/internal/security"
)

// User-facing messages shown by the dashboard.
const (
	MsgResourceNameRequired  = "Digite um nome para o recurso!"
	MsgIncidentTitleRequired = "Digite o título do incidente!"
	MsgPermissionDenied      = "Você não tem permissão."
	MsgInvalidCredentials    = "Usuário ou senha inválidos!"
	MsgConnectionFailed      = "Erro ao conectar com o servidor!"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		register := func(tag string, ok func(string) bool) {
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return ok(fl.Field().String())
			})
		}
		register("resource_type", func(s string) bool { _, err := ParseResourceType(s); return err == nil })
		register("resource_status", func(s string) bool { _, err := ParseResourceStatus(s); return err == nil })
		register("severity", func(s string) bool { _, err := ParseSeverity(s); return err == nil })
		register("incident_status", func(s string) bool { _, err := ParseIncidentStatus(s); return err == nil })
		register("role", func(s string) bool { _, ok := security.ParseRole(s); return ok })
		validate = v
	})
	return validate
}

// Validate checks a payload against its struct tags. Whitespace-only strings
// count as empty for required fields, so callers should Normalize first.
func Validate(payload interface{}) error {
	return validatorInstance().Struct(payload)
}

// Normalize trims text fields and canonicalizes enum spellings in place.
// Unknown enum values are left as typed so Validate reports them.
func (in *ResourceInput) Normalize() {
	in.Nome = strings.TrimSpace(in.Nome)
	in.Localizacao = strings.TrimSpace(in.Localizacao)
	if t, err := ParseResourceType(string(in.Tipo)); err == nil {
		in.Tipo = t
	}
	if s, err := ParseResourceStatus(string(in.Status)); err == nil {
		in.Status = s
	}
}

// Normalize trims text fields and canonicalizes enum spellings in place.
func (in *IncidentInput) Normalize() {
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descricao = strings.TrimSpace(in.Descricao)
	if g, err := ParseSeverity(string(in.Gravidade)); err == nil {
		in.Gravidade = g
	}
	if s, err := ParseIncidentStatus(string(in.Status)); err == nil {
		in.Status = s
	}
}

// Normalize trims text fields in place.
func (r *Registration) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Nome = strings.TrimSpace(r.Nome)
	r.Email = strings.TrimSpace(r.Email)
	r.Cargo = strings.TrimSpace(r.Cargo)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// UserMessage converts a validation error into the message shown to the
// user. Missing resource names and incident titles use the dashboard's
// fixed wording.
func UserMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	fe := verrs[0]
	switch {
	case fe.StructNamespace() == "ResourceInput.Nome" && fe.Tag() == "required":
		return MsgResourceNameRequired
	case fe.StructNamespace() == "IncidentInput.Titulo" && fe.Tag() == "required":
		return MsgIncidentTitleRequired
	}

	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Campo obrigatório: %s", field)
	case "max":
		return fmt.Sprintf("%s excede %s caracteres", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s precisa de ao menos %s caracteres", field, fe.Param())
	case "email":
		return "E-mail inválido"
	case "alphanum":
		return fmt.Sprintf("%s deve conter apenas letras e números", field)
	default:
		return fmt.Sprintf("Valor inválido para %s: %v", field, fe.Value())
	}
}
