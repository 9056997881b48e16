// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - login, logout, whoami and roles.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/session"
)

// SessionData is the --json answer of login and whoami.
type SessionData struct {
	Username    string            `json:"username"`
	Role        security.Role     `json:"role"`
	RoleSource  string            `json:"role_source"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
	Permissions []security.Action `json:"permissions"`
}

func newSessionData(s *session.Session) SessionData {
	d := SessionData{
		Username:    s.Username,
		Role:        s.Role,
		RoleSource:  string(s.RoleSource),
		Permissions: security.RolePermissions(s.Role),
	}
	if !s.ExpiresAt.IsZero() {
		t := s.ExpiresAt
		d.ExpiresAt = &t
	}
	return d
}

func (r *Runner) runLogin(ctx context.Context, p *ArgParser) (interface{}, error) {
	username := strings.TrimSpace(p.Positional(0))
	if username == "" {
		var err error
		if username, err = r.Prompt.Line("Usuário: ", ""); err != nil {
			return nil, err
		}
	}
	password, err := r.Prompt.Password("Senha: ")
	if err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, api.ErrInvalidCredentials
	}

	token, err := r.Client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s, err := r.Sessions.Begin(ctx, token, username)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	r.Log.WithField("user", s.Username).Info("logged in")

	r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("Conectado como %s (%s).", s.Username, s.Role))
	return newSessionData(s), nil
}

func (r *Runner) runLogout(ctx context.Context, _ *ArgParser) (interface{}, error) {
	user := ""
	if s := r.Sessions.Current(); s != nil {
		user = s.Username
	}
	if err := r.Sessions.End(ctx); err != nil {
		return nil, err
	}
	if user == "" {
		r.println(DimStyle.Render("Nenhuma sessão ativa."))
	} else {
		r.println(SuccessStyle.Render("[OK] ") + "Sessão encerrada.")
	}
	return map[string]string{"username": user}, nil
}

func (r *Runner) runWhoami(context.Context, *ArgParser) (interface{}, error) {
	s, err := r.require("")
	if err != nil {
		return nil, err
	}
	d := newSessionData(s)
	desc := security.Describe(s.Role)

	r.println(TitleStyle.Render("Sessão"))
	r.println(RenderField("Usuário", s.Username))
	r.println(RenderField("Perfil", fmt.Sprintf("%s (%s)", desc.Name, s.Role)))
	r.println(RenderField("Origem do perfil", string(s.RoleSource)))
	if d.ExpiresAt != nil {
		r.println(RenderField("Expira em", d.ExpiresAt.Local().Format("02/01/2006 15:04")))
	}
	r.println(SectionStyle.Render("Permissões"))
	for _, a := range security.Actions() {
		r.printf("  %-22s %s\n", a, RenderYesNo(s.Can(a)))
	}
	return d, nil
}

// RoleRow is one row of the roles --json answer.
type RoleRow struct {
	Role        security.Role            `json:"role"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Permissions map[security.Action]bool `json:"permissions"`
}

// RoleCheck is the --json answer of roles --can.
type RoleCheck struct {
	Role    security.Role   `json:"role"`
	Action  security.Action `json:"action"`
	Allowed bool            `json:"allowed"`
}

func (r *Runner) runRoles(_ context.Context, p *ArgParser) (interface{}, error) {
	if p.HasFlag("can") {
		return r.checkRole(p)
	}
	roles := security.Roles()
	actions := security.Actions()
	rows := make([]RoleRow, 0, len(roles))
	for _, role := range roles {
		d := security.Describe(role)
		rows = append(rows, RoleRow{Role: role, Name: d.Name, Description: d.Description, Permissions: d.Permissions})
	}
	if !r.human() {
		return rows, nil
	}

	headers := []string{"Ação"}
	for _, role := range roles {
		headers = append(headers, string(role))
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SeparatorStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return SectionStyle.MarginTop(0).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, a := range actions {
		cells := []string{string(a)}
		for _, role := range roles {
			cells = append(cells, RenderYesNo(security.Allowed(role, a)))
		}
		t.Row(cells...)
	}
	r.println(TitleStyle.Render("Permissões por perfil"))
	r.println(t.Render())
	return rows, nil
}

// checkRole answers whether one role, the session's unless --role names
// another, may perform the --can action.
func (r *Runner) checkRole(p *ArgParser) (interface{}, error) {
	action, ok := security.ParseAction(p.Flag("can"))
	if !ok {
		names := make([]string, 0, len(security.Actions()))
		for _, a := range security.Actions() {
			names = append(names, string(a))
		}
		return nil, &UsageError{Message: fmt.Sprintf("ação desconhecida: %q (%s)", p.Flag("can"), strings.Join(names, ", "))}
	}

	var role security.Role
	if name := p.Flag("role"); name != "" {
		if role, ok = security.ParseRole(name); !ok {
			return nil, &UsageError{Message: fmt.Sprintf("perfil desconhecido: %q", name)}
		}
	} else {
		s, err := r.require("")
		if err != nil {
			return nil, err
		}
		role = s.Role
	}

	allowed := security.Allowed(role, action)
	if allowed {
		r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("%s pode %s", role, action))
	} else {
		r.println(ErrorStyle.Render("[X] ") + fmt.Sprintf("%s não pode %s", role, action))
	}
	return RoleCheck{Role: role, Action: action, Allowed: allowed}, nil
}
