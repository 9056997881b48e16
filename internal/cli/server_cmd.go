// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// server_cmd.go - stats, health, register and setup-admin.

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
)

// StatsData is the --json answer of stats.
type StatsData struct {
	model.Stats
	Status        dashboard.Status `json:"status"`
	CameraPercent int              `json:"camera_percent"`
	// Source is "server", or "local" when the stats were computed from the
	// resource and incident lists.
	Source string `json:"source"`
}

func (r *Runner) runStats(ctx context.Context, _ *ArgParser) (interface{}, error) {
	if _, err := r.require(security.ActionViewDashboard); err != nil {
		return nil, err
	}

	incidents, err := r.Client.ListIncidents(ctx)
	if err != nil {
		return nil, err
	}
	data := StatsData{Source: "server"}
	stats, err := r.Client.Stats(ctx)
	switch {
	case err == nil:
		data.Stats = stats
		data.Status = dashboard.EffectiveStatus(&stats, incidents)
	case errors.Is(err, api.ErrUnauthorized):
		return nil, err
	default:
		r.Log.WithError(err).Debug("server stats unavailable, computing locally")
		resources, lerr := r.Client.ListResources(ctx)
		if lerr != nil {
			return nil, lerr
		}
		data.Stats = dashboard.ComputeStats(resources, incidents)
		data.Status = dashboard.EffectiveStatus(nil, incidents)
		data.Source = "local"
	}
	data.CameraPercent = dashboard.CameraPercent(data.Stats)

	r.println(TitleStyle.Render("Painel"))
	r.println(RenderField("Estado", RenderSystemStatus(data.Status)))
	r.println(RenderField("Recursos", fmt.Sprintf("%d (%d ativos)", data.TotalRecursos, data.RecursosAtivos)))
	r.println(RenderField("Câmeras ativas", fmt.Sprintf("%d de %d  %s %d%%",
		data.CamerasAtivas, data.TotalCameras, styles.RenderProgressBar(20, float64(data.CameraPercent)), data.CameraPercent)))
	r.println(RenderField("Incidentes", fmt.Sprintf("%d (%d abertos, %d resolvidos)",
		data.TotalIncidentes, data.IncidentesAbertos, data.IncidentesResolvidos)))
	if data.Source == "local" {
		r.println(DimStyle.Render("Indicadores calculados localmente."))
	}
	return data, nil
}

func (r *Runner) runHealth(ctx context.Context, _ *ArgParser) (interface{}, error) {
	h, err := r.Client.Health(ctx)
	if err != nil {
		return nil, err
	}
	status := SuccessStyle.Render("[OK] " + h.Status)
	if h.Status != "healthy" {
		status = WarningStyle.Render("[!] " + h.Status)
	}
	r.println(RenderField("API", r.Client.BaseURL()))
	r.println(RenderField("Estado", status))
	if h.Database != "" {
		r.println(RenderField("Banco de dados", h.Database))
	}
	if h.Timestamp != "" {
		r.println(RenderField("Horário", h.Timestamp))
	}
	return h, nil
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// field returns the flag value or prompts for it.
func (r *Runner) field(p *ArgParser, flag, label, def string) (string, error) {
	if p.HasFlag(flag) {
		return p.Flag(flag), nil
	}
	if r.Args.JSON {
		return def, nil
	}
	return r.Prompt.Line(label+": ", def)
}

func (r *Runner) runRegister(ctx context.Context, p *ArgParser) (interface{}, error) {
	var reg model.Registration
	var err error
	steps := []struct {
		dst         *string
		flag, label string
		def         string
	}{
		{&reg.Username, "username", "Usuário", ""},
		{&reg.Nome, "nome", "Nome", ""},
		{&reg.Email, "email", "E-mail", ""},
		{&reg.Cargo, "cargo", "Cargo", ""},
		{&reg.Role, "role", "Perfil", string(security.LeastPrivilegedRole)},
	}
	for _, s := range steps {
		if *s.dst, err = r.field(p, s.flag, s.label, s.def); err != nil {
			return nil, err
		}
	}
	if reg.Senha, err = r.Prompt.Password("Senha: "); err != nil {
		return nil, err
	}

	reg.Normalize()
	if err := model.Validate(reg); err != nil {
		return nil, err
	}
	if err := r.Client.Register(ctx, reg); err != nil {
		return nil, err
	}
	r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("Conta %q criada com perfil %s.", reg.Username, reg.Role))
	return map[string]string{"username": reg.Username, "role": reg.Role}, nil
}

func (r *Runner) runSetupAdmin(ctx context.Context, _ *ArgParser) (interface{}, error) {
	msg, err := r.Client.SetupAdmin(ctx)
	if err != nil {
		return nil, err
	}
	r.println(SuccessStyle.Render("[OK] ") + msg)
	return map[string]string{"message": msg}, nil
}
