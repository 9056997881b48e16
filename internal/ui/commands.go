// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/store"
	"github.com/jeranaias/wayne-tui/internal/ui/views"
)

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func (a *App) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := a.client.Login(a.ctx, username, password)
		if err != nil {
			return LoginResultMsg{Err: err}
		}
		s, err := a.sessions.Begin(a.ctx, token, username)
		return LoginResultMsg{Session: s, Err: err}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return LogoutMsg{Err: a.sessions.End(a.ctx)}
	}
}

// waitForStorage blocks until the watcher reports a change. It returns nil
// once the watcher is closed.
func waitForStorage(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StorageChangedMsg{}
	}
}

// =============================================================================
// DATA COMMANDS
// =============================================================================

func (a *App) loadCmd(kind views.Kind) tea.Cmd {
	return func() tea.Msg {
		var err error
		if kind == views.KindIncidents {
			err = a.incidents.Load(a.ctx)
		} else {
			err = a.resources.Load(a.ctx)
		}
		if errors.Is(err, store.ErrStale) {
			err = nil
		}
		return LoadedMsg{Kind: kind, Err: err}
	}
}

func (a *App) statsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := a.client.Stats(a.ctx)
		if err != nil {
			return StatsMsg{Err: err}
		}
		return StatsMsg{Stats: &stats}
	}
}

// refreshAll reloads both caches and the stats.
func (a *App) refreshAll() tea.Cmd {
	return a.track(a.loadCmd(views.KindResources), a.loadCmd(views.KindIncidents), a.statsCmd())
}

func (a *App) addResourceCmd(in model.ResourceInput) tea.Cmd {
	return func() tea.Msg {
		return MutationMsg{Kind: views.KindResources, Op: OpAdd, Err: a.resources.Add(a.ctx, in)}
	}
}

func (a *App) addIncidentCmd(in model.IncidentInput) tea.Cmd {
	return func() tea.Msg {
		return MutationMsg{Kind: views.KindIncidents, Op: OpAdd, Err: a.incidents.Add(a.ctx, in)}
	}
}

func (a *App) removeCmd(kind views.Kind, id int) tea.Cmd {
	return func() tea.Msg {
		var err error
		if kind == views.KindIncidents {
			err = a.incidents.Remove(a.ctx, id)
		} else {
			err = a.resources.Remove(a.ctx, id)
		}
		return MutationMsg{Kind: kind, Op: OpRemove, ID: id, Err: err}
	}
}

func refreshTick(every time.Duration) tea.Cmd {
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return RefreshTickMsg{Time: t}
	})
}

// track counts cmds as in-flight requests so the spinner runs until their
// result messages arrive. Every tracked command must answer with one of the
// messages Update passes to done.
func (a *App) track(cmds ...tea.Cmd) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}
	start := a.pending == 0
	a.pending += len(cmds)
	if start {
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (a *App) done() {
	if a.pending > 0 {
		a.pending--
	}
}
