// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/session"
	"github.com/jeranaias/wayne-tui/internal/ui/views"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// LoginResultMsg reports the outcome of a login attempt.
type LoginResultMsg struct {
	Session *session.Session
	Err     error
}

// LogoutMsg reports that the session was ended locally.
type LogoutMsg struct {
	Err error
}

// StorageChangedMsg is sent when the token store changed on disk, possibly
// from another wayne process.
type StorageChangedMsg struct{}

// =============================================================================
// DATA MESSAGES
// =============================================================================

// LoadedMsg reports a cache Load.
type LoadedMsg struct {
	Kind views.Kind
	Err  error
}

// StatsMsg reports a /dashboard/stats fetch.
type StatsMsg struct {
	Stats *model.Stats
	Err   error
}

// Mutation operations.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// MutationMsg reports an Add or Remove, including its reload.
type MutationMsg struct {
	Kind views.Kind
	Op   string
	ID   int
	Err  error
}

// RefreshTickMsg triggers the periodic reload.
type RefreshTickMsg struct {
	Time time.Time
}
