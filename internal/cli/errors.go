// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for wayne commands.
//
// Commands always return errors. Run prints them once, in the requested
// output format, and main turns them into an exit code.

package cli

import (
	"errors"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/model"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitNotFound     = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrNotLoggedIn is returned by commands that need a session.
	ErrNotLoggedIn = errors.New("Nenhuma sessão ativa. Use 'wayne login'.")

	// ErrPermissionDenied is returned when the local permission table
	// refuses an action. No request is sent.
	ErrPermissionDenied = errors.New(model.MsgPermissionDenied)

	// ErrAborted is returned when the user declines a confirmation.
	ErrAborted = errors.New("Operação cancelada.")
)

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ConfigError wraps a configuration failure.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	var usage *UsageError
	var cfg *ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &cfg):
		return ExitConfigError
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, ErrPermissionDenied),
		errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrForbidden),
		errors.Is(err, api.ErrInvalidCredentials):
		return ExitAuthError
	case errors.Is(err, api.ErrNetwork):
		return ExitNetworkError
	case errors.Is(err, api.ErrNotFound):
		return ExitNotFound
	}
	return ExitGeneralError
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	var usage *UsageError
	var cfg *ConfigError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &usage), errors.As(err, &cfg),
		errors.Is(err, ErrNotLoggedIn), errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrAborted):
		return err.Error()
	}
	if msg := model.UserMessage(err); msg != err.Error() {
		return msg
	}
	return api.UserMessage(err)
}
