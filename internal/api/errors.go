// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jeranaias/wayne-tui/internal/model"
)

// Error variables for outcome classes. Match with errors.Is.
var (
	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("network failure")

	// ErrUnauthorized indicates a 401: bad credentials or an expired token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the role may not perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest indicates the server rejected the payload (400 or 422).
	ErrBadRequest = errors.New("bad request")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")

	// ErrInvalidCredentials is returned by Login on a 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error represents a failed API call.
type Error struct {
	Method    string
	Path      string
	Status    int
	Message   string
	RequestID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: network failure: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s (HTTP %d): %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps the status onto the sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Status == 0
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrServer:
		return e.Status >= 500
	}
	return false
}

// UserMessage converts an API error into the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return model.MsgInvalidCredentials
	case errors.Is(err, ErrNetwork):
		return model.MsgConnectionFailed
	case errors.Is(err, ErrForbidden):
		return model.MsgPermissionDenied
	case errors.Is(err, ErrUnauthorized):
		return "Sessão expirada. Faça login novamente."
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
