// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views renders the dashboard screens.
//
// Every renderer is a pure function of an AppState snapshot: it performs no
// I/O, holds no state and returns the same string for the same input, so the
// controller can call it on every frame. Controls the session's role lacks
// are never rendered; the permission table is consulted through
// AppState.Can.
package views
