// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea controller of the wayne dashboard.
//
// App wires key presses to the API client, the entity caches and the session
// manager. All I/O runs in tea.Cmd goroutines and reports back through the
// messages in messages.go; Update applies them and View redraws the current
// screen through the pure renderers in package views.
//
// A 401 from any request, an expired token or a logout performed in another
// terminal (seen through the storage watcher) all return the app to the
// login screen.
package ui
