// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the persistent local key/value store used to keep
// the session token between runs, and a watcher that reports changes made to
// it by other wayne processes.
//
// The store is a single sqlite file (pure Go driver, no cgo):
//
//	~/.wayne/storage.db
//
// Keys are free-form strings. The session token lives under TokenKey.
package storage
