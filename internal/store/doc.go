// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the in-memory entity caches that mirror server state.
//
// A Cache never patches itself locally. Add and Remove perform the server
// call and then reload the full list, so the cache only ever contains what
// the server returned. Every Load takes a ticket; a response is applied only
// if its ticket is newer than the last applied one, which keeps a slow
// earlier Load from overwriting fresher data.
//
// # Usage
//
//	resources := store.NewResources(client)
//	if err := resources.Load(ctx); err != nil { ... }
//	for _, r := range resources.Items() { ... }
package store
