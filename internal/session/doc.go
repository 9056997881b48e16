// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the logged-in identity of the dashboard user.
//
// A session is created from the bearer token issued by the API on login and
// destroyed on logout or when the API answers 401. Only the token string is
// persisted; username, role and expiry are decoded from its claims every
// time.
//
// # Key Types
//
//   - Session: Username, role and token of the current user
//   - Manager: Owns the current session and the persisted token
//   - TokenStore: Persistence for the token (implemented by storage.Store)
//
// # Role Resolution
//
// The role shown in the UI is taken from the token's "role" claim. Claims are
// decoded without signature verification: the server remains the authority
// and rejects any request the role does not allow, so the client trusts the
// claim for display and gating only. Tokens without a role claim fall back to
// the configured username directory, and unknown usernames get the least
// privileged role.
//
// # Usage
//
//	mgr := session.NewManager(store, cfg.Users)
//	if _, err := mgr.Restore(ctx); err != nil {
//	    // no stored login
//	}
//	if mgr.HasPermission(security.ActionRemoveResource) {
//	    // show the delete control
//	}
package session
