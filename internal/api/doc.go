// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Wayne Security API.
//
// Every call goes through Client.Do, which attaches the bearer token when a
// session holds one and normalizes the outcome into a Result:
//
//   - network failures (including timeouts and cancellation) are Status 0
//   - non-2xx responses carry the HTTP status and the server's detail text
//   - a 401 on any request clears the session and its stored token
//
// There is no retry: every failure is terminal for the action that caused it.
//
// # Usage
//
//	client := api.NewFromConfig(cfg, api.WithSession(mgr))
//	resources, err := client.ListResources(ctx)
//	if errors.Is(err, api.ErrUnauthorized) {
//	    // back to the login screen
//	}
package api
