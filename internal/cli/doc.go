// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the wayne command line.
//
// Parse splits the global flags (--json, --config, --api, --verbose) from
// the command. Everything except tui runs through a Runner, which talks to
// the API with the same client, session manager and permission table as
// the interactive dashboard:
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	r := &cli.Runner{Args: args, Config: cfg, Client: client, Sessions: sessions, Prompt: cli.TerminalPrompter{}}
//	err = r.Run(ctx, cmd)
//	os.Exit(cli.ExitCode(err))
//
// Permission-gated commands are refused locally, before any request, when
// the session's role lacks the action. With --json every command answers
// with a JSONResponse envelope.
package cli
