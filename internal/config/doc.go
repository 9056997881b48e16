// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for wayne.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Remote API URL, timeout and client-side rate limit
//   - StorageConfig: Local token store location
//   - LogConfig: logrus level, format and output file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (WAYNE_*), including those from a .env file
//   - ~/.wayne/config.toml (or the file given with --config)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(cfg.API.URL)
package config
