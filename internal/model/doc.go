// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the Wayne
// Security API.
//
// This package defines the domain types used throughout the application
// for resources, incidents, dashboard statistics and user registration, along
// with the enumerations the server accepts and input validation for the
// create payloads.
//
// # Key Types
//
//   - Resource / ResourceInput: A managed asset (equipment, vehicle, device)
//   - Incident / IncidentInput: A recorded security event
//   - Stats: Aggregates served by /dashboard/stats
//   - Registration: Payload for /cadastro
//
// # Enumerations
//
// Enumeration values are Portuguese and accented exactly as the server
// expects ("Média", "Em Andamento"). The Parse functions accept any casing
// and tolerate missing accents, so "media" and "em andamento" resolve.
//
// # Usage
//
//	in := model.IncidentInput{Titulo: "Portão aberto", Gravidade: model.SeverityHigh, Status: model.IncidentOpen}
//	if err := model.Validate(in); err != nil {
//	    fmt.Println(model.UserMessage(err))
//	}
package model
