// Package security provides the role-based permission table for the dashboard.
//
// The table is static and immutable: it is built once at package init and
// every accessor returns copies. A lookup for an unknown role or action is
// always denied.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"sort"
	"strings"
)

// =============================================================================
// ROLES AND ACTIONS
// =============================================================================

// Role represents a dashboard user role.
type Role string

const (
	// RoleFuncionario is a staff member: views data, reports incidents.
	RoleFuncionario Role = "funcionario"

	// RoleGerente is a manager: full resource and incident management.
	RoleGerente Role = "gerente"

	// RoleAdmin has every gerente permission plus user administration.
	RoleAdmin Role = "admin"
)

// LeastPrivilegedRole is assigned when a role cannot be determined.
const LeastPrivilegedRole = RoleFuncionario

// Action names a gated operation in the UI or CLI.
type Action string

const (
	ActionViewDashboard     Action = "view_dashboard"
	ActionAddResource       Action = "adicionar_recurso"
	ActionRemoveResource    Action = "remover_recurso"
	ActionAddIncident       Action = "adicionar_incidente"
	ActionRemoveIncident    Action = "remover_incidente"
	ActionViewReports       Action = "ver_relatorios"
	ActionAdministrateUsers Action = "administrar_usuarios"
)

// allActions lists actions in display order.
var allActions = []Action{
	ActionViewDashboard,
	ActionAddResource,
	ActionRemoveResource,
	ActionAddIncident,
	ActionRemoveIncident,
	ActionViewReports,
	ActionAdministrateUsers,
}

// allRoles lists roles from least to most privileged.
var allRoles = []Role{RoleFuncionario, RoleGerente, RoleAdmin}

// =============================================================================
// ROLE PERMISSIONS MATRIX
// =============================================================================

// rolePermissions is the permission matrix. Every role lists every action so
// the table reads as the authoritative source of truth; missing entries are
// denied regardless.
var rolePermissions = map[Role]map[Action]bool{
	RoleFuncionario: {
		ActionViewDashboard:     true,
		ActionAddResource:       false,
		ActionRemoveResource:    false,
		ActionAddIncident:       true,
		ActionRemoveIncident:    false,
		ActionViewReports:       true,
		ActionAdministrateUsers: false,
	},
	RoleGerente: {
		ActionViewDashboard:     true,
		ActionAddResource:       true,
		ActionRemoveResource:    true,
		ActionAddIncident:       true,
		ActionRemoveIncident:    true,
		ActionViewReports:       true,
		ActionAdministrateUsers: false,
	},
	RoleAdmin: {
		ActionViewDashboard:     true,
		ActionAddResource:       true,
		ActionRemoveResource:    true,
		ActionAddIncident:       true,
		ActionRemoveIncident:    true,
		ActionViewReports:       true,
		ActionAdministrateUsers: true,
	},
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Allowed reports whether role may perform action.
// SECURITY: Least privilege - unknown roles and unknown actions are denied.
func Allowed(role Role, action Action) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[action]
}

// ParseRole converts a role name into a Role. Matching ignores case and
// surrounding whitespace.
func ParseRole(name string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := rolePermissions[r]; !ok {
		return "", false
	}
	return r, true
}

// ParseAction converts an action name into an Action.
func ParseAction(name string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range allActions {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// Roles returns all roles from least to most privileged.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Actions returns all actions in display order.
func Actions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

// RolePermissions returns the actions granted to role, sorted.
// Returns a copy, never the internal table.
func RolePermissions(role Role) []Action {
	var out []Action
	for action, ok := range rolePermissions[role] {
		if ok {
			out = append(out, action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleDescription provides human-readable information about a role.
type RoleDescription struct {
	Role        Role            `json:"role"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Permissions map[Action]bool `json:"permissions"`
}

var roleDescriptions = map[Role][2]string{
	RoleFuncionario: {"Funcionário", "Views the dashboard and reports, registers incidents"},
	RoleGerente:     {"Gerente", "Manages resources and incidents"},
	RoleAdmin:       {"Administrador", "Full access, including user administration"},
}

// Describe returns the description and full permission row of role.
func Describe(role Role) RoleDescription {
	d := RoleDescription{Role: role, Permissions: make(map[Action]bool, len(allActions))}
	if text, ok := roleDescriptions[role]; ok {
		d.Name, d.Description = text[0], text[1]
	}
	for _, a := range allActions {
		d.Permissions[a] = Allowed(role, a)
	}
	return d
}
