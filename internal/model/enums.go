// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// RESOURCE ENUMS
// =============================================================================

// ResourceType is the kind of managed asset.
type ResourceType string

const (
	ResourceEquipment ResourceType = "Equipamento"
	ResourceVehicle   ResourceType = "Veículo"
	ResourceDevice    ResourceType = "Dispositivo"
)

// ResourceTypes lists every ResourceType.
var ResourceTypes = []ResourceType{ResourceEquipment, ResourceVehicle, ResourceDevice}

// ResourceStatus is the operational state of a resource.
type ResourceStatus string

const (
	ResourceActive      ResourceStatus = "Ativo"
	ResourceInactive    ResourceStatus = "Inativo"
	ResourceMaintenance ResourceStatus = "Manutenção"
)

// ResourceStatuses lists every ResourceStatus.
var ResourceStatuses = []ResourceStatus{ResourceActive, ResourceInactive, ResourceMaintenance}

// =============================================================================
// INCIDENT ENUMS
// =============================================================================

// Severity is the gravity of an incident.
type Severity string

const (
	SeverityLow      Severity = "Baixa"
	SeverityMedium   Severity = "Média"
	SeverityHigh     Severity = "Alta"
	SeverityCritical Severity = "Crítica"
)

// Severities lists every Severity from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank orders severities, 0 for unknown values.
func (s Severity) Rank() int {
	for i, known := range Severities {
		if s == known {
			return i + 1
		}
	}
	return 0
}

// IncidentStatus is the lifecycle state of an incident.
type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "Aberto"
	IncidentInProgress IncidentStatus = "Em Andamento"
	IncidentResolved   IncidentStatus = "Resolvido"
)

// IncidentStatuses lists every IncidentStatus in lifecycle order.
var IncidentStatuses = []IncidentStatus{IncidentOpen, IncidentInProgress, IncidentResolved}

// IsOpen reports whether the incident still needs attention.
func (s IncidentStatus) IsOpen() bool {
	return s == IncidentOpen || s == IncidentInProgress
}

// =============================================================================
// PARSING
// =============================================================================

// Fold lowercases s and strips diacritics, so "Média" and "media" compare
// equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

func parseEnum[T ~string](kind, input string, values []T) (T, error) {
	f := Fold(input)
	for _, v := range values {
		if Fold(string(v)) == f {
			return v, nil
		}
	}
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, must be one of: %s", kind, input, strings.Join(names, ", "))
}

// ParseResourceType resolves a resource type name.
func ParseResourceType(s string) (ResourceType, error) {
	return parseEnum("resource type", s, ResourceTypes)
}

// ParseResourceStatus resolves a resource status name.
func ParseResourceStatus(s string) (ResourceStatus, error) {
	return parseEnum("resource status", s, ResourceStatuses)
}

// ParseSeverity resolves a severity name.
func ParseSeverity(s string) (Severity, error) {
	return parseEnum("severity", s, Severities)
}

// ParseIncidentStatus resolves an incident status name.
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	return parseEnum("incident status", s, IncidentStatuses)
}
