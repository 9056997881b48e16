// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import "github.com/jeranaias/wayne-tui/internal/model"

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Report is the reports screen content.
type Report struct {
	TotalResources      int     `json:"total_recursos"`
	TotalIncidents      int     `json:"total_incidentes"`
	ResourcesByType     []Count `json:"recursos_por_tipo"`
	ResourcesByStatus   []Count `json:"recursos_por_status"`
	IncidentsBySeverity []Count `json:"incidentes_por_gravidade"`
	IncidentsByStatus   []Count `json:"incidentes_por_status"`
	Status              Status  `json:"status_sistema"`
}

// BuildReport tallies the caches. Every known enum value appears, in
// declaration order, even with a zero count. Values the server sent that
// are not known are appended after them.
func BuildReport(resources []model.Resource, incidents []model.Incident) Report {
	rep := Report{
		TotalResources: len(resources),
		TotalIncidents: len(incidents),
		Status:         LocalStatus(incidents),
	}

	types := make([]string, 0, len(resources))
	rstatus := make([]string, 0, len(resources))
	for _, r := range resources {
		types = append(types, string(r.Tipo))
		rstatus = append(rstatus, string(r.Status))
	}
	sev := make([]string, 0, len(incidents))
	istatus := make([]string, 0, len(incidents))
	for _, i := range incidents {
		sev = append(sev, string(i.Gravidade))
		istatus = append(istatus, string(i.Status))
	}

	rep.ResourcesByType = tally(names(model.ResourceTypes), types)
	rep.ResourcesByStatus = tally(names(model.ResourceStatuses), rstatus)
	rep.IncidentsBySeverity = tally(names(model.Severities), sev)
	rep.IncidentsByStatus = tally(names(model.IncidentStatuses), istatus)
	return rep
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func tally(known, values []string) []Count {
	counts := make([]Count, len(known))
	index := make(map[string]int, len(known))
	for i, k := range known {
		counts[i] = Count{Label: k}
		index[k] = i
	}
	for _, v := range values {
		i, ok := index[v]
		if !ok {
			index[v] = len(counts)
			i = len(counts)
			counts = append(counts, Count{Label: v})
		}
		counts[i].Value++
	}
	return counts
}
