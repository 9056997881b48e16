// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the wayne TUI.

All colors are Lip Gloss AdaptiveColor values so the dashboard reads on both
light and dark terminals. The [ui] theme setting can force one side:

	theme := styles.NewTheme("dark")

# Semantic Colors

Severity, incident status, resource status and the system status badge each
map to one color family:

	Crítica / CRÍTICO  - Rose
	Alta    / ALERTA   - Amber
	Média              - Yellow
	Baixa   / NORMAL   - Emerald

Colors are never the only signal: badges carry their text and
StatusIndicators provide ASCII shapes for colorblind users.

# Bars

RenderProgressBar draws the camera usage ring as a horizontal bar and
RenderBar draws one row of the activity chart.
*/
package styles
