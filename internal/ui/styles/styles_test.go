// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/wayne-tui/internal/dashboard"
	"github.com/jeranaias/wayne-tui/internal/model"
	"github.com/jeranaias/wayne-tui/internal/util"
)

func TestRenderProgressBar_Width(t *testing.T) {
	for _, pct := range []float64{-10, 0, 12.5, 33, 50, 99.9, 100, 150} {
		bar := RenderProgressBar(20, pct)
		assert.Equal(t, 20, util.StringWidth(bar), "pct=%v", pct)
	}
	assert.Empty(t, RenderProgressBar(0, 50))
}

func TestRenderProgressBar_Extremes(t *testing.T) {
	assert.Equal(t, "░░░░", RenderProgressBar(4, 0))
	assert.Equal(t, "████", RenderProgressBar(4, 100))
	assert.Equal(t, "██░░", RenderProgressBar(4, 50))
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "", RenderBar(0, 10, 20))
	assert.Equal(t, "█", RenderBar(1, 1000, 20), "non-zero values stay visible")
	assert.Equal(t, 20, util.StringWidth(RenderBar(10, 10, 20)))
	assert.Equal(t, 10, util.StringWidth(RenderBar(5, 10, 20)))
	assert.Equal(t, 20, util.StringWidth(RenderBar(50, 10, 20)))
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, Rose, SeverityColor(model.SeverityCritical))
	assert.Equal(t, Amber, SeverityColor(model.SeverityHigh))
	assert.Equal(t, Yellow, SeverityColor(model.SeverityMedium))
	assert.Equal(t, Emerald, SeverityColor(model.SeverityLow))
	assert.Equal(t, TextSecondary, SeverityColor("??"))
}

func TestSystemStatusStyling(t *testing.T) {
	assert.Equal(t, Rose, SystemStatusColor(dashboard.StatusCritical))
	assert.Equal(t, Amber, SystemStatusColor(dashboard.StatusAlert))
	assert.Equal(t, Emerald, SystemStatusColor(dashboard.StatusNormal))
	assert.Equal(t, StatusIndicators.Error, SystemStatusIndicator(dashboard.StatusCritical))
	assert.Equal(t, StatusIndicators.Success, SystemStatusIndicator(dashboard.StatusNormal))
}

func TestNewTheme_ForcedModes(t *testing.T) {
	assert.True(t, NewTheme(ModeDark).IsDark)
	assert.False(t, NewTheme(ModeLight).IsDark)
}

func TestLayoutMode(t *testing.T) {
	th := NewTheme(ModeDark)
	th.SetSize(40, 20)
	assert.Equal(t, LayoutNarrow, th.GetLayoutMode())
	th.SetSize(80, 20)
	assert.Equal(t, LayoutMedium, th.GetLayoutMode())
	th.SetSize(120, 20)
	assert.Equal(t, LayoutWide, th.GetLayoutMode())
}
