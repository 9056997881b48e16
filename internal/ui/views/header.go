// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wayne-tui/internal/ui/styles"
	"github.com/jeranaias/wayne-tui/internal/util"
)

// Header renders the brand, the tabs the role may open and the user.
func Header(state AppState, active Screen) string {
	t := state.theme()

	var tabs []string
	for i, s := range VisibleScreens(state) {
		label := fmt.Sprintf("%d %s", i+1, s.Title())
		if s == active {
			tabs = append(tabs, t.TabActive.Render(label))
		} else {
			tabs = append(tabs, t.Tab.Render(label))
		}
	}

	left := t.HeaderBrand.Render("WAYNE SECURITY") + "  " + strings.Join(tabs, "")
	right := ""
	if s := state.Session; s != nil {
		right = t.HeaderUser.Render(s.Username) + " " + t.HeaderRole.Render("("+string(s.Role)+")")
	}

	width := state.width()
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// StatusBar renders key hints followed by a message. Errors are drawn with
// the error style and the [X] indicator.
func StatusBar(state AppState, bindings []key.Binding, message string, isError bool) string {
	t := state.theme()

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, t.ShortcutKey.Render(h.Key)+" "+t.ShortcutDesc.Render(h.Desc))
	}
	line := strings.Join(hints, "  ")

	if message != "" {
		msg := util.TruncateWidth(message, state.width()/2)
		if isError {
			msg = t.ErrorStyle.Render(fmt.Sprintf("%s %s", styles.StatusIndicators.Error, msg))
		} else {
			msg = t.SuccessStyle.Render(msg)
		}
		line = msg + "   " + line
	}
	return t.StatusBar.Width(state.width()).Render(line)
}
