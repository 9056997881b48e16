// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the wayne packages.
//
// String Utilities:
//   - TruncateWidth: display-width truncation with an ellipsis
//   - PadRight: pad to a display width
//   - StringWidth: terminal cell width of a string
//
// File Operations:
//   - WriteFileAtomic: crash-safe file replacement with fsync
//
// Widths come from github.com/mattn/go-runewidth, so accented Portuguese
// text and wide glyphs line up in table cells.
package util
