// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// Prompter reads interactive input.
type Prompter interface {
	// Line reads one line, pre-filled with def.
	Line(prompt, def string) (string, error)
	// Password reads a line without echo.
	Password(prompt string) (string, error)
	// Confirm asks a yes/no question. Anything but yes is no.
	Confirm(question string) (bool, error)
}

// TerminalPrompter prompts on the controlling terminal. Line editing uses
// liner; passwords are read with echo disabled.
type TerminalPrompter struct {
	// Out receives the password prompt. Defaults to stderr so --json
	// output on stdout stays clean.
	Out io.Writer
}

func (p TerminalPrompter) out() io.Writer {
	if p.Out == nil {
		return os.Stderr
	}
	return p.Out
}

// Line implements Prompter.
func (p TerminalPrompter) Line(prompt, def string) (string, error) {
	if err := RequiresTTY("prompt for " + strings.TrimSpace(strings.TrimSuffix(prompt, ": "))); err != nil {
		return "", err
	}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	s, err := line.PromptWithSuggestion(prompt, def, -1)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", ErrAborted
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// Password implements Prompter.
func (p TerminalPrompter) Password(prompt string) (string, error) {
	if err := RequiresTTY("read a password"); err != nil {
		return "", err
	}
	fmt.Fprint(p.out(), prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// Confirm implements Prompter.
func (p TerminalPrompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question+" [s/N] ", "")
	if err != nil {
		return false, err
	}
	ok, err := ParseBoolString(answer)
	return err == nil && ok, nil
}
