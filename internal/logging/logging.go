// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide logrus logger.
//
// The TUI owns the terminal, so when it runs log output goes to a file
// instead of stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/wayne-tui/internal/config"
)

// Log is the shared logger. It writes warnings to stderr until Setup runs.
var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.Out = os.Stderr
	Log.Level = logrus.WarnLevel
	Log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	Log.AddHook(&DefaultFieldsHook{})
}

// DefaultFieldsHook stamps every entry with the application name and pid.
type DefaultFieldsHook struct{}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["app"] = "wayne"
	e.Data["pid"] = os.Getpid()
	return nil
}

// ParseLevel maps a config level name onto a logrus level.
func ParseLevel(name string) (logrus.Level, error) {
	switch strings.ToLower(name) {
	case "warn":
		return logrus.WarnLevel, nil
	case "":
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(name)
}

// Setup applies the log config to Log. When toFile is true and no file is
// configured, output goes to wayne.log in the config directory. The returned
// closer releases the log file and is never nil.
func Setup(cfg config.LogConfig, toFile bool) (io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nopCloser{}, fmt.Errorf("invalid log level: %w", err)
	}
	Log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: toFile || cfg.File != ""})
	}

	path := cfg.File
	if path == "" && toFile {
		dir, err := config.ConfigDir()
		if err != nil {
			return nopCloser{}, err
		}
		path = filepath.Join(dir, "wayne.log")
	}
	if path == "" {
		Log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}
	Log.SetOutput(f)
	return f, nil
}

// Discard silences Log. Used by tests and --json output.
func Discard() {
	Log.SetOutput(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
