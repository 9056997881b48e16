// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - show, locate and edit the configuration file.
//
// Usage:
//
//	wayne config [show]
//	wayne config path
//	wayne config init [--yes]
//	wayne config set <key> <value>
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/wayne-tui/internal/config"
)

// ConfigPathData is the --json answer of config path.
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ConfigSetData is the --json answer of config set.
type ConfigSetData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Path  string `json:"path"`
}

func (r *Runner) runConfig(_ context.Context, p *ArgParser) (interface{}, error) {
	switch p.Subcommand() {
	case "", "show":
		return r.runConfigShow()
	case "path":
		return r.runConfigPath()
	case "init", "reset":
		return r.runConfigInit(p)
	case "set":
		return r.runConfigSet(p)
	}
	return nil, &UsageError{Message: fmt.Sprintf("config: subcomando desconhecido %q (show, path, init, set)", p.Subcommand())}
}

// settings returns the configuration this run was started with.
func (r *Runner) settings() *config.Config {
	if r.Config != nil {
		return r.Config
	}
	return config.Global()
}

// configFile is the file config edits: --config when given, else the default.
func (r *Runner) configFile() (string, error) {
	if r.Args.ConfigPath != "" {
		return r.Args.ConfigPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

func (r *Runner) saveConfig(cfg *config.Config, path string) error {
	var err error
	if r.Args.ConfigPath != "" {
		err = config.SaveTOML(cfg, path)
	} else {
		err = config.Save(cfg)
	}
	if err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (r *Runner) runConfigShow() (interface{}, error) {
	cfg := r.settings()
	if !r.human() {
		return cfg, nil
	}
	data, err := config.Encode(cfg)
	if err != nil {
		return nil, err
	}
	if path, err := r.configFile(); err == nil {
		r.println(DimStyle.Render("# " + path))
	}
	r.printf("%s", data)
	return cfg, nil
}

func (r *Runner) runConfigPath() (interface{}, error) {
	path, err := r.configFile()
	if err != nil {
		return nil, err
	}
	exists, err := fileExists(path)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	r.println(path)
	if !exists {
		r.println(DimStyle.Render("(arquivo ainda não existe; 'wayne config init' cria um com os valores padrão)"))
	}
	return ConfigPathData{Path: path, Exists: exists}, nil
}

func (r *Runner) runConfigInit(p *ArgParser) (interface{}, error) {
	path, err := r.configFile()
	if err != nil {
		return nil, err
	}
	exists, err := fileExists(path)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if exists && !p.BoolFlag("yes") && !p.BoolFlag("y") {
		if r.Args.JSON {
			return nil, &UsageError{Message: path + " já existe; use --yes para sobrescrever"}
		}
		ok, err := r.Prompt.Confirm(fmt.Sprintf("Sobrescrever %s com os valores padrão?", path))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	if err := r.saveConfig(config.Default(), path); err != nil {
		return nil, err
	}
	r.Log.WithField("path", path).Info("config written")
	r.println(SuccessStyle.Render("[OK] ") + "Configuração padrão gravada em " + path)
	return ConfigPathData{Path: path, Exists: true}, nil
}

// runConfigSet edits the file alone, so environment overrides and --api
// never leak into it.
func (r *Runner) runConfigSet(p *ArgParser) (interface{}, error) {
	key, value := p.Positional(1), p.Positional(2)
	if p.PositionalCount() < 3 || key == "" {
		return nil, &UsageError{Message: "uso: wayne config set <chave> <valor> (chaves: " + strings.Join(config.Keys(), ", ") + ", users.<nome>)"}
	}
	path, err := r.configFile()
	if err != nil {
		return nil, err
	}
	exists, err := fileExists(path)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	cfg := config.Default()
	if exists {
		if err := config.LoadTOML(cfg, path); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	if err := cfg.Set(key, value); err != nil {
		return nil, &UsageError{Message: err.Error()}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := r.saveConfig(cfg, path); err != nil {
		return nil, err
	}

	key = strings.ToLower(key)
	r.Log.WithFields(logrus.Fields{"path": path, "key": key}).Info("config updated")
	r.println(SuccessStyle.Render("[OK] ") + fmt.Sprintf("%s = %s", key, value))
	return ConfigSetData{Key: key, Value: value, Path: path}, nil
}
