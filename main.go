// wayne - Terminal dashboard for the Wayne Industries security API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/cli"
	"github.com/jeranaias/wayne-tui/internal/config"
	"github.com/jeranaias/wayne-tui/internal/logging"
	"github.com/jeranaias/wayne-tui/internal/session"
	"github.com/jeranaias/wayne-tui/internal/storage"
	"github.com/jeranaias/wayne-tui/internal/store"
	"github.com/jeranaias/wayne-tui/internal/ui"
	"github.com/jeranaias/wayne-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// watchDebounce coalesces the burst of events sqlite produces per commit.
const watchDebounce = 150 * time.Millisecond

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		return fail(err)
	}

	// help, version and config work without a readable config, so a broken
	// file can still be repaired with config set or config init.
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		if cmd != cli.CmdHelp && cmd != cli.CmdVersion && cmd != cli.CmdConfig {
			return fail(err)
		}
		fmt.Fprintln(os.Stderr, cli.WarningStyle.Render("[!] "+cli.Message(err)))
		cfg = config.Default()
	}
	config.SetGlobal(cfg)

	closer, err := logging.Setup(cfg.Log, cmd == cli.CmdTUI)
	if err != nil {
		return fail(&cli.ConfigError{Err: err})
	}
	defer closer.Close()
	if args.JSON && cfg.Log.File == "" {
		logging.Discard()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := cfg.StoragePath()
	if err != nil {
		return fail(&cli.ConfigError{Err: err})
	}
	tokens, err := storage.Open(path)
	if err != nil {
		return fail(&cli.ConfigError{Err: err})
	}
	defer tokens.Close()

	sessions := session.NewManager(tokens, cfg.Users, session.WithLogger(logging.Log))
	client := api.NewFromConfig(cfg, api.WithSession(sessions), api.WithLogger(logging.Log))
	if _, err := sessions.Restore(ctx); err != nil {
		logging.Log.WithError(err).Warn("stored session could not be restored")
	}

	if cmd == cli.CmdTUI {
		if err := runTUI(ctx, cfg, client, sessions, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error running wayne: %v\n", err)
			return cli.ExitGeneralError
		}
		return cli.ExitSuccess
	}

	r := &cli.Runner{
		Args:     args,
		Config:   cfg,
		Client:   client,
		Sessions: sessions,
		Prompt:   cli.TerminalPrompter{},
		Log:      logging.Log,
	}
	return cli.ExitCode(r.Run(ctx, cmd))
}

func runTUI(ctx context.Context, cfg *config.Config, client *api.Client, sessions *session.Manager, storePath string) error {
	if err := cli.RequiresTTY("tui"); err != nil {
		return err
	}

	deps := ui.Deps{
		Client:    client,
		Sessions:  sessions,
		Resources: store.NewResources(client, logging.Log),
		Incidents: store.NewIncidents(client, logging.Log),
		Theme:     styles.NewTheme(cfg.UI.Theme),
		Refresh:   time.Duration(cfg.UI.RefreshSeconds) * time.Second,
		Log:       logging.Log,
	}

	if cfg.Storage.Watch {
		w, err := storage.NewWatcher(storePath, watchDebounce, logging.Log)
		if err != nil {
			logging.Log.WithError(err).Warn("storage watcher disabled")
		} else {
			defer w.Close()
			w.Start(ctx)
			deps.Changes = w.Changes()
		}
	}

	p := tea.NewProgram(ui.New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("[X] "+cli.Message(err)))
	return cli.ExitCode(err)
}
