// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for wayne.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/wayne-tui/internal/api"
	"github.com/jeranaias/wayne-tui/internal/config"
	"github.com/jeranaias/wayne-tui/internal/security"
	"github.com/jeranaias/wayne-tui/internal/session"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdResources
	CmdIncidents
	CmdStats
	CmdHealth
	CmdRegister
	CmdSetupAdmin
	CmdRoles
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:        "tui",
	CmdLogin:      "login",
	CmdLogout:     "logout",
	CmdWhoami:     "whoami",
	CmdResources:  "resources",
	CmdIncidents:  "incidents",
	CmdStats:      "stats",
	CmdHealth:     "health",
	CmdRegister:   "register",
	CmdSetupAdmin: "setup-admin",
	CmdRoles:      "roles",
	CmdConfig:     "config",
	CmdVersion:    "version",
	CmdHelp:       "help",
}

var commandAliases = map[string]Command{
	"recursos":   CmdResources,
	"incidentes": CmdIncidents,
	"cadastro":   CmdRegister,
	"perfis":     CmdRoles,
	"-h":         CmdHelp,
	"--help":     CmdHelp,
	"--version":  CmdVersion,
}

func (c Command) String() string {
	return commandNames[c]
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool
	ConfigPath string
	APIURL     string
	Verbose    bool

	// Raw holds the arguments after the command name.
	Raw []string
}

// Parse parses argv (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}
	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	name := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]
	if cmd, ok := commandAliases[name]; ok {
		return cmd, args, nil
	}
	for cmd, n := range commandNames {
		if n == name {
			return cmd, args, nil
		}
	}
	return CmdHelp, args, &UsageError{Message: fmt.Sprintf("comando desconhecido: %q (veja 'wayne help')", remaining[0])}
}

// parseGlobalFlags extracts global flags from args and returns the rest.
// Global flags may appear anywhere on the line.
func parseGlobalFlags(args []string) ([]string, Args, error) {
	var remaining []string
	parsed := Args{}

	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) {
			return "", &UsageError{Message: name + " requer um valor"}
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			parsed.JSON = true
		case arg == "-v" || arg == "--verbose":
			parsed.Verbose = true
		case arg == "--config" || arg == "--api":
			v, err := value(i, arg)
			if err != nil {
				return nil, parsed, err
			}
			if arg == "--config" {
				parsed.ConfigPath = v
			} else {
				parsed.APIURL = v
			}
			i++
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "--api="):
			parsed.APIURL = strings.TrimPrefix(arg, "--api=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed, nil
}

// LoadConfig loads the configuration named by args, applying --api last.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if args.APIURL != "" {
		cfg.API.URL = strings.TrimRight(args.APIURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes non-interactive commands against the API.
type Runner struct {
	Args     Args
	Config   *config.Config
	Client   *api.Client
	Sessions *session.Manager
	Prompt   Prompter
	Out      io.Writer
	Err      io.Writer
	Log      logrus.FieldLogger
}

type handler func(r *Runner, ctx context.Context, p *ArgParser) (interface{}, error)

var handlers = map[Command]handler{
	CmdLogin:      (*Runner).runLogin,
	CmdLogout:     (*Runner).runLogout,
	CmdWhoami:     (*Runner).runWhoami,
	CmdResources:  (*Runner).runResources,
	CmdIncidents:  (*Runner).runIncidents,
	CmdStats:      (*Runner).runStats,
	CmdHealth:     (*Runner).runHealth,
	CmdRegister:   (*Runner).runRegister,
	CmdSetupAdmin: (*Runner).runSetupAdmin,
	CmdRoles:      (*Runner).runRoles,
	CmdConfig:     (*Runner).runConfig,
	CmdVersion:    (*Runner).runVersion,
	CmdHelp:       (*Runner).runHelp,
}

// boolFlags lists the boolean flags of every subcommand.
var boolFlags = []string{"yes", "y", "md"}

// Run executes cmd. Errors are reported on Err (or in the JSON envelope)
// and returned for the exit code.
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	if r.Out == nil {
		r.Out = os.Stdout
	}
	if r.Err == nil {
		r.Err = os.Stderr
	}
	if r.Log == nil {
		r.Log = logrus.StandardLogger()
	}

	h, ok := handlers[cmd]
	if !ok {
		return &UsageError{Message: fmt.Sprintf("%s não é um comando de linha", cmd)}
	}
	data, err := h(r, ctx, NewArgParser(r.Args.Raw, boolFlags...))
	if err != nil {
		r.Log.WithError(err).WithField("command", cmd.String()).Debug("command failed")
	}

	if r.Args.JSON {
		resp := NewJSONResponse(cmd.String(), data)
		if err != nil {
			resp = NewJSONErrorResponse(cmd.String(), err)
		}
		if werr := resp.Write(r.Out, IsWriterTTY(r.Out) && ColorsEnabled()); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		fmt.Fprintln(r.Err, ErrorStyle.Render("[X] "+Message(err)))
	}
	return err
}

func (r *Runner) human() bool {
	return !r.Args.JSON
}

func (r *Runner) printf(format string, a ...interface{}) {
	if r.human() {
		fmt.Fprintf(r.Out, format, a...)
	}
}

func (r *Runner) println(s string) {
	if r.human() {
		fmt.Fprintln(r.Out, s)
	}
}

// require returns the current session, refusing locally when there is none
// or its role lacks action. An empty action only needs a session.
func (r *Runner) require(action security.Action) (*session.Session, error) {
	s := r.Sessions.Current()
	if s == nil {
		return nil, ErrNotLoggedIn
	}
	if action != "" && !s.Can(action) {
		return s, ErrPermissionDenied
	}
	return s, nil
}

// =============================================================================
// VERSION AND HELP
// =============================================================================

// VersionData is the --json answer of version.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func (r *Runner) runVersion(context.Context, *ArgParser) (interface{}, error) {
	v := VersionData{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
	r.printf("wayne %s\n  commit: %s\n  build:  %s\n  go:     %s\n", v.Version, v.GitCommit, v.BuildDate, v.GoVersion)
	return v, nil
}
