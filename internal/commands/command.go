// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"ktodo/internal/config"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires an authenticated
	// session. Commands like help, version, login, register return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, provider settings).
	// sess is the process session controller; nil only for commands that
	// touch neither auth nor the API (help, version).
	// svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int
}
