package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"ktodo/internal/config"
	"ktodo/internal/exitcode"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "ktodo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  ktodo                                              List all tasks
  ktodo list [common flags] [-category <name>] [-priority <p>] [-search <text>] [-done|-open]
  ktodo add [common flags] [-desc <text>] [-priority <p>] [-category <name>] [-due <YYYY-MM-DD>] <title...>
  ktodo edit [common flags] [-title <text>] [-desc <text>] [-priority <p>] [-category <name>] [-due <date>] <ref>
  ktodo done [common flags] <ref>
  ktodo rm [common flags] <ref>
  ktodo login [common flags] (-u <username> -p <password> | -google)
  ktodo logout [common flags]
  ktodo register [common flags] -u <username> -p <password> -email <address>
  ktodo whoami [common flags] [-remote]
  ktodo onboard [common flags] [-phone <n>] [-company <name>] [-title <text>]
  ktodo help
  ktodo version

A <ref> is either the number printed by list or a task ID.
Priorities are low, medium, high.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
