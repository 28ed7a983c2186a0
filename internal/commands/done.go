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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command, which toggles completion.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task between done and open" }
func (c *DoneCmd) Usage() string     { return "ktodo done [common flags] <number|id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task reference required")
		fmt.Fprintf(errOut, "usage: %s\n", c.Usage())
		return exitcode.UserError
	}

	task, err := resolveTask(ctx, svc, args[0])
	if err != nil {
		return failResolve(errOut, err)
	}

	// The server is the source of truth for the resulting state.
	updated, err := svc.ToggleTask(ctx, task.ID)
	if err != nil {
		return failBackend(errOut, err)
	}

	if !cfg.Quiet {
		if updated.Completed {
			fmt.Fprintln(out, "done")
		} else {
			fmt.Fprintln(out, "reopened")
		}
	}
	return exitcode.Success
}
