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
	Register(&RemoveCmd{})
}

// RemoveCmd implements the rm command.
type RemoveCmd struct{}

func (c *RemoveCmd) Name() string      { return "rm" }
func (c *RemoveCmd) Aliases() []string { return []string{"delete"} }
func (c *RemoveCmd) Synopsis() string  { return "Delete a task" }
func (c *RemoveCmd) Usage() string     { return "ktodo rm [common flags] <number|id>" }
func (c *RemoveCmd) NeedsAuth() bool   { return true }

func (c *RemoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RemoveCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task reference required")
		fmt.Fprintf(errOut, "usage: %s\n", c.Usage())
		return exitcode.UserError
	}

	task, err := resolveTask(ctx, svc, args[0])
	if err != nil {
		return failResolve(errOut, err)
	}

	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		return failBackend(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
