package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"ktodo/internal/config"
	"ktodo/internal/exitcode"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the fields given as flags are
// sent to the server; the rest keep their current values.
type EditCmd struct {
	title    string
	desc     string
	priority string
	category string
	due      string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit fields of a task" }
func (c *EditCmd) Usage() string {
	return "ktodo edit [common flags] [-title <text>] [-desc <text>] [-priority <low|medium|high>] [-category <name>] [-due <YYYY-MM-DD>] <number|id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task reference required")
		fmt.Fprintf(errOut, "usage: %s\n", c.Usage())
		return exitcode.UserError
	}

	patch := service.Patch{}
	if c.title != "" {
		patch.Title = &c.title
	}
	if c.desc != "" {
		patch.Description = &c.desc
	}
	if c.priority != "" {
		p, err := service.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		patch.Priority = &p
	}
	if c.category != "" {
		patch.Category = &c.category
	}
	if c.due != "" {
		due, err := time.Parse("2006-01-02", c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid due date %q (want YYYY-MM-DD)\n", c.due)
			return exitcode.UserError
		}
		patch.DueDate = &due
	}

	if patch == (service.Patch{}) {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	task, err := resolveTask(ctx, svc, args[0])
	if err != nil {
		return failResolve(errOut, err)
	}

	if _, err := svc.UpdateTask(ctx, task.ID, patch); err != nil {
		return failBackend(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
