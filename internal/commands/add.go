package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"ktodo/internal/config"
	"ktodo/internal/exitcode"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc     string
	priority string
	category string
	due      string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"a"} }
func (c *AddCmd) Synopsis() string  { return "Add a new task" }
func (c *AddCmd) Usage() string {
	return "ktodo add [common flags] [-desc <text>] [-priority <low|medium|high>] [-category <name>] [-due <YYYY-MM-DD>] <title>..."
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.priority, "priority", string(service.PriorityMedium), "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: task title required")
		return exitcode.UserError
	}

	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	draft := service.Draft{
		Title:       title,
		Description: c.desc,
		Priority:    priority,
		Category:    c.category,
	}
	if c.due != "" {
		due, err := time.Parse("2006-01-02", c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid due date %q (want YYYY-MM-DD)\n", c.due)
			return exitcode.UserError
		}
		draft.DueDate = &due
	}

	if _, err := svc.CreateTask(ctx, draft); err != nil {
		return failBackend(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
