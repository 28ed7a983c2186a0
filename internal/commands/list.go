package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"ktodo/internal/config"
	"ktodo/internal/exitcode"
	"ktodo/internal/output"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	category string
	priority string
	search   string
	done     bool
	open     bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "ktodo list [common flags] [-category <name>] [-priority <low|medium|high>] [-search <text>] [-done|-open]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.done && c.open {
		fmt.Fprintln(errOut, "error: -done and -open are mutually exclusive")
		return exitcode.UserError
	}

	filters := service.Filters{
		Category: c.category,
		Search:   c.search,
	}
	if c.priority != "" {
		p, err := service.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		filters.Priority = p
	}
	if c.done {
		v := true
		filters.Completed = &v
	}
	if c.open {
		v := false
		filters.Completed = &v
	}

	tasks, err := svc.ListTasks(ctx, filters)
	if err != nil {
		return failBackend(errOut, err)
	}

	for i, task := range tasks {
		output.FormatTask(out, i+1, task)
	}
	return exitcode.Success
}
