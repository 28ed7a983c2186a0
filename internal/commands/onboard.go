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
	Register(&OnboardCmd{})
}

// OnboardCmd implements the onboard command, which completes the profile
// the task service keeps alongside the identity provider account.
type OnboardCmd struct {
	phone    string
	company  string
	jobTitle string
}

func (c *OnboardCmd) Name() string      { return "onboard" }
func (c *OnboardCmd) Aliases() []string { return nil }
func (c *OnboardCmd) Synopsis() string  { return "Complete the service profile" }
func (c *OnboardCmd) Usage() string {
	return "ktodo onboard [common flags] [-phone <number>] [-company <name>] [-title <text>]"
}
func (c *OnboardCmd) NeedsAuth() bool { return true }

func (c *OnboardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.phone, "phone", "", "")
	fs.StringVar(&c.company, "company", "", "")
	fs.StringVar(&c.jobTitle, "title", "", "")
}

func (c *OnboardCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	profile, err := svc.CompleteProfile(ctx, service.Onboarding{
		Phone:    c.phone,
		Company:  c.company,
		JobTitle: c.jobTitle,
	})
	if err != nil {
		return failBackend(errOut, err)
	}

	sess.SetUser(profile)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
