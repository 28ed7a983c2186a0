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
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct {
	remote bool
}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "ktodo whoami [common flags] [-remote]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.remote, "remote", false, "")
}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	user := sess.User()

	// -remote fetches the profile from the task service instead of the
	// identity provider, picking up onboarding fields.
	if c.remote {
		profile, err := svc.Profile(ctx)
		if err != nil {
			return failBackend(errOut, err)
		}
		user = profile
	}

	if user == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: ktodo login)")
		return exitcode.AuthError
	}

	output.FormatProfile(out, user)
	return exitcode.Success
}
