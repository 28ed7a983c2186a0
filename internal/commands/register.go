package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"ktodo/internal/auth"
	"ktodo/internal/config"
	"ktodo/internal/exitcode"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username  string
	password  string
	email     string
	firstName string
	lastName  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "ktodo register [common flags] -u <username> -p <password> -email <address> [-first <name>] [-last <name>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.firstName, "first", "", "")
	fs.StringVar(&c.lastName, "last", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.username == "" || c.password == "" || c.email == "" {
		fmt.Fprintln(errOut, "error: username, password and email required")
		fmt.Fprintf(errOut, "usage: %s\n", c.Usage())
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	reg := auth.Registration{
		Username:  c.username,
		Password:  c.password,
		Email:     c.email,
		FirstName: c.firstName,
		LastName:  c.lastName,
	}

	if err := sess.Register(ctx, reg); err != nil {
		if errors.Is(err, auth.ErrRegistrationConflict) {
			fmt.Fprintln(errOut, "error: user already exists")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered and logged in as %s\n", sess.User().Username)
	}
	return exitcode.Success
}
