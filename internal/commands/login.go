package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"ktodo/internal/config"
	"ktodo/internal/exitcode"
	"ktodo/internal/service"
	"ktodo/internal/session"
)

const (
	// callbackTimeout bounds the wait for the browser redirect.
	callbackTimeout = 5 * time.Minute
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
	google   bool
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the todo service" }
func (c *LoginCmd) Usage() string {
	return "ktodo login [common flags] (-u <username> -p <password> | -google)"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
	fs.BoolVar(&c.google, "google", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Controller, svc service.Service, args []string, out, errOut io.Writer) int {
	// A locally valid stored token means we are probably signed in
	// already; the profile fetch confirms it.
	if _, err := sess.Init(ctx, nil); err == nil && sess.Status() == session.Authenticated {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if c.google {
		return c.runFederated(ctx, cfg, sess, out, errOut)
	}
	return c.runPassword(ctx, cfg, sess, out, errOut)
}

// runPassword performs the resource-owner-password grant.
func (c *LoginCmd) runPassword(ctx context.Context, cfg *config.Config, sess *session.Controller, out, errOut io.Writer) int {
	if c.username == "" {
		fmt.Fprintln(errOut, "error: username required (or use -google)")
		return exitcode.UserError
	}
	if c.password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	if err := sess.Login(ctx, c.username, c.password); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", sess.User().Username)
	}
	return exitcode.Success
}

// runFederated drives the authorization-code flow: a loopback server at the
// configured redirect URI captures the provider callback, and the session
// controller exchanges the code it carries.
func (c *LoginCmd) runFederated(ctx context.Context, cfg *config.Config, sess *session.Controller, out, errOut io.Writer) int {
	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid redirect URI: %v\n", err)
		return exitcode.AuthError
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind %s for the login callback\n", redirect.Host)
		return exitcode.AuthError
	}
	defer listener.Close()

	state := uuid.NewString()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, sess.FederatedLoginURL(state))

	urlCh := make(chan *url.URL, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- fmt.Errorf("state mismatch in callback")
			return
		}
		if r.URL.Query().Get("code") == "" {
			http.Error(w, "no code in callback", http.StatusBadRequest)
			errCh <- fmt.Errorf("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		urlCh <- r.URL
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var callback *url.URL
	select {
	case callback = <-urlCh:
	case err := <-errCh:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case <-time.After(callbackTimeout):
		fmt.Fprintln(errOut, "error: login callback timed out")
		return exitcode.AuthError
	case <-ctx.Done():
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.AuthError
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	// The code is single-use: Init exchanges it once and returns the URL
	// with the auth parameters stripped.
	if _, err := sess.Init(ctx, callback); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", sess.User().Username)
	}
	return exitcode.Success
}
