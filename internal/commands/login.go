package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/state"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "TASKER_PASSWORD"

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the task service" }
func (c *LoginCmd) Usage() string {
	return "tasker login [common flags] --username <name> [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

// SetCredentials sets the username and password (for testing).
func (c *LoginCmd) SetCredentials(username, password string) {
	c.username, c.password = username, password
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	if app.Session.State() == state.Authenticated {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	creds := service.Credentials{
		Username: strings.TrimSpace(c.username),
		Password: passwordOrEnv(c.password),
	}
	if creds.Username == "" {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	if creds.Password == "" {
		fmt.Fprintf(errOut, "error: password required (--password or %s)\n", PasswordEnv)
		return exitcode.UserError
	}

	return done(cfg.Quiet, out, errOut, app.Login(ctx, creds))
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "tasker register [common flags] --username <name> --email <email> [--password <password>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	if app.Session.State() == state.Authenticated {
		fmt.Fprintln(errOut, "error: already logged in (run: tasker logout)")
		return exitcode.UserError
	}

	profile := service.Profile{
		Username: strings.TrimSpace(c.username),
		Email:    strings.TrimSpace(c.email),
		Password: passwordOrEnv(c.password),
	}
	if profile.Username == "" {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	if profile.Password == "" {
		fmt.Fprintf(errOut, "error: password required (--password or %s)\n", PasswordEnv)
		return exitcode.UserError
	}

	return done(cfg.Quiet, out, errOut, app.Register(ctx, profile))
}

func passwordOrEnv(p string) string {
	if p != "" {
		return p
	}
	return os.Getenv(PasswordEnv)
}
