package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/state"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct {
	now func() time.Time
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *StatusCmd) Usage() string     { return "tasker status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	user, ok := app.Session.User()
	if !ok || app.Session.State() != state.Authenticated {
		fmt.Fprintln(out, "not logged in")
		return exitcode.Success
	}

	if user.Email != "" {
		fmt.Fprintf(out, "logged in as %s <%s>\n", user.Username, user.Email)
	} else {
		fmt.Fprintf(out, "logged in as %s\n", user.Username)
	}
	fmt.Fprintf(out, "server: %s\n", cfg.APIURL)

	// Opaque tokens carry no expiry to show.
	claims, err := app.Session.Claims()
	if err != nil || claims.ExpiresAt.IsZero() {
		return exitcode.Success
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	exp := claims.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")
	if claims.Expired(now()) {
		fmt.Fprintf(out, "token expired at %s\n", exp)
	} else {
		fmt.Fprintf(out, "token expires at %s\n", exp)
	}
	return exitcode.Success
}
