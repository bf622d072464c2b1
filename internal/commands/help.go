package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/state"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasker help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  tasker                                             List tasks
  tasker list [common flags]
  tasker add [common flags] [--description <d>] [--status <s>] [--due <YYYY-MM-DD>] <title...>
  tasker edit [common flags] [--title <t>] [--description <d>] [--status <s>] [--due <YYYY-MM-DD>] <n>
  tasker done [common flags] <n>
  tasker rm [common flags] --yes <n>
  tasker login [common flags] --username <name> [--password <password>]
  tasker register [common flags] --username <name> --email <email> [--password <password>]
  tasker logout [common flags]
  tasker status [common flags]
  tasker tui [common flags]
  tasker help
  tasker version

Statuses: pending, in-progress, completed
Task numbers refer to the order shown by 'tasker list'.

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the task service URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
