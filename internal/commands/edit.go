package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/state"
)

func init() {
	Register(&EditCmd{})
	Register(&DoneCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	fields fieldFlags
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tasker edit [--title <t>] [--description <d>] [--status <s>] [--due <YYYY-MM-DD>] <n>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, true)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	apply, err := c.fields.changes()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return editTask(ctx, cfg, app, args, apply, out, errOut)
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "tasker done [common flags] <n>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	return editTask(ctx, cfg, app, args, func(d *state.Draft) {
		d.Status = service.StatusCompleted
	}, out, errOut)
}

// editTask opens task n in the editor, applies fn to the draft and submits it.
func editTask(ctx context.Context, cfg *config.Config, app *state.App, args []string, fn func(d *state.Draft), out, errOut io.Writer) int {
	n, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := resolveTask(ctx, app, n)
	if err != nil {
		return fail(errOut, err)
	}

	if err := app.StartEdit(task); err != nil {
		return fail(errOut, err)
	}
	if err := app.EditDraft(fn); err != nil {
		return fail(errOut, err)
	}

	return done(cfg.Quiet, out, errOut, app.Submit(ctx))
}
