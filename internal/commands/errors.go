package commands

import (
	"errors"
	"fmt"
	"io"

	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/state"
)

// fail prints err and returns the exit code for its class.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	var oor errOutOfRange
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, state.ErrTitleRequired),
		errors.Is(err, state.ErrDraftOpen),
		errors.Is(err, state.ErrNoDraft),
		errors.As(err, &oor):
		return exitcode.UserError
	case errors.Is(err, state.ErrNotAuthenticated),
		errors.Is(err, state.ErrSessionExpired),
		errors.Is(err, service.ErrAuthFailed):
		return exitcode.AuthError
	default:
		return exitcode.BackendError
	}
}

// done reports the outcome of an operation that changed the service.
// A stale refresh is only a warning: the change itself went through.
func done(quiet bool, out, errOut io.Writer, err error) int {
	if !state.Applied(err) {
		return fail(errOut, err)
	}
	if err != nil {
		fmt.Fprintf(errOut, "warning: %v\n", err)
	}
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
