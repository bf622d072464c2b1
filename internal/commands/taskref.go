package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tasker/internal/service"
	"tasker/internal/state"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// errOutOfRange reports a task number past the end of the list.
type errOutOfRange int

func (e errOutOfRange) Error() string {
	return fmt.Sprintf("task number out of range: %d", int(e))
}

// ParseTaskRef parses the 1-based task number from the first argument.
// Extra arguments are rejected.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	return n, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// resolveTask refreshes the list and returns task number n in it.
// Numbers always refer to the list as the service returns it now.
func resolveTask(ctx context.Context, app *state.App, n int) (service.Task, error) {
	if n < 1 {
		return service.Task{}, errOutOfRange(n)
	}
	if err := app.Refresh(ctx); err != nil {
		return service.Task{}, err
	}
	task, ok := app.Tasks.At(n)
	if !ok {
		return service.Task{}, errOutOfRange(n)
	}
	return task, nil
}
