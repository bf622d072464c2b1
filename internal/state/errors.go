// Package state holds the client-side session and task synchronization
// state machine shared by every view.
package state

import (
	"errors"
	"fmt"
)

var (
	// ErrTitleRequired is returned before any request when a draft has no title.
	ErrTitleRequired = errors.New("title required")

	// ErrDraftOpen is returned when a create or edit is started while
	// another draft is still open.
	ErrDraftOpen = errors.New("a task is already being edited")

	// ErrNoDraft is returned when a draft operation runs with nothing open.
	ErrNoDraft = errors.New("no task is being edited")

	// ErrNotAuthenticated is returned by task operations without a session.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrSessionExpired is returned when the service rejected the session
	// during a task operation; the session has been cleared.
	ErrSessionExpired = errors.New("session expired, log in again")
)

// StaleError reports an operation that took effect on the service but
// whose follow-up refresh failed. The cache still shows the collection as
// of the last successful refresh.
type StaleError struct {
	Op  string
	Err error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s succeeded but refresh failed: %v", e.Op, e.Err)
}

func (e *StaleError) Unwrap() error { return e.Err }

// Applied reports whether err (possibly nil) means the operation itself
// succeeded, even if the refresh that followed did not.
func Applied(err error) bool {
	var stale *StaleError
	return err == nil || errors.As(err, &stale)
}
