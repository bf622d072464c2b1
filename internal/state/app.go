package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tasker/internal/service"
	"tasker/internal/session"
)

// App is the single entry point views dispatch user intents to. It runs
// one operation at a time and remembers the last failure for display.
type App struct {
	Session *Session
	Tasks   *Tasks
	Editor  *Editor

	log *slog.Logger
	ops sync.Mutex // held for the whole of each intent

	mu      sync.RWMutex
	lastErr error
}

// New wires the controllers around one store and one service.
func New(store *session.Store, svc service.Service, log *slog.Logger) *App {
	tasks := NewTasks(svc, log)
	editor := &Editor{}
	return &App{
		Session: NewSession(store, svc, tasks, editor, log),
		Tasks:   tasks,
		Editor:  editor,
		log:     log,
	}
}

// Snapshot is everything a view needs to render.
type Snapshot struct {
	State   AuthState
	User    service.User
	Tasks   []service.Task
	Loading bool
	Mode    Mode
	Draft   Draft
	Err     error
}

// Snapshot returns the current state. It never waits on a running intent.
func (a *App) Snapshot() Snapshot {
	snap := Snapshot{
		State:   a.Session.State(),
		Tasks:   a.Tasks.List(),
		Loading: a.Tasks.Loading(),
		Mode:    a.Editor.Mode(),
		Err:     a.Err(),
	}
	snap.User, _ = a.Session.User()
	snap.Draft, _ = a.Editor.Draft()
	return snap
}

// Err returns the failure of the most recent intent, or nil.
func (a *App) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// ClearErr dismisses the reported failure.
func (a *App) ClearErr() {
	a.report(nil)
}

func (a *App) report(err error) error {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
	return err
}

// Start performs the initial fetch for a restored session.
func (a *App) Start(ctx context.Context) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if a.Session.State() != Authenticated {
		return nil
	}
	return a.report(a.guard(a.Tasks.Refresh(ctx)))
}

// Login signs in and loads tasks.
func (a *App) Login(ctx context.Context, creds service.Credentials) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	return a.report(a.guard(a.Session.Login(ctx, creds)))
}

// Register creates an account, signs in and loads tasks.
func (a *App) Register(ctx context.Context, profile service.Profile) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	return a.report(a.guard(a.Session.Register(ctx, profile)))
}

// Logout ends the session.
func (a *App) Logout() error {
	a.ops.Lock()
	defer a.ops.Unlock()
	return a.report(a.Session.Logout())
}

// Refresh reloads the task list.
func (a *App) Refresh(ctx context.Context) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.requireSession(); err != nil {
		return a.report(err)
	}
	return a.report(a.guard(a.Tasks.Refresh(ctx)))
}

// StartCreate opens a blank draft unless one is already open.
func (a *App) StartCreate() error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.requireSession(); err != nil {
		return a.report(err)
	}
	if a.Editor.Mode() != Closed {
		return a.report(ErrDraftOpen)
	}
	a.Editor.StartCreate()
	return a.report(nil)
}

// StartEdit opens a draft copied from task unless one is already open.
func (a *App) StartEdit(task service.Task) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.requireSession(); err != nil {
		return a.report(err)
	}
	if a.Editor.Mode() != Closed {
		return a.report(ErrDraftOpen)
	}
	a.Editor.StartEdit(task)
	return a.report(nil)
}

// EditDraft applies fn to the open draft.
func (a *App) EditDraft(fn func(d *Draft)) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	return a.Editor.Update(fn)
}

// Cancel discards the open draft without contacting the service.
func (a *App) Cancel() {
	a.ops.Lock()
	defer a.ops.Unlock()
	a.Editor.Cancel()
	a.report(nil)
}

// Submit sends the open draft.
func (a *App) Submit(ctx context.Context) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.requireSession(); err != nil {
		return a.report(err)
	}
	return a.report(a.guard(a.Editor.Submit(ctx, a.Tasks)))
}

// Remove deletes task id. The view must have confirmed with the user.
func (a *App) Remove(ctx context.Context, id service.ID) error {
	a.ops.Lock()
	defer a.ops.Unlock()
	if err := a.requireSession(); err != nil {
		return a.report(err)
	}
	return a.report(a.guard(a.Tasks.Remove(ctx, id)))
}

func (a *App) requireSession() error {
	if a.Session.State() != Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// guard turns a request the service refused for lack of a valid session
// into a logout.
func (a *App) guard(err error) error {
	if err == nil || !errors.Is(err, service.ErrUnauthorized) {
		return err
	}
	a.log.Warn("session rejected by server, logging out", "err", err)
	if lerr := a.Session.Logout(); lerr != nil {
		a.log.Warn("logout after rejected session", "err", lerr)
	}
	return fmt.Errorf("%w: %v", ErrSessionExpired, err)
}
