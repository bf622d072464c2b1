package state_test

import (
	"context"
	"testing"

	"tasker/internal/logger"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/state"
	"tasker/internal/testutil"
)

// spyService runs hooks before delegating to the fake.
type spyService struct {
	*testutil.FakeService
	beforeList func()
}

func (s *spyService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if s.beforeList != nil {
		s.beforeList()
	}
	return s.FakeService.ListTasks(ctx)
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(session.NewFileKV(t.TempDir()))
}

var alice = service.User{ID: "1", Username: "alice"}

// loggedInApp returns an app restored from a stored session for alice,
// with its initial fetch done.
func loggedInApp(t *testing.T, svc service.Service) (*state.App, *session.Store) {
	t.Helper()
	store := newStore(t)
	if err := store.Save("token-alice", alice); err != nil {
		t.Fatalf("save: %v", err)
	}
	app := state.New(store, svc, logger.Discard())
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return app, store
}

func titles(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
