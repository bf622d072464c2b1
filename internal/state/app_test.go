package state_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tasker/internal/logger"
	"tasker/internal/service"
	"tasker/internal/state"
	"tasker/internal/testutil"
)

func TestApp_TaskIntentsRequireSession(t *testing.T) {
	svc := testutil.NewFakeService()
	app := state.New(newStore(t), svc, logger.Discard())
	ctx := context.Background()

	checks := map[string]error{
		"refresh":     app.Refresh(ctx),
		"startCreate": app.StartCreate(),
		"startEdit":   app.StartEdit(service.Task{ID: "1"}),
		"submit":      app.Submit(ctx),
		"remove":      app.Remove(ctx, "1"),
	}
	for name, err := range checks {
		if !errors.Is(err, state.ErrNotAuthenticated) {
			t.Errorf("%s: expected ErrNotAuthenticated, got %v", name, err)
		}
	}
	if svc.ListCalls+svc.CreateCalls+svc.DeleteCalls != 0 {
		t.Error("no requests expected")
	}
}

func TestApp_OneDraftAtATime(t *testing.T) {
	app, _ := loggedInApp(t, testutil.NewFakeService())

	if err := app.StartCreate(); err != nil {
		t.Fatal(err)
	}
	if err := app.StartCreate(); !errors.Is(err, state.ErrDraftOpen) {
		t.Errorf("expected ErrDraftOpen, got %v", err)
	}
	if err := app.StartEdit(service.Task{ID: "1", Title: "x"}); !errors.Is(err, state.ErrDraftOpen) {
		t.Errorf("expected ErrDraftOpen, got %v", err)
	}
	if app.Editor.Mode() != state.Creating {
		t.Errorf("mode changed to %v", app.Editor.Mode())
	}

	app.Cancel()
	if err := app.StartEdit(service.Task{ID: "1", Title: "x"}); err != nil {
		t.Errorf("StartEdit after cancel: %v", err)
	}
}

func TestApp_CreateFlow(t *testing.T) {
	svc := testutil.NewFakeService()
	app, _ := loggedInApp(t, svc)
	ctx := context.Background()

	if err := app.StartCreate(); err != nil {
		t.Fatal(err)
	}
	if err := app.EditDraft(func(d *state.Draft) {
		d.Title = "Buy milk"
	}); err != nil {
		t.Fatal(err)
	}
	if err := app.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := app.Snapshot()
	if snap.Mode != state.Closed {
		t.Errorf("mode %v", snap.Mode)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != "srv-1" || snap.Tasks[0].Status != service.StatusPending {
		t.Errorf("tasks %+v", snap.Tasks)
	}
	if snap.Err != nil {
		t.Errorf("unexpected error %v", snap.Err)
	}
}

func TestApp_RemoveFailureKeepsTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("7", "keep me")
	app, _ := loggedInApp(t, svc)
	svc.DeleteErr = service.ErrRequestFailed

	err := app.Remove(context.Background(), "7")

	if !errors.Is(err, service.ErrRequestFailed) {
		t.Fatalf("expected request failure, got %v", err)
	}
	snap := app.Snapshot()
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "keep me" {
		t.Errorf("task should remain visible: %+v", snap.Tasks)
	}
	if snap.Err == nil {
		t.Error("error should be reported")
	}
}

func TestApp_CancelEditMakesNoCalls(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("5", "Old")
	app, _ := loggedInApp(t, svc)
	calls := svc.ListCalls

	task, _ := app.Tasks.At(1)
	if err := app.StartEdit(task); err != nil {
		t.Fatal(err)
	}
	app.EditDraft(func(d *state.Draft) { d.Title = "New" })
	app.Cancel()

	if app.Editor.Mode() != state.Closed {
		t.Error("expected closed")
	}
	if svc.ListCalls != calls || svc.UpdateCalls != 0 {
		t.Error("cancel should not contact the service")
	}
	if got, _ := app.Tasks.At(1); got.Title != "Old" {
		t.Errorf("task changed: %+v", got)
	}
}

func TestApp_UnauthorizedLogsOut(t *testing.T) {
	tests := map[string]func(app *state.App, svc *testutil.FakeService) error{
		"refresh": func(app *state.App, svc *testutil.FakeService) error {
			svc.ListErr = service.ErrUnauthorized
			return app.Refresh(context.Background())
		},
		"remove": func(app *state.App, svc *testutil.FakeService) error {
			svc.DeleteErr = service.ErrUnauthorized
			return app.Remove(context.Background(), "1")
		},
		"submit": func(app *state.App, svc *testutil.FakeService) error {
			svc.UpdateErr = service.ErrUnauthorized
			task, _ := app.Tasks.At(1)
			if err := app.StartEdit(task); err != nil {
				return err
			}
			return app.Submit(context.Background())
		},
	}
	for name, op := range tests {
		t.Run(name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			svc.AddTask("1", "a")
			app, store := loggedInApp(t, svc)

			err := op(app, svc)

			if !errors.Is(err, state.ErrSessionExpired) {
				t.Fatalf("expected ErrSessionExpired, got %v", err)
			}
			snap := app.Snapshot()
			if snap.State != state.Unauthenticated || len(snap.Tasks) != 0 || snap.Mode != state.Closed {
				t.Errorf("expected full logout, got %+v", snap)
			}
			if store.IsActive() {
				t.Error("stored session should be cleared")
			}
		})
	}
}

func TestApp_OtherFailuresKeepSession(t *testing.T) {
	svc := testutil.NewFakeService()
	app, _ := loggedInApp(t, svc)
	svc.ListErr = service.ErrRequestFailed

	if err := app.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if app.Session.State() != state.Authenticated {
		t.Error("a plain request failure must not log out")
	}
}

func TestApp_ErrClearedBySuccess(t *testing.T) {
	svc := testutil.NewFakeService()
	app, _ := loggedInApp(t, svc)

	svc.ListErr = service.ErrRequestFailed
	app.Refresh(context.Background())
	if app.Err() == nil {
		t.Fatal("expected reported error")
	}

	svc.ListErr = nil
	if err := app.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if app.Err() != nil {
		t.Errorf("error should clear, got %v", app.Err())
	}

	svc.ListErr = service.ErrRequestFailed
	app.Refresh(context.Background())
	app.ClearErr()
	if app.Err() != nil {
		t.Error("ClearErr should dismiss the error")
	}
}

func TestApp_SnapshotDuringRefresh(t *testing.T) {
	svc := &spyService{FakeService: testutil.NewFakeService()}
	app, _ := loggedInApp(t, svc)

	var snap state.Snapshot
	svc.beforeList = func() {
		// Rendering must not wait for the running intent.
		done := make(chan struct{})
		go func() {
			snap = app.Snapshot()
			close(done)
		}()
		<-done
	}
	if err := app.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !snap.Loading {
		t.Error("expected snapshot to show loading")
	}
}

func TestApp_ConcurrentIntents(t *testing.T) {
	svc := testutil.NewFakeService()
	app, _ := loggedInApp(t, svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			app.Refresh(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = app.Snapshot()
		}()
	}
	wg.Wait()

	if app.Tasks.Loading() {
		t.Error("loading left set")
	}
}
