package state

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tasker/internal/service"
)

// Tasks owns the cached task collection. The cache is replaced wholesale
// by Refresh and by nothing else; mutations go to the service and are
// followed by a Refresh.
type Tasks struct {
	svc service.Service
	log *slog.Logger

	mu      sync.RWMutex
	tasks   []service.Task
	loading bool
}

// NewTasks returns an empty collection backed by svc.
func NewTasks(svc service.Service, log *slog.Logger) *Tasks {
	return &Tasks{svc: svc, log: log.With("component", "tasks")}
}

// Refresh fetches the full collection and replaces the cache with it.
// On failure the previous cache is kept unchanged.
func (t *Tasks) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()

	fetched, err := t.svc.ListTasks(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if err != nil {
		t.log.Warn("refresh failed", "err", err)
		return fmt.Errorf("fetch tasks: %w", err)
	}
	t.tasks = append([]service.Task(nil), fetched...)
	t.log.Debug("refreshed", "count", len(t.tasks))
	return nil
}

// Create asks the service to create a task, then refreshes.
func (t *Tasks) Create(ctx context.Context, fields service.Fields) error {
	if err := validate(fields); err != nil {
		return err
	}
	if _, err := t.svc.CreateTask(ctx, fields); err != nil {
		t.log.Warn("create failed", "err", err)
		return fmt.Errorf("create task: %w", err)
	}
	return t.refreshAfter(ctx, "create")
}

// Update replaces the fields of task id, then refreshes.
func (t *Tasks) Update(ctx context.Context, id service.ID, fields service.Fields) error {
	if err := validate(fields); err != nil {
		return err
	}
	if _, err := t.svc.UpdateTask(ctx, id, fields); err != nil {
		t.log.Warn("update failed", "id", id, "err", err)
		return fmt.Errorf("update task: %w", err)
	}
	return t.refreshAfter(ctx, "update")
}

// Remove deletes task id, then refreshes. The caller is responsible for
// having obtained the user's confirmation.
func (t *Tasks) Remove(ctx context.Context, id service.ID) error {
	if err := t.svc.DeleteTask(ctx, id); err != nil {
		t.log.Warn("delete failed", "id", id, "err", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return t.refreshAfter(ctx, "delete")
}

func (t *Tasks) refreshAfter(ctx context.Context, op string) error {
	if err := t.Refresh(ctx); err != nil {
		return &StaleError{Op: op, Err: err}
	}
	return nil
}

// Reset drops the cache.
func (t *Tasks) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks = nil
	t.loading = false
}

// List returns a copy of the cached collection in service order.
func (t *Tasks) List() []service.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]service.Task(nil), t.tasks...)
}

// Loading reports whether a refresh is in flight.
func (t *Tasks) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// At returns the task at 1-based position n.
func (t *Tasks) At(n int) (service.Task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n < 1 || n > len(t.tasks) {
		return service.Task{}, false
	}
	return t.tasks[n-1], true
}

func validate(fields service.Fields) error {
	if strings.TrimSpace(fields.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}
