package state

import (
	"context"
	"fmt"
	"sync"

	"tasker/internal/service"
)

// Mode is the state of the Editor.
type Mode int

const (
	Closed Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

// Draft is the task being composed. ID is empty for a new task.
type Draft struct {
	ID service.ID
	service.Fields
}

// BlankDraft is the template for a new task.
func BlankDraft() Draft {
	return Draft{Fields: service.Fields{Status: service.StatusPending}}
}

// Editor tracks the single open draft, if any. It holds the draft by value:
// nothing done to it reaches the task cache until a submit succeeds.
type Editor struct {
	mu    sync.RWMutex
	mode  Mode
	draft Draft
}

// StartCreate opens a blank draft.
func (e *Editor) StartCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Creating
	e.draft = BlankDraft()
}

// StartEdit opens a draft seeded with a copy of task. A due date the
// service sent as a timestamp is cut down to its date.
func (e *Editor) StartEdit(task service.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Editing
	e.draft = Draft{ID: task.ID, Fields: task.Fields()}
	if e.draft.Status == "" {
		e.draft.Status = service.StatusPending
	}
	if d, ok := task.Due(); ok {
		e.draft.DueDate = d.Format(service.DateLayout)
	}
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = Closed
	e.draft = Draft{}
}

// Mode returns the current state.
func (e *Editor) Mode() Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// Draft returns a copy of the open draft.
func (e *Editor) Draft() (Draft, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.draft, e.mode != Closed
}

// Update applies fn to the open draft.
func (e *Editor) Update(fn func(d *Draft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == Closed {
		return ErrNoDraft
	}
	id := e.draft.ID
	fn(&e.draft)
	e.draft.ID = id
	return nil
}

// SetField sets one named draft field: title, description, status or due_date.
func (e *Editor) SetField(name, value string) error {
	if err := validName(name); err != nil {
		return err
	}
	var status service.Status
	if name == "status" {
		st, err := service.ParseStatus(value)
		if err != nil {
			return err
		}
		status = st
	}
	return e.Update(func(d *Draft) {
		switch name {
		case "title":
			d.Title = value
		case "description":
			d.Description = value
		case "status":
			d.Status = status
		case "due_date":
			d.DueDate = value
		}
	})
}

// Submit sends the draft to tasks: an update when it carries an ID,
// a create otherwise. The editor closes once the service accepted the
// change; on failure the draft is left exactly as it was.
func (e *Editor) Submit(ctx context.Context, tasks *Tasks) error {
	draft, open := e.Draft()
	if !open {
		return ErrNoDraft
	}

	var err error
	if draft.ID == "" {
		err = tasks.Create(ctx, draft.Fields)
	} else {
		err = tasks.Update(ctx, draft.ID, draft.Fields)
	}
	if !Applied(err) {
		return err
	}

	e.mu.Lock()
	e.mode = Closed
	e.draft = Draft{}
	e.mu.Unlock()
	return err
}

// validName reports whether name is a draft field SetField understands.
func validName(name string) error {
	switch name {
	case "title", "description", "status", "due_date":
		return nil
	}
	return fmt.Errorf("unknown field: %s", name)
}
