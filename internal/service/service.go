// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed is the single failure signal of a task request:
	// network error, non-success status or malformed response.
	ErrRequestFailed = errors.New("request failed")

	// ErrAuthFailed is returned when login or registration is rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnauthorized marks a request the service refused for lack of a
	// valid session. It always wraps ErrRequestFailed as well.
	ErrUnauthorized = fmt.Errorf("%w: session rejected by server", ErrRequestFailed)
)

// Service defines the interface for task backend operations.
// All remote API calls go through this interface.
// Controllers never import the HTTP client directly.
type Service interface {
	// Login exchanges credentials for a session token and profile.
	Login(ctx context.Context, creds Credentials) (AuthResult, error)

	// Register creates an account and returns its session.
	Register(ctx context.Context, profile Profile) (AuthResult, error)

	// ListTasks returns every task in API order (no client-side sorting).
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it as stored by the service.
	CreateTask(ctx context.Context, fields Fields) (Task, error)

	// UpdateTask replaces the fields of task id.
	UpdateTask(ctx context.Context, id ID, fields Fields) (Task, error)

	// DeleteTask deletes task id.
	DeleteTask(ctx context.Context, id ID) error
}
