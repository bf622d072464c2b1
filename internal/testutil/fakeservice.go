// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"tasker/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]fakeAccount // username -> account
	tasks  []service.Task
	nextID int

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error

	// Call counters
	LoginCalls  int
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

type fakeAccount struct {
	user     service.User
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]fakeAccount),
		nextID: 1,
	}
}

// AddUser registers an account that Login accepts.
func (f *FakeService) AddUser(id, username, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: service.ID(id), Username: username}
	f.users[username] = fakeAccount{user: u, password: password}
	return u
}

// AddTask appends a task with the given id and title, status pending.
func (f *FakeService) AddTask(id, title string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: service.ID(id), Title: title, Status: service.StatusPending}
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns the service-side tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Task(nil), f.tasks...)
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	acct, ok := f.users[creds.Username]
	if !ok || acct.password != creds.Password {
		return service.AuthResult{}, fmt.Errorf("%w: invalid credentials", service.ErrAuthFailed)
	}
	return service.AuthResult{Token: "token-" + creds.Username, User: acct.user}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, profile service.Profile) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	if _, exists := f.users[profile.Username]; exists {
		return service.AuthResult{}, fmt.Errorf("%w: username taken", service.ErrAuthFailed)
	}
	u := service.User{
		ID:       service.ID(strconv.Itoa(len(f.users) + 1)),
		Username: profile.Username,
		Email:    profile.Email,
	}
	f.users[profile.Username] = fakeAccount{user: u, password: profile.Password}
	return service.AuthResult{Token: "token-" + profile.Username, User: u}, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]service.Task{}, f.tasks...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, fields service.Fields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	t := service.Task{
		ID:          service.ID("srv-" + strconv.Itoa(f.nextID)),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		DueDate:     fields.DueDate,
	}
	if t.Status == "" {
		t.Status = service.StatusPending
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id service.ID, fields service.Fields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = service.Task{
				ID:          id,
				Title:       fields.Title,
				Description: fields.Description,
				Status:      fields.Status,
				DueDate:     fields.DueDate,
			}
			return f.tasks[i], nil
		}
	}
	return service.Task{}, fmt.Errorf("%w: HTTP 404: task not found", service.ErrRequestFailed)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: HTTP 404: task not found", service.ErrRequestFailed)
}

var _ service.Service = (*FakeService)(nil)
