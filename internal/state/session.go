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

// AuthState is the state of the Session controller.
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session moves the client between Unauthenticated and Authenticated.
// It owns the persisted session and, on the way out, discards the task
// cache and any open draft.
type Session struct {
	store  *session.Store
	svc    service.Service
	tasks  *Tasks
	editor *Editor
	log    *slog.Logger

	mu    sync.RWMutex
	state AuthState
	user  *service.User
}

// NewSession restores the persisted session. The controller starts
// Authenticated only if both a token and a user profile were stored;
// a lone half is cleared so the two never drift apart.
func NewSession(store *session.Store, svc service.Service, tasks *Tasks, editor *Editor, log *slog.Logger) *Session {
	s := &Session{
		store:  store,
		svc:    svc,
		tasks:  tasks,
		editor: editor,
		log:    log.With("component", "session"),
	}

	sess := store.Load()
	switch {
	case sess.Token != "" && sess.User != nil:
		s.state = Authenticated
		u := *sess.User
		s.user = &u
	case !sess.Empty():
		s.log.Warn("incomplete stored session, clearing", "has_token", sess.Token != "", "has_user", sess.User != nil)
		if err := store.Clear(); err != nil {
			s.log.Warn("clear session", "err", err)
		}
	}
	return s
}

// State returns the current state.
func (s *Session) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the signed-in user.
func (s *Session) User() (service.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return service.User{}, false
	}
	return *s.user, true
}

// Login authenticates, persists the session and fetches the task list.
// A failed login leaves the controller Unauthenticated. If only the
// initial fetch fails, the login stands and a *StaleError is returned.
func (s *Session) Login(ctx context.Context, creds service.Credentials) error {
	res, err := s.svc.Login(ctx, creds)
	if err != nil {
		s.log.Warn("login failed", "username", creds.Username, "err", err)
		return fmt.Errorf("login: %w", err)
	}
	return s.begin(ctx, "login", res)
}

// Register creates an account and signs in with it.
func (s *Session) Register(ctx context.Context, profile service.Profile) error {
	res, err := s.svc.Register(ctx, profile)
	if err != nil {
		s.log.Warn("register failed", "username", profile.Username, "err", err)
		return fmt.Errorf("register: %w", err)
	}
	return s.begin(ctx, "register", res)
}

func (s *Session) begin(ctx context.Context, op string, res service.AuthResult) error {
	if err := s.store.Save(res.Token, res.User); err != nil {
		// Undo a half-written session.
		_ = s.store.Clear()
		return fmt.Errorf("%s: persist session: %w", op, err)
	}

	s.mu.Lock()
	s.state = Authenticated
	u := res.User
	s.user = &u
	s.mu.Unlock()

	s.log.Info("signed in", "username", res.User.Username)

	if err := s.tasks.Refresh(ctx); err != nil {
		return &StaleError{Op: op, Err: err}
	}
	return nil
}

// Logout clears the persisted session, the task cache and any open draft.
// The controller ends Unauthenticated even if the store could not be cleared.
func (s *Session) Logout() error {
	err := s.store.Clear()
	if err != nil {
		s.log.Warn("clear session", "err", err)
		err = fmt.Errorf("logout: %w", err)
	}

	s.tasks.Reset()
	s.editor.Cancel()

	s.mu.Lock()
	s.state = Unauthenticated
	s.user = nil
	s.mu.Unlock()
	return err
}

// Claims reads the expiry and subject of the stored token, if it is a JWT.
func (s *Session) Claims() (session.Claims, error) {
	tok := s.store.Load().Token
	if tok == "" {
		return session.Claims{}, ErrNotAuthenticated
	}
	return session.TokenClaims(tok)
}

// IsAuthFailure reports whether err is a rejected login or registration.
func IsAuthFailure(err error) bool {
	return errors.Is(err, service.ErrAuthFailed)
}
