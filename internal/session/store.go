// Package session persists the authentication token and user profile.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"tasker/internal/config"
	"tasker/internal/logger"
	"tasker/internal/service"
)

// Storage keys. Both absent is the canonical logged-out state.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNoSession is returned by Token when no token is stored.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted identity: a token and the user it belongs to.
type Session struct {
	Token string
	User  *service.User
}

// Empty reports whether neither token nor user is present.
func (s Session) Empty() bool {
	return s.Token == "" && s.User == nil
}

// Store owns the token and cached user profile in a KV.
type Store struct {
	kv  KV
	log *slog.Logger
}

// NewStore wraps kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, log: logger.With("component", "session")}
}

// Open returns the Store selected by cfg.StoreBackend.
func Open(cfg *config.Config) (*Store, error) {
	switch cfg.StoreBackend {
	case "", config.StoreFile:
		return NewStore(NewFileKV(cfg.Dir)), nil
	case config.StoreSQLite:
		return NewStore(NewSQLiteKV(cfg.SQLitePath())), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.StoreBackend)
	}
}

// Load reads the session. Missing keys yield an empty session; unreadable
// or corrupt values are logged and treated as missing.
func (s *Store) Load() Session {
	var sess Session

	token, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		s.log.Warn("read token", "err", err)
	} else if ok {
		sess.Token = strings.TrimSpace(token)
	}

	raw, ok, err := s.kv.Get(KeyUser)
	if err != nil {
		s.log.Warn("read user", "err", err)
	} else if ok {
		var u service.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.Warn("corrupt user profile, ignoring", "err", err)
		} else {
			sess.User = &u
		}
	}
	return sess
}

// Save writes the token, then the user profile.
// A failure between the two writes leaves only the token behind.
func (s *Store) Save(token string, user service.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(KeyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.kv.Set(KeyUser, string(b)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.log.Debug("session saved", "user", user.Username)
	return nil
}

// Clear removes both keys. Both deletes are attempted even if one fails.
func (s *Store) Clear() error {
	errTok := s.kv.Delete(KeyToken)
	errUser := s.kv.Delete(KeyUser)
	return errors.Join(errTok, errUser)
}

// IsActive reports whether a token is stored.
func (s *Store) IsActive() bool {
	return s.Load().Token != ""
}

// Token implements oauth2.TokenSource with the stored token as a bearer
// credential. It is read on every call so requests always carry the
// current session.
func (s *Store) Token() (*oauth2.Token, error) {
	tok, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		return nil, err
	}
	tok = strings.TrimSpace(tok)
	if !ok || tok == "" {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
