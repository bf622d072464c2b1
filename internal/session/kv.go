package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// KV is the persistent key-value storage behind a Store.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set writes key.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// FileKV keeps one file per key inside a directory.
// Files are written with mode 0600 and the directory with 0700.
type FileKV struct {
	Dir string

	// Names maps keys to file names; keys not listed use the key itself.
	Names map[string]string
}

// NewFileKV returns a FileKV rooted at dir with the standard file names.
func NewFileKV(dir string) *FileKV {
	return &FileKV{
		Dir: dir,
		Names: map[string]string{
			KeyToken: "token",
			KeyUser:  "user.json",
		},
	}
}

func (f *FileKV) path(key string) string {
	if name, ok := f.Names[key]; ok {
		return filepath.Join(f.Dir, name)
	}
	return filepath.Join(f.Dir, key)
}

func (f *FileKV) Get(key string) (string, bool, error) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (f *FileKV) Set(key, value string) error {
	if err := os.MkdirAll(f.Dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(f.path(key), []byte(value), 0600)
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SQLiteKV keeps keys in a single-table SQLite database.
// The database is opened per call so concurrent tasker processes never
// hold it open between commands.
type SQLiteKV struct {
	Path string
}

// NewSQLiteKV returns a SQLiteKV backed by the database at path.
func NewSQLiteKV(path string) *SQLiteKV {
	return &SQLiteKV{Path: path}
}

func (s *SQLiteKV) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (s *SQLiteKV) Get(key string) (string, bool, error) {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, key, value)
	return err
}

func (s *SQLiteKV) Delete(key string) error {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}
