package session

import (
	"os"
	"path/filepath"
	"testing"
)

// kvs returns every backend rooted in a fresh temp dir.
func kvs(t *testing.T) map[string]KV {
	dir := t.TempDir()
	return map[string]KV{
		"file":   NewFileKV(filepath.Join(dir, "files")),
		"sqlite": NewSQLiteKV(filepath.Join(dir, "db", "session.sqlite")),
	}
}

func TestKV_RoundTrip(t *testing.T) {
	for name, kv := range kvs(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get("token"); err != nil || ok {
				t.Fatalf("empty Get: ok=%v err=%v", ok, err)
			}
			if err := kv.Set("token", "abc"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set("token", "def"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			v, ok, err := kv.Get("token")
			if err != nil || !ok || v != "def" {
				t.Fatalf("Get = %q %v %v", v, ok, err)
			}
			if err := kv.Delete("token"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := kv.Get("token"); ok {
				t.Error("key still present after Delete")
			}
			if err := kv.Delete("token"); err != nil {
				t.Errorf("deleting a missing key: %v", err)
			}
		})
	}
}

func TestFileKV_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tasker")
	kv := NewFileKV(dir)
	if err := kv.Set(KeyToken, "secret"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "token"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
	dinfo, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if dinfo.Mode().Perm() != 0700 {
		t.Errorf("dir mode = %v, want 0700", dinfo.Mode().Perm())
	}
}

func TestFileKV_FileNames(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	if err := kv.Set(KeyUser, `{"id":"1"}`); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "user.json")); err != nil {
		t.Errorf("expected user.json: %v", err)
	}
}
