package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/logger"
	"tasker/internal/service"
	"tasker/internal/state"
	"tasker/internal/testutil"
)

func TestLoginCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("1", "alice", "secret")
	svc.AddTask("a", "First")
	app, store := newApp(t, svc, false)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, app, []string{"-u", "alice", "-p", "secret"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	sess := store.Load()
	if sess.Token != "token-alice" || sess.User == nil || sess.User.Username != "alice" {
		t.Errorf("unexpected stored session %+v", sess)
	}
	if svc.ListCalls != 1 {
		t.Errorf("expected initial fetch, got %d", svc.ListCalls)
	}
}

func TestLoginCommand_TokenRejectedOnFirstFetch(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("1", "alice", "secret")
	svc.ListErr = service.ErrUnauthorized
	app, store := newApp(t, svc, false)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, app, []string{"-u", "alice", "-p", "secret"}, false)

	if code != exitcode.AuthError {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.AuthError, code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: session expired") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if store.IsActive() {
		t.Error("rejected session should not stay stored")
	}
}

func TestLoginCommand_PasswordFromEnv(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("1", "alice", "secret")
	app, _ := newApp(t, svc, false)
	t.Setenv(commands.PasswordEnv, "secret")

	cmd := &commands.LoginCmd{}
	cmd.SetCredentials("alice", "")
	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), &config.Config{Quiet: true}, app, nil, &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errOut.String())
	}
	if app.Session.State() != state.Authenticated {
		t.Error("expected authenticated")
	}
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("1", "alice", "secret")
	app, store := newApp(t, svc, false)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, app, []string{"-u", "alice", "-p", "nope"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: login: authentication failed: invalid credentials\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if store.IsActive() {
		t.Error("nothing should be stored")
	}
	if svc.ListCalls != 0 {
		t.Errorf("expected no fetch, got %d", svc.ListCalls)
	}
}

func TestLoginCommand_MissingUsername(t *testing.T) {
	svc := testutil.NewFakeService()
	app, _ := newApp(t, svc, false)

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, app, []string{"-p", "x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: username required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.LoginCalls != 0 {
		t.Errorf("expected no login call, got %d", svc.LoginCalls)
	}
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	app, _ := newApp(t, testutil.NewFakeService(), false)
	t.Setenv(commands.PasswordEnv, "")

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, app, []string{"-u", "alice"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: password required (--password or TASKER_PASSWORD)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	app, _ := newApp(t, svc, true)

	stdout, _, code := runCommand(t, &commands.LoginCmd{}, app, []string{"-u", "bob", "-p", "x"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if svc.LoginCalls != 0 {
		t.Errorf("expected no login call, got %d", svc.LoginCalls)
	}
}

func TestRegisterCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	app, store := newApp(t, svc, false)

	stdout, stderr, code := runCommand(t, &commands.RegisterCmd{}, app,
		[]string{"--username", "bob", "--email", "bob@example.com", "--password", "pw"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	sess := store.Load()
	if sess.User == nil || sess.User.Email != "bob@example.com" {
		t.Errorf("unexpected stored user %+v", sess.User)
	}
}

func TestRegisterCommand_Taken(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("1", "bob", "pw")
	app, _ := newApp(t, svc, false)

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, app,
		[]string{"-u", "bob", "--email", "b@x", "-p", "pw"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "username taken") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand_AlreadyLoggedIn(t *testing.T) {
	app, _ := newApp(t, testutil.NewFakeService(), true)

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, app, []string{"-u", "bob", "-p", "x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: already logged in (run: tasker logout)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLogoutCommand_RemovesSession(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "First")
	app, store := newApp(t, svc, true)
	if err := app.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, app, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if store.IsActive() {
		t.Error("expected session removed")
	}
	if len(app.Tasks.List()) != 0 {
		t.Error("expected task cache cleared")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	app, _ := newApp(t, testutil.NewFakeService(), false)

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, app, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
}

func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	app, _ := newApp(t, testutil.NewFakeService(), false)

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, app, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestStatusCommand_NotLoggedIn(t *testing.T) {
	app, _ := newApp(t, testutil.NewFakeService(), false)

	stdout, _, code := runCommand(t, &commands.StatusCmd{}, app, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not logged in\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestStatusCommand_OpaqueToken(t *testing.T) {
	app, _ := newApp(t, testutil.NewFakeService(), true)

	stdout, _, code := runCommand(t, &commands.StatusCmd{}, app, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "logged in as alice <alice@example.com>\nserver: http://tasks.test/api\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestStatusCommand_JWTExpiry(t *testing.T) {
	tests := []struct {
		name string
		exp  time.Time
		want string
	}{
		{"valid", time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), "token expires at 2099-01-01 00:00 UTC\n"},
		{"expired", time.Date(2001, 1, 1, 12, 30, 0, 0, time.UTC), "token expired at 2001-01-01 12:30 UTC\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, store := newApp(t, testutil.NewFakeService(), false)
			tok := signToken(t, tt.exp)
			if err := store.Save(tok, testUser()); err != nil {
				t.Fatalf("save: %v", err)
			}
			app := state.New(store, testutil.NewFakeService(), logger.Discard())

			stdout, _, _ := runCommand(t, &commands.StatusCmd{}, app, nil, false)

			if !strings.HasSuffix(stdout, tt.want) {
				t.Errorf("expected suffix %q, got %q", tt.want, stdout)
			}
		})
	}
}
