package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"tasker/internal/cli"
	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/logger"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/state"
	"tasker/internal/testutil"
)

// testFactory builds client state over svc, with the session kept in the
// config directory the dispatcher resolved.
func testFactory(svc *testutil.FakeService) cli.AppFactory {
	return func(ctx context.Context, cfg *config.Config) (*state.App, func(), error) {
		store := session.NewStore(session.NewFileKV(cfg.Dir))
		return state.New(store, svc, logger.Discard()), nil, nil
	}
}

func run(t *testing.T, svc *testutil.FakeService, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	var out, errOut bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, nil, "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, nil, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tasker 0.1.0\n" {
		t.Errorf("expected 'tasker 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_Aliases(t *testing.T) {
	for _, alias := range []string{"whoami", "ls"} {
		_, _, code := run(t, testutil.NewFakeService(), alias, "--config", t.TempDir())
		if code == exitcode.UserError {
			t.Errorf("%s: alias not resolved", alias)
		}
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, nil, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsValue(t *testing.T) {
	_, stderr, code := run(t, nil, "login", "--username")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -username\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgs_RequiresLogin(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := t.TempDir()

	_, stderr, code := run(t, svc, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: tasker login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.ListCalls != 0 {
		t.Errorf("expected no fetch, got %d", svc.ListCalls)
	}
}

func TestDispatcher_LoginThenList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("1", "alice", "secret")
	svc.AddTask("a", "Buy milk")
	dir := t.TempDir()

	if _, stderr, code := run(t, svc, "login", "--config", dir, "-u", "alice", "-p", "secret"); code != exitcode.Success {
		t.Fatalf("login: exit %d, stderr %q", code, stderr)
	}

	stdout, stderr, code := run(t, svc, "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("list: exit %d, stderr %q", code, stderr)
	}
	if stdout != "   1  [pending] Buy milk  (No due date)\n" {
		t.Errorf("unexpected list output %q", stdout)
	}

	if _, _, code := run(t, svc, "logout", "--config", dir, "--quiet"); code != exitcode.Success {
		t.Fatalf("logout: exit %d", code)
	}
	if _, _, code := run(t, svc, "list", "--config", dir); code != exitcode.AuthError {
		t.Errorf("expected list to need login again, got exit %d", code)
	}
}

func TestDispatcher_SessionRejected_ClearsStore(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := t.TempDir()
	store := session.NewStore(session.NewFileKV(dir))
	if err := store.Save("stale", service.User{ID: "1", Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	svc.ListErr = service.ErrUnauthorized

	_, _, code := run(t, svc, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if store.IsActive() {
		t.Error("expected session removed after rejection")
	}
}
