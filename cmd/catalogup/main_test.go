package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/catalogup/internal/engine"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogup.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestUpgradeLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ambari.db")
	cfg := writeConfig(t, "database:\n  driver: sqlite\n  path: "+db+"\nlogging:\n  level: warn\n")

	_, err := runCLI(t, "--config", cfg, "upgrade")
	if !errors.Is(err, engine.ErrNoVersionStamp) {
		t.Fatalf("expected ErrNoVersionStamp on an unstamped database, got %v", err)
	}

	out, err := runCLI(t, "--config", cfg, "upgrade", "--dry-run", "--assume-version", "2.6.0")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	for _, want := range []string{"2.7.0", "2.7.1", "2.7.2", "Target:    2.7.2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dry run output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "--config", cfg, "upgrade", "--to", "2.7.1", "--assume-version", "2.6.0")
	if err != nil {
		t.Fatalf("upgrade to 2.7.1: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2.6.0 -> 2.7.1") {
		t.Fatalf("unexpected upgrade output:\n%s", out)
	}

	out, err = runCLI(t, "--config", cfg, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Installed: 2.7.1") || !strings.Contains(out, "[2.7.2]") {
		t.Fatalf("unexpected status:\n%s", out)
	}

	out, err = runCLI(t, "--config", cfg, "upgrade")
	if err != nil {
		t.Fatalf("upgrade to latest: %v", err)
	}
	if !strings.Contains(out, "2.7.1 -> 2.7.2") {
		t.Fatalf("unexpected upgrade output:\n%s", out)
	}

	out, err = runCLI(t, "--config", cfg, "upgrade")
	if err != nil || !strings.Contains(out, "Schema already at 2.7.2") {
		t.Fatalf("rerun: %v\n%s", err, out)
	}

	out, err = runCLI(t, "--config", cfg, "history", "--limit", "2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.Count(out, "2.7.2") != 2 || !strings.Contains(out, "VERSION") {
		t.Fatalf("unexpected history:\n%s", out)
	}
}

func TestUpgrade_UnknownTarget(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ambari.db")
	_, err := runCLI(t, "--driver", "sqlite", "--dsn", "file:"+db, "--config", "", "upgrade", "--to", "3.0.0", "--assume-version", "2.7.0")
	if err == nil || !strings.Contains(err.Error(), "no upgrade path") {
		t.Fatalf("expected no upgrade path error, got %v", err)
	}
}

func TestCatalogsCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ambari.db")
	out, err := runCLI(t, "--dsn", "file:"+db, "--config", "", "catalogs")
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	for _, want := range []string{"2.7.0", "2.7.1", "2.7.2", "ddl,dml", "rename ldap collision behavior property"} {
		if !strings.Contains(out, want) {
			t.Fatalf("catalogs output missing %q:\n%s", want, out)
		}
	}
}

func TestEnvOverridesDSN(t *testing.T) {
	db := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("CATALOGUP_DSN", "file:"+db)
	t.Setenv("CATALOGUP_CONFIG", "")
	if _, err := runCLI(t, "status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("database from env not created: %v", err)
	}
}

type recordingExit struct {
	code int
}

func (r *recordingExit) Exit(code int) { r.code = code }

func (r *recordingExit) LogFatalError(_ error, _ string, _ ...any) { r.Exit(1) }

func TestExitHandlerIsReplaceable(t *testing.T) {
	prev := exitHandler
	rec := &recordingExit{}
	exitHandler = rec
	defer func() { exitHandler = prev }()

	exitHandler.LogFatalError(errors.New("boom"), "command execution failed")
	if rec.code != 1 {
		t.Fatalf("exit code = %d, want 1", rec.code)
	}
}
