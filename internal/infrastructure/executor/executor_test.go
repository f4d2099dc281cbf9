package executor

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestExecuteCapturesOutput(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "echo hello; echo oops 1>&2")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Ran || result.ExitCode != 0 {
		t.Errorf("result = %+v", result)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "oops" {
		t.Errorf("Stderr = %q", result.Stderr)
	}
}

func TestExecuteReportsExitCode(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "exit 3")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() error = %v, want *exec.ExitError", err)
	}
	if !result.Ran || result.ExitCode != 3 {
		t.Errorf("result = %+v, want ran with exit 3", result)
	}
}

func TestExecuteWithDir(t *testing.T) {
	dir := t.TempDir()
	result, err := NewLocalExecutor("/bin/sh").WithDir(dir).Execute(context.Background(), "pwd -P")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(result.Stdout), strings.TrimPrefix(dir, "/private")) {
		t.Errorf("pwd = %q, want %q", result.Stdout, dir)
	}
}

func TestResolveShell(t *testing.T) {
	t.Setenv("SHELL", "")
	if got := resolveShell("auto"); got != fallbackShell {
		t.Errorf("resolveShell(auto) = %s, want %s", got, fallbackShell)
	}
	t.Setenv("SHELL", "/bin/bash")
	if got := resolveShell(""); got != "/bin/bash" {
		t.Errorf("resolveShell(\"\") = %s, want /bin/bash", got)
	}
	if got := resolveShell("/usr/bin/zsh"); got != "/usr/bin/zsh" {
		t.Errorf("resolveShell(abs) = %s", got)
	}
	if got := resolveShell("definitely-not-a-shell"); got != fallbackShell {
		t.Errorf("resolveShell(unknown) = %s, want %s", got, fallbackShell)
	}
}
