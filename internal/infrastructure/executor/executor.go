package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

const fallbackShell = "/bin/sh"

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	shell string
	dir   string
}

// NewLocalExecutor builds a new executor. "auto" or an empty shell resolves to
// $SHELL and then /bin/sh. Bare names like "zsh" are looked up on PATH.
func NewLocalExecutor(shell string) *LocalExecutor {
	return &LocalExecutor{shell: resolveShell(shell)}
}

// WithDir returns a copy of the executor that runs commands inside dir.
func (e *LocalExecutor) WithDir(dir string) *LocalExecutor {
	clone := *e
	clone.dir = dir
	return &clone
}

// Shell reports the resolved shell binary.
func (e *LocalExecutor) Shell() string {
	return e.shell
}

// Execute implements ports.CommandExecutor. A non-zero exit is reported both in
// the result and as an error.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", command)
	c.Dir = e.dir
	c.Stdin = os.Stdin
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	result := domain.ExecutionResult{
		Ran:        true,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Err = err
		return result, err
	}
	if err != nil {
		result.Ran = false
		result.ExitCode = -1
		result.Err = err
		return result, err
	}
	return result, nil
}

func resolveShell(shell string) string {
	shell = strings.TrimSpace(shell)
	if shell == "" || strings.EqualFold(shell, "auto") {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		return fallbackShell
	}
	if strings.ContainsRune(shell, os.PathSeparator) {
		return shell
	}
	if path, err := exec.LookPath(shell); err == nil {
		return path
	}
	return fallbackShell
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
