// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain runs external tools and selects among interchangeable
// implementations of a capability (image conversion, PDF merging).
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Command describes one blocking invocation of an external tool.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Executor abstracts process execution for testing.
type Executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, cmd Command) error
}

// OSExecutor is the production executor backed by os/exec.
type OSExecutor struct{}

func (OSExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OSExecutor) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	slog.Debug("running tool", "cmd", c.String(), "dir", c.Dir)
	return cmd.Run()
}

// Default is the shared production executor.
var Default Executor = OSExecutor{}

// WithTimeout bounds ctx by d. A zero or negative d leaves ctx unbounded.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// RunCaptured runs cmd with stdout and stderr collected into one buffer.
// On failure the captured output is attached to the returned *ExecError.
func RunCaptured(ctx context.Context, ex Executor, tool string, cmd Command) error {
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := ex.Run(ctx, cmd); err != nil {
		return &ExecError{Tool: tool, Output: out.String(), ExitCode: ExitCode(err), Err: err}
	}
	return nil
}

// ExitCode extracts the process exit status, or -1 when the process never
// produced one (it failed to start or was killed).
func ExitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
