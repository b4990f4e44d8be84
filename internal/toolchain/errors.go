// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingTool matches any *MissingToolError.
	ErrMissingTool = errors.New("required tool not available")

	// ErrToolFailed matches any *ExecError.
	ErrToolFailed = errors.New("external tool failed")
)

// MissingToolError reports that no candidate for a capability is installed.
type MissingToolError struct {
	Capability string
	Tried      []string
	Remedy     string
}

func (e *MissingToolError) Error() string {
	msg := fmt.Sprintf("no %s tool available: tried %s", e.Capability, strings.Join(e.Tried, ", "))
	if e.Remedy != "" {
		msg += "; " + e.Remedy
	}
	return msg
}

func (e *MissingToolError) Is(target error) bool { return target == ErrMissingTool }

// ExecError reports that an external tool ran and exited unsuccessfully.
type ExecError struct {
	Tool string
	// ExitCode is the process exit status, or -1 when unavailable.
	ExitCode int
	// LogPath points at the file holding the tool's diagnostics, if any.
	LogPath string
	// Output holds captured diagnostics for tools run without a log file.
	Output string
	Err    error
}

func (e *ExecError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", e.Tool)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " with exit code %d", e.ExitCode)
	}
	if e.Err != nil && e.ExitCode < 0 {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.LogPath != "" {
		fmt.Fprintf(&b, " (see %s)", e.LogPath)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, ":\n%s", out)
	}
	return b.String()
}

func (e *ExecError) Unwrap() error { return e.Err }

func (e *ExecError) Is(target error) bool { return target == ErrToolFailed }
