// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"context"
	"fmt"
	"log/slog"
)

// Candidate is one interchangeable implementation of a capability.
type Candidate interface {
	// Name returns the tool name shown in progress lines and errors.
	Name() string

	// Available reports whether the tool can be used on this machine.
	// Probes that run a process must honour ctx.
	Available(ctx context.Context) bool
}

// Select returns the first available candidate in order. When none is
// available it returns a *MissingToolError listing every candidate tried.
// If ctx ends during probing, its error is returned instead.
func Select[T Candidate](ctx context.Context, capability, remedy string, candidates []T) (T, error) {
	var zero T
	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Available(ctx) {
			slog.Debug("selected tool", "capability", capability, "tool", c.Name())
			return c, nil
		}
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("probing %s with %s: %w", capability, c.Name(), err)
		}
		tried = append(tried, c.Name())
	}
	return zero, &MissingToolError{Capability: capability, Tried: tried, Remedy: remedy}
}

// Binary is a Candidate backed by an executable looked up on PATH.
type Binary struct {
	Bin  string
	Exec Executor
}

func (b Binary) Name() string { return b.Bin }

func (b Binary) Available(context.Context) bool {
	_, err := b.Exec.LookPath(b.Bin)
	return err == nil
}
