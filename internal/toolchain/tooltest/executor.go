// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tooltest provides a recording fake of toolchain.Executor.
package tooltest

import (
	"context"
	"errors"

	"github.com/pdiddy/reportbuild/internal/toolchain"
)

// Executor records every command and answers LookPath from Installed.
// Handle, when set, decides the outcome of each Run; its first argument is
// the zero-based index of the call. Commands whose String() is in Hang
// block until their context ends.
type Executor struct {
	Installed map[string]bool
	Handle    func(call int, cmd toolchain.Command) error
	Hang      map[string]bool
	Calls     []toolchain.Command
}

// New returns an Executor with the given binaries installed.
func New(installed ...string) *Executor {
	e := &Executor{Installed: make(map[string]bool)}
	for _, bin := range installed {
		e.Installed[bin] = true
	}
	return e
}

func (e *Executor) LookPath(file string) (string, error) {
	if e.Installed[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH: " + file)
}

func (e *Executor) Run(ctx context.Context, cmd toolchain.Command) error {
	e.Calls = append(e.Calls, cmd)
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Hang[cmd.String()] {
		<-ctx.Done()
		return ctx.Err()
	}
	if e.Handle != nil {
		return e.Handle(len(e.Calls)-1, cmd)
	}
	return nil
}

// Names returns the binaries run, in call order.
func (e *Executor) Names() []string {
	names := make([]string, len(e.Calls))
	for i, c := range e.Calls {
		names[i] = c.Name
	}
	return names
}

// FailOn returns a Handle that fails every call to bin with err and lets
// all other calls succeed.
func FailOn(bin string, err error) func(int, toolchain.Command) error {
	return func(_ int, cmd toolchain.Command) error {
		if cmd.Name == bin {
			return err
		}
		return nil
	}
}
