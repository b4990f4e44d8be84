// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfmerge concatenates PDF documents in a fixed order using
// whichever merge tool is available.
package pdfmerge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/reportbuild/internal/toolchain"
)

const (
	// Capability names the probe in missing-tool errors.
	Capability = "PDF merging"
	// Remedy is printed when no merger is installed.
	Remedy = "install poppler for pdfunite (brew install poppler / apt install poppler-utils) or pdftk"

	namePdfunite = "pdfunite"
	namePdftk    = "pdftk"
	nameBuiltin  = "builtin"
)

// ErrNoInputs is returned when Merge is called without input documents.
var ErrNoInputs = errors.New("no input documents to merge")

// Merger writes the concatenation of inputs, in order, to out.
type Merger interface {
	toolchain.Candidate
	Merge(ctx context.Context, inputs []string, out string) error
}

type commandMerger struct {
	bin     string
	args    func(inputs []string, out string) []string
	exec    toolchain.Executor
	timeout time.Duration
}

func (m *commandMerger) Name() string { return m.bin }

func (m *commandMerger) Available(ctx context.Context) bool {
	return toolchain.Binary{Bin: m.bin, Exec: m.exec}.Available(ctx)
}

func (m *commandMerger) Merge(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	ctx, cancel := toolchain.WithTimeout(ctx, m.timeout)
	defer cancel()
	return toolchain.RunCaptured(ctx, m.exec, m.bin, toolchain.Command{Name: m.bin, Args: m.args(inputs, out)})
}

func newPdfunite(exec toolchain.Executor, timeout time.Duration) *commandMerger {
	return &commandMerger{
		bin: namePdfunite,
		args: func(inputs []string, out string) []string {
			args := make([]string, 0, len(inputs)+1)
			args = append(args, inputs...)
			return append(args, out)
		},
		exec:    exec,
		timeout: timeout,
	}
}

func newPdftk(exec toolchain.Executor, timeout time.Duration) *commandMerger {
	return &commandMerger{
		bin: namePdftk,
		args: func(inputs []string, out string) []string {
			args := make([]string, 0, len(inputs)+3)
			args = append(args, inputs...)
			return append(args, "cat", "output", out)
		},
		exec:    exec,
		timeout: timeout,
	}
}

// Candidates maps merger names, in probe order, to mergers.
func Candidates(names []string, exec toolchain.Executor, timeout time.Duration) ([]Merger, error) {
	out := make([]Merger, 0, len(names))
	for _, n := range names {
		switch n {
		case namePdfunite:
			out = append(out, newPdfunite(exec, timeout))
		case namePdftk:
			out = append(out, newPdftk(exec, timeout))
		case nameBuiltin:
			out = append(out, Builtin{})
		default:
			return nil, fmt.Errorf("unknown PDF merger %q: use pdfunite, pdftk or builtin", n)
		}
	}
	return out, nil
}

// Select probes the configured mergers in order.
func Select(ctx context.Context, names []string, exec toolchain.Executor, timeout time.Duration) (Merger, error) {
	cands, err := Candidates(names, exec, timeout)
	if err != nil {
		return nil, err
	}
	return toolchain.Select(ctx, Capability, Remedy, cands)
}
