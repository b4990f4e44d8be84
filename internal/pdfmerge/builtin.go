// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfmerge

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Builtin merges in-process with pdfcpu. It needs no external binary and
// is only used when listed in the merger order.
type Builtin struct{}

func (Builtin) Name() string { return nameBuiltin }

func (Builtin) Available(context.Context) bool { return true }

func (Builtin) Merge(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.MergeCreateFile(inputs, out, false, nil); err != nil {
		return fmt.Errorf("merging into %s: %w", out, err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}
