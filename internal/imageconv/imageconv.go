// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imageconv converts a raster image into a single-page PDF using
// whichever converter is available.
package imageconv

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/reportbuild/internal/toolchain"
)

const (
	// Capability names the probe in missing-tool errors.
	Capability = "image conversion"
	// Remedy is printed when no converter is installed.
	Remedy = "install ImageMagick (brew install imagemagick / apt install imagemagick) or run on macOS where sips is built in"

	nameSips    = "sips"
	nameConvert = "convert"
	nameBuiltin = "builtin"
)

// Converter turns the image at src into a PDF at dst.
type Converter interface {
	toolchain.Candidate
	Convert(ctx context.Context, src, dst string) error
}

// commandConverter runs an external converter binary. Both supported tools
// take a source and destination and differ only in argument layout.
type commandConverter struct {
	bin     string
	args    func(src, dst string) []string
	exec    toolchain.Executor
	timeout time.Duration
}

func (c *commandConverter) Name() string { return c.bin }

func (c *commandConverter) Available(ctx context.Context) bool {
	return toolchain.Binary{Bin: c.bin, Exec: c.exec}.Available(ctx)
}

func (c *commandConverter) Convert(ctx context.Context, src, dst string) error {
	ctx, cancel := toolchain.WithTimeout(ctx, c.timeout)
	defer cancel()
	return toolchain.RunCaptured(ctx, c.exec, c.bin, toolchain.Command{Name: c.bin, Args: c.args(src, dst)})
}

func newSips(exec toolchain.Executor, timeout time.Duration) *commandConverter {
	return &commandConverter{
		bin:     nameSips,
		args:    func(src, dst string) []string { return []string{"-s", "format", "pdf", src, "--out", dst} },
		exec:    exec,
		timeout: timeout,
	}
}

// newImageMagick stretches the image over a full US Letter page at 72 dpi
// with no margins.
func newImageMagick(exec toolchain.Executor, timeout time.Duration) *commandConverter {
	return &commandConverter{
		bin: nameConvert,
		args: func(src, dst string) []string {
			return []string{src, "-resize", "612x792!", "-units", "PixelsPerInch", "-density", "72", "-page", "Letter", dst}
		},
		exec:    exec,
		timeout: timeout,
	}
}

// Candidates maps converter names, in probe order, to converters.
func Candidates(names []string, exec toolchain.Executor, timeout time.Duration) ([]Converter, error) {
	out := make([]Converter, 0, len(names))
	for _, n := range names {
		switch n {
		case nameSips:
			out = append(out, newSips(exec, timeout))
		case nameConvert:
			out = append(out, newImageMagick(exec, timeout))
		case nameBuiltin:
			out = append(out, Builtin{})
		default:
			return nil, fmt.Errorf("unknown image converter %q: use sips, convert or builtin", n)
		}
	}
	return out, nil
}

// Select probes the configured converters in order.
func Select(ctx context.Context, names []string, exec toolchain.Executor, timeout time.Duration) (Converter, error) {
	cands, err := Candidates(names, exec, timeout)
	if err != nil {
		return nil, err
	}
	return toolchain.Select(ctx, Capability, Remedy, cands)
}
