// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package latex drives an external TeX engine.
package latex

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/reportbuild/internal/container"
	"github.com/pdiddy/reportbuild/internal/toolchain"
)

const remedy = "install a TeX distribution (TeX Live, MacTeX or MiKTeX)"

// Compiler runs a TeX engine in non-interactive mode.
type Compiler struct {
	// Engine is the engine binary, e.g. "pdflatex".
	Engine string
	// Timeout bounds each pass, container probing included. Zero means no
	// limit.
	Timeout time.Duration
	// Image, when set, runs the engine inside this container image via
	// docker or podman instead of from PATH.
	Image string

	exec toolchain.Executor
}

// NewCompiler returns a Compiler for engine using the given executor.
func NewCompiler(engine string, exec toolchain.Executor) *Compiler {
	return &Compiler{Engine: engine, exec: exec}
}

func (c *Compiler) Name() string { return c.Engine }

// Available reports whether the engine is on PATH, or with Image set,
// whether a container runtime is.
func (c *Compiler) Available(ctx context.Context) bool {
	if c.Image != "" {
		_, err := container.Detect(ctx, c.exec)
		return err == nil
	}
	return toolchain.Binary{Bin: c.Engine, Exec: c.exec}.Available(ctx)
}

// Args returns the engine arguments for compiling src into outDir.
func (c *Compiler) Args(src, outDir string) []string {
	return []string{
		"-interaction=nonstopmode",
		"-output-directory", outDir,
		filepath.Base(src),
	}
}

// Compile runs one engine pass over src, writing engine output to log.
// The engine runs from the source's directory so relative \input and
// \includegraphics paths resolve as they do when compiling by hand.
func (c *Compiler) Compile(ctx context.Context, src, outDir string, log io.Writer) error {
	ctx, cancel := toolchain.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var rt *container.Runtime
	if c.Image != "" {
		r, err := container.Detect(ctx, c.exec)
		if err != nil {
			return err
		}
		rt = r
	} else if !c.Available(ctx) {
		return &toolchain.MissingToolError{Capability: "TeX", Tried: []string{c.Engine}, Remedy: remedy}
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolving output directory %s: %w", outDir, err)
	}
	srcDir, err := filepath.Abs(filepath.Dir(src))
	if err != nil {
		return fmt.Errorf("resolving source directory for %s: %w", src, err)
	}

	cmd := toolchain.Command{
		Name:   c.Engine,
		Args:   c.Args(src, absOut),
		Dir:    srcDir,
		Stdout: log,
		Stderr: log,
	}
	if rt != nil {
		if err := rt.ImageExists(ctx, c.Image); err != nil {
			return err
		}
		cmd = rt.Wrap(c.Image, cmd, srcDir, absOut)
	}
	if err := c.exec.Run(ctx, cmd); err != nil {
		return &toolchain.ExecError{Tool: c.Engine, ExitCode: toolchain.ExitCode(err), Err: err}
	}
	return nil
}

// OutputPath returns where the engine writes the PDF for src.
func OutputPath(src, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, base+".pdf")
}

// LogName returns the stage log file name for src, e.g. "report_compile.log".
// The engine writes its own "<base>.log" next to the PDF, so the stage log
// uses a distinct name.
func LogName(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return base + "_compile.log"
}
