// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/reportbuild/internal/imageconv"
	"github.com/pdiddy/reportbuild/internal/latex"
	"github.com/pdiddy/reportbuild/internal/metrics"
	"github.com/pdiddy/reportbuild/internal/pdfmerge"
	"github.com/pdiddy/reportbuild/internal/toolchain"
	"github.com/pdiddy/reportbuild/pkg/types"
)

// MetricsFile is the Prometheus textfile name inside the build directory.
const MetricsFile = "metrics.prom"

// Builder runs the compile and assemble flows for one report project.
type Builder struct {
	Config types.BuildConfig
	Out    io.Writer

	// Exec runs external tools; defaults to toolchain.Default.
	Exec toolchain.Executor
	// Recorder receives stage metrics; defaults to metrics.NoopRecorder.
	Recorder metrics.Recorder
	// History records finished runs; nil disables recording.
	History RunSink
}

// New returns a Builder with cfg's defaults applied, writing progress to out.
func New(cfg types.BuildConfig, out io.Writer) *Builder {
	return &Builder{
		Config:   cfg.WithDefaults(),
		Out:      out,
		Exec:     toolchain.Default,
		Recorder: metrics.NoopRecorder{},
	}
}

func (b *Builder) pipeline() *Pipeline {
	p := &Pipeline{
		Out:      b.Out,
		BuildDir: b.Config.BuildPath(),
		Recorder: b.Recorder,
		History:  b.History,
	}
	if b.Config.Metrics {
		p.MetricsFile = filepath.Join(p.BuildDir, MetricsFile)
	}
	return p
}

func (b *Builder) compiler() *latex.Compiler {
	c := latex.NewCompiler(b.Config.Engine, b.Exec)
	c.Timeout = b.Config.Timeout
	c.Image = b.Config.EngineImage
	return c
}

// Compile runs the TeX engine Config.Passes times over Config.ReportSource.
// Every pass runs unconditionally so forward references settle; a failing
// pass stops the run before the next one starts. Engine output from all
// passes goes to <build>/<name>_compile.log.
func (b *Builder) Compile(ctx context.Context) (types.RunRecord, error) {
	cfg := b.Config
	buildDir := cfg.BuildPath()
	if err := ensureDir(buildDir); err != nil {
		return types.RunRecord{}, err
	}

	src := cfg.Resolve(cfg.ReportSource)
	logPath := filepath.Join(buildDir, latex.LogName(src))
	logFile, err := os.Create(logPath)
	if err != nil {
		return types.RunRecord{}, fmt.Errorf("creating log %s: %w", logPath, err)
	}
	defer logFile.Close()

	compiler := b.compiler()
	pdf := latex.OutputPath(src, buildDir)
	name := docName(src)

	stages := make([]Stage, cfg.Passes)
	for i := range stages {
		pass := i + 1
		stages[i] = Stage{
			Name:    fmt.Sprintf("pass-%d", pass),
			Intent:  fmt.Sprintf("Compiling %s with %s (pass %d of %d)", name, cfg.Engine, pass, cfg.Passes),
			Failure: fmt.Sprintf("Failed to compile %s", name),
			Run: func(ctx context.Context) (StageOutcome, error) {
				fmt.Fprintf(logFile, "=== pass %d of %d ===\n", pass, cfg.Passes)
				return compileOutcome(ctx, compiler, src, buildDir, pdf, logPath, logFile)
			},
		}
	}

	return b.pipeline().Run(ctx, types.FlowCompile, stages)
}

// Assemble converts the cover image, compiles the report and the code
// appendix, and concatenates image, report and appendix, in that order, into
// <build>/final_report.pdf.
func (b *Builder) Assemble(ctx context.Context) (types.RunRecord, error) {
	cfg := b.Config
	buildDir := cfg.BuildPath()
	if err := ensureDir(buildDir); err != nil {
		return types.RunRecord{}, err
	}

	image := cfg.Resolve(cfg.Image)
	imagePDF := filepath.Join(buildDir, types.ImagePDF)
	reportSrc := cfg.Resolve(cfg.ReportSource)
	reportPDF := latex.OutputPath(reportSrc, buildDir)
	appendixSrc := cfg.Resolve(cfg.AppendixSource)
	appendixPDF := latex.OutputPath(appendixSrc, buildDir)
	finalPDF := filepath.Join(buildDir, types.FinalPDF)

	compiler := b.compiler()

	stages := []Stage{
		{
			Name:    "convert-image",
			Intent:  "Converting image to PDF",
			Failure: "Failed to convert image",
			Run: func(ctx context.Context) (StageOutcome, error) {
				if _, err := os.Stat(image); err != nil {
					return StageOutcome{}, fmt.Errorf("image not found at %s: %w", image, err)
				}
				conv, err := imageconv.Select(ctx, cfg.ImageConverters, b.Exec, cfg.Timeout)
				if err != nil {
					return StageOutcome{}, err
				}
				out := StageOutcome{Artifact: imagePDF, Tool: conv.Name()}
				return out, conv.Convert(ctx, image, imagePDF)
			},
		},
		b.compileStage("compile-report", "Compiling main report", "Failed to compile report", compiler, reportSrc, reportPDF, buildDir),
		b.compileStage("compile-appendix", "Compiling code appendix", "Failed to compile code appendix", compiler, appendixSrc, appendixPDF, buildDir),
		{
			Name:    "merge",
			Intent:  "Assembling final PDF",
			Failure: "Failed to assemble final PDF",
			Run: func(ctx context.Context) (StageOutcome, error) {
				m, err := pdfmerge.Select(ctx, cfg.Mergers, b.Exec, cfg.Timeout)
				if err != nil {
					return StageOutcome{}, err
				}
				out := StageOutcome{Artifact: finalPDF, Tool: m.Name()}
				return out, m.Merge(ctx, []string{imagePDF, reportPDF, appendixPDF}, finalPDF)
			},
		},
	}

	return b.pipeline().Run(ctx, types.FlowAssemble, stages)
}

// compileStage builds a single-pass compilation stage with its own log.
func (b *Builder) compileStage(name, intent, failure string, compiler *latex.Compiler, src, pdf, buildDir string) Stage {
	return Stage{
		Name:    name,
		Intent:  intent,
		Failure: failure,
		Run: func(ctx context.Context) (StageOutcome, error) {
			logPath := filepath.Join(buildDir, latex.LogName(src))
			logFile, err := os.Create(logPath)
			if err != nil {
				return StageOutcome{}, fmt.Errorf("creating log %s: %w", logPath, err)
			}
			defer logFile.Close()
			return compileOutcome(ctx, compiler, src, buildDir, pdf, logPath, logFile)
		},
	}
}

func compileOutcome(ctx context.Context, c *latex.Compiler, src, buildDir, pdf, logPath string, log io.Writer) (StageOutcome, error) {
	out := StageOutcome{Artifact: pdf, Tool: c.Name(), LogPath: logPath}
	if _, err := os.Stat(src); err != nil {
		out.LogPath = ""
		return out, fmt.Errorf("source not found at %s: %w", src, err)
	}
	if err := c.Compile(ctx, src, buildDir, log); err != nil {
		var ee *toolchain.ExecError
		if errors.As(err, &ee) {
			ee.LogPath = logPath
		} else {
			out.LogPath = ""
		}
		return out, err
	}
	return out, nil
}

func docName(src string) string {
	return strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
}
