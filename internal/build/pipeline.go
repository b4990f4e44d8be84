// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package build sequences the external tools that turn TeX sources and a
// cover image into the final report. Stages run strictly in order; the
// first failure aborts the run and leaves every partial artifact on disk.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/reportbuild/internal/metrics"
	"github.com/pdiddy/reportbuild/internal/pdfmerge"
	"github.com/pdiddy/reportbuild/pkg/types"
)

// ErrStageFailed matches any *StageError.
var ErrStageFailed = errors.New("build stage failed")

// StageError reports which stage aborted a run.
type StageError struct {
	Stage   string
	LogPath string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool { return target == ErrStageFailed }

// StageOutcome describes what a stage produced. LogPath is filled in even
// when the stage fails, so the failure report can point at it.
type StageOutcome struct {
	Artifact string
	Tool     string
	LogPath  string
}

// Stage is one unit of work in a pipeline.
type Stage struct {
	Name string
	// Intent is announced before the stage runs, e.g. "Compiling main report".
	Intent string
	// Failure is printed when the stage fails, e.g. "Failed to compile report".
	Failure string
	Run     func(ctx context.Context) (StageOutcome, error)
}

// RunSink persists finished runs. *history.Store implements it.
type RunSink interface {
	Record(ctx context.Context, run types.RunRecord) (string, error)
}

// textfileWriter is implemented by recorders that can dump their state,
// such as *metrics.PrometheusRecorder.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// Pipeline runs stages in order and reports progress to Out.
type Pipeline struct {
	Out      io.Writer
	BuildDir string
	Recorder metrics.Recorder
	History  RunSink
	// MetricsFile, when set and the recorder supports it, receives a
	// Prometheus textfile after every run.
	MetricsFile string
}

// Run executes stages until one fails. Stages after the failure are
// recorded as skipped and never started.
func (p *Pipeline) Run(ctx context.Context, flow types.Flow, stages []Stage) (types.RunRecord, error) {
	rec := p.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	run := types.RunRecord{ID: uuid.NewString(), Flow: flow, StartedAt: time.Now()}
	var runErr error

	for i, st := range stages {
		if runErr != nil {
			run.Stages = append(run.Stages, types.StageRecord{Name: st.Name, Status: types.StageSkipped})
			continue
		}

		if i > 0 {
			fmt.Fprintln(p.Out)
		}
		fmt.Fprintf(p.Out, "Step %d: %s...\n", i+1, st.Intent)

		start := time.Now()
		var (
			outcome StageOutcome
			err     error
		)
		if err = ctx.Err(); err == nil {
			outcome, err = st.Run(ctx)
		}
		elapsed := time.Since(start)
		rec.ObserveStageDuration(st.Name, elapsed)

		sr := types.StageRecord{
			Name:     st.Name,
			Tool:     outcome.Tool,
			Artifact: outcome.Artifact,
			LogPath:  outcome.LogPath,
			Duration: elapsed,
		}

		if err != nil {
			sr.Status = types.StageFailed
			sr.Error = err.Error()
			rec.IncStageResult(st.Name, resultLabel(err))

			fmt.Fprintf(p.Out, "  %s\n", st.Failure)
			if outcome.LogPath != "" {
				fmt.Fprintf(p.Out, "  See log: %s\n", outcome.LogPath)
			}
			slog.Debug("stage failed", "stage", st.Name, "error", err)

			run.FailedStage = st.Name
			runErr = &StageError{Stage: st.Name, LogPath: outcome.LogPath, Err: err}
		} else {
			sr.Status = types.StageDone
			rec.IncStageResult(st.Name, metrics.ResultSuccess)
			fmt.Fprintf(p.Out, "  Created %s\n", outcome.Artifact)
			run.Artifact = outcome.Artifact
		}
		run.Stages = append(run.Stages, sr)
	}

	run.FinishedAt = time.Now()
	if runErr != nil {
		run.Artifact = ""
		rec.IncBuildOutcome(string(flow), resultLabel(runErr))
	} else {
		rec.IncBuildOutcome(string(flow), metrics.ResultSuccess)
		fmt.Fprintf(p.Out, "\nDone! Final report is at: %s\n", run.Artifact)
	}
	rec.ObserveBuildDuration(string(flow), run.Duration())

	p.finish(ctx, &run)
	return run, runErr
}

// finish writes the manifest, history row and metrics file. None of these
// may change the outcome of the run, so failures are only logged.
func (p *Pipeline) finish(ctx context.Context, run *types.RunRecord) {
	if run.Artifact != "" {
		if n, err := pdfmerge.PageCount(run.Artifact); err == nil {
			run.Pages = n
		} else {
			slog.Debug("page count unavailable", "artifact", run.Artifact, "error", err)
		}
	}

	if p.BuildDir != "" {
		if err := WriteManifest(filepath.Join(p.BuildDir, ManifestFile), *run); err != nil {
			slog.Warn("manifest not written", "error", err)
		}
	}

	if p.History != nil {
		// A cancelled run is still recorded.
		if _, err := p.History.Record(context.WithoutCancel(ctx), *run); err != nil {
			slog.Warn("run history not recorded", "error", err)
		}
	}

	if p.MetricsFile != "" {
		if tw, ok := p.Recorder.(textfileWriter); ok {
			if err := tw.WriteTextfile(p.MetricsFile); err != nil {
				slog.Warn("metrics not written", "error", err)
			}
		}
	}
}

func resultLabel(err error) metrics.ResultLabel {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.ResultCanceled
	}
	return metrics.ResultFailed
}

// ensureDir creates dir and its parents; existing directories are fine.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating build directory %s: %w", dir, err)
	}
	return nil
}
