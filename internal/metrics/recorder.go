// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records stage and build timings. The default NoopRecorder
// discards everything; PrometheusRecorder feeds a registry that can be
// written to a node_exporter textfile.
package metrics

import "time"

// ResultLabel enumerates stage outcomes for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder receives observations from the pipeline runner.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(flow string, d time.Duration)
	IncBuildOutcome(flow string, result ResultLabel)
}

// NoopRecorder is the Recorder used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, ResultLabel)        {}
