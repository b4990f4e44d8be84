// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Flow identifies which orchestration produced a run.
type Flow string

const (
	FlowCompile  Flow = "compile"
	FlowAssemble Flow = "assemble"
)

// StageStatus indicates how a stage ended.
type StageStatus string

const (
	StageDone    StageStatus = "done"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// StageRecord describes one executed (or skipped) stage of a run.
type StageRecord struct {
	// Name is the stage identifier (e.g. "convert-image", "pass-1").
	Name string `json:"name" yaml:"name"`

	// Tool is the external tool or builtin that served the stage.
	Tool string `json:"tool,omitempty" yaml:"tool,omitempty"`

	// Artifact is the path the stage produced.
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`

	// LogPath is the stage's diagnostic log, when it has one.
	LogPath string `json:"log,omitempty" yaml:"log,omitempty"`

	Status   StageStatus   `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Error is the failure message for failed stages.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunRecord summarizes one invocation of a flow.
type RunRecord struct {
	ID         string        `json:"id" yaml:"id"`
	Flow       Flow          `json:"flow" yaml:"flow"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Stages     []StageRecord `json:"stages" yaml:"stages"`

	// FailedStage names the first stage that failed; empty on success.
	FailedStage string `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`

	// Artifact is the run's final output.
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`

	// Pages is the page count of Artifact when it could be read.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// Succeeded reports whether every stage of the run completed.
func (r RunRecord) Succeeded() bool {
	return r.FailedStage == ""
}

// Duration returns the wall time of the run.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
