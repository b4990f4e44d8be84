// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/reportbuild/pkg/types"
)

func sampleRun(started time.Time, failed string) types.RunRecord {
	run := types.RunRecord{
		Flow:       types.FlowAssemble,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Stages: []types.StageRecord{
			{Name: "convert-image", Tool: "sips", Artifact: "build/image.pdf", Status: types.StageDone, Duration: 200 * time.Millisecond},
			{Name: "compile-report", Tool: "pdflatex", Artifact: "build/report.pdf", LogPath: "build/report_compile.log", Status: types.StageDone, Duration: 2 * time.Second},
		},
		FailedStage: failed,
	}
	if failed == "" {
		run.Artifact = "build/final_report.pdf"
		run.Pages = 12
	}
	return run
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, DBFile))
	assert.NoError(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	firstID, err := s.Record(ctx, sampleRun(base, ""))
	require.NoError(t, err)
	assert.NotEmpty(t, firstID)

	_, err = s.Record(ctx, sampleRun(base.Add(time.Hour), "compile-report"))
	require.NoError(t, err)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	newest := runs[0]
	assert.Equal(t, "compile-report", newest.FailedStage)
	assert.False(t, newest.Succeeded())

	oldest := runs[1]
	assert.Equal(t, firstID, oldest.ID)
	assert.True(t, oldest.Succeeded())
	assert.Equal(t, types.FlowAssemble, oldest.Flow)
	assert.Equal(t, "build/final_report.pdf", oldest.Artifact)
	assert.Equal(t, 12, oldest.Pages)
	assert.Equal(t, 3*time.Second, oldest.Duration())

	require.Len(t, oldest.Stages, 2)
	assert.Equal(t, "convert-image", oldest.Stages[0].Name)
	assert.Equal(t, "compile-report", oldest.Stages[1].Name)
	assert.Equal(t, "build/report_compile.log", oldest.Stages[1].LogPath)
	assert.Equal(t, 2*time.Second, oldest.Stages[1].Duration)
}

func TestRecent_Limit(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, sampleRun(base.Add(time.Duration(i)*time.Minute), ""))
		require.NoError(t, err)
	}

	runs, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[2].StartedAt), "newest first")
}

func TestRecord_KeepsGivenID(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	run := sampleRun(time.Now(), "")
	run.ID = "fixed-id"
	id, err := s.Record(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestReopen_PersistsRuns(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), sampleRun(time.Now(), ""))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()
	runs, err := s2.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecent_OrdersSubsecondStarts(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, started := range []time.Time{base, base.Add(500 * time.Millisecond), base.Add(1500 * time.Millisecond)} {
		run := sampleRun(started, "")
		run.ID = started.Format("15:04:05.000")
		_, err := s.Record(ctx, run)
		require.NoError(t, err)
	}

	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"12:00:01.500", "12:00:00.500", "12:00:00.000"},
		[]string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.True(t, runs[2].StartedAt.Equal(base))
}
