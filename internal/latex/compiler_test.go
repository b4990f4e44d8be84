// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/reportbuild/internal/latex"
	"github.com/pdiddy/reportbuild/internal/toolchain"
	"github.com/pdiddy/reportbuild/internal/toolchain/tooltest"
)

func TestCompile_Invocation(t *testing.T) {
	exec := tooltest.New("pdflatex")
	exec.Handle = func(_ int, cmd toolchain.Command) error {
		_, _ = cmd.Stdout.Write([]byte("Output written on report.pdf (3 pages)\n"))
		return nil
	}
	c := latex.NewCompiler("pdflatex", exec)

	dir := t.TempDir()
	src := filepath.Join(dir, "report.tex")
	out := filepath.Join(dir, "build")
	var log bytes.Buffer

	require.NoError(t, c.Compile(context.Background(), src, out, &log))
	require.Len(t, exec.Calls, 1)

	call := exec.Calls[0]
	assert.Equal(t, "pdflatex", call.Name)
	assert.Equal(t, dir, call.Dir, "engine runs from the source directory")
	assert.Equal(t, []string{"-interaction=nonstopmode", "-output-directory", out, "report.tex"}, call.Args)
	assert.Contains(t, log.String(), "Output written on report.pdf")
}

func TestCompile_EngineFailure(t *testing.T) {
	exec := tooltest.New("pdflatex")
	exec.Handle = tooltest.FailOn("pdflatex", errors.New("exit status 1"))
	c := latex.NewCompiler("pdflatex", exec)

	err := c.Compile(context.Background(), "report.tex", t.TempDir(), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, toolchain.ErrToolFailed)
}

func TestCompile_MissingEngine(t *testing.T) {
	exec := tooltest.New()
	c := latex.NewCompiler("xelatex", exec)

	err := c.Compile(context.Background(), "report.tex", t.TempDir(), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, toolchain.ErrMissingTool)
	assert.Contains(t, err.Error(), "xelatex")
	assert.Empty(t, exec.Calls, "missing engine must not be invoked")
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("build", "report.pdf"), latex.OutputPath("/src/report.tex", "build"))
	assert.Equal(t, filepath.Join("out", "code.pdf"), latex.OutputPath("code.tex", "out"))
}

func TestLogName(t *testing.T) {
	assert.Equal(t, "report_compile.log", latex.LogName("/src/report.tex"))
	assert.Equal(t, "code_compile.log", latex.LogName("code.tex"))
}

func TestCompile_InContainer(t *testing.T) {
	exec := tooltest.New("docker")
	c := latex.NewCompiler("pdflatex", exec)
	c.Image = "texlive/texlive:latest"

	dir := t.TempDir()
	src := filepath.Join(dir, "report.tex")
	out := filepath.Join(dir, "build")

	require.NoError(t, c.Compile(context.Background(), src, out, &bytes.Buffer{}))
	require.Len(t, exec.Calls, 3)
	assert.Equal(t, "docker info", exec.Calls[0].String())
	assert.Equal(t, "docker image inspect texlive/texlive:latest", exec.Calls[1].String())

	run := exec.Calls[2]
	assert.Equal(t, "docker", run.Name)
	assert.Equal(t, []string{
		"run", "--rm", "-v", dir + ":" + dir, "-w", dir, "texlive/texlive:latest",
		"pdflatex", "-interaction=nonstopmode", "-output-directory", out, "report.tex",
	}, run.Args)
}

func TestCompile_InContainerWithoutRuntime(t *testing.T) {
	exec := tooltest.New("pdflatex")
	c := latex.NewCompiler("pdflatex", exec)
	c.Image = "texlive/texlive:latest"

	err := c.Compile(context.Background(), "report.tex", t.TempDir(), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, toolchain.ErrMissingTool)
	assert.Contains(t, err.Error(), "docker, podman")
	assert.False(t, c.Available(context.Background()))
}

func TestCompile_TimeoutBoundsContainerProbe(t *testing.T) {
	exec := tooltest.New("docker")
	exec.Hang = map[string]bool{"docker info": true}
	c := latex.NewCompiler("pdflatex", exec)
	c.Image = "texlive/texlive:latest"
	c.Timeout = 50 * time.Millisecond

	start := time.Now()
	err := c.Compile(context.Background(), filepath.Join(t.TempDir(), "report.tex"), t.TempDir(), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Len(t, exec.Calls, 1, "engine never runs after a failed probe")
}
