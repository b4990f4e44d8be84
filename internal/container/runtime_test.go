// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/reportbuild/internal/toolchain"
	"github.com/pdiddy/reportbuild/internal/toolchain/tooltest"
)

// runnable returns a Handle that succeeds only for the listed command lines.
func runnable(lines ...string) func(int, toolchain.Command) error {
	ok := make(map[string]bool, len(lines))
	for _, l := range lines {
		ok[l] = true
	}
	return func(_ int, cmd toolchain.Command) error {
		if ok[cmd.String()] {
			return nil
		}
		return errors.New("command failed: " + cmd.String())
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		runnable  []string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "docker available",
			installed: []string{"docker"},
			runnable:  []string{"docker info"},
			wantName:  "docker",
		},
		{
			name:      "podman fallback when docker missing",
			installed: []string{"podman"},
			runnable:  []string{"podman info"},
			wantName:  "podman",
		},
		{
			name:    "neither available",
			wantErr: true,
		},
		{
			name:      "docker on PATH but info fails, podman works",
			installed: []string{"docker", "podman"},
			runnable:  []string{"podman info"},
			wantName:  "podman",
		},
		{
			name:      "both available, docker preferred",
			installed: []string{"docker", "podman"},
			runnable:  []string{"docker info", "podman info"},
			wantName:  "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := tooltest.New(tt.installed...)
			exec.Handle = runnable(tt.runnable...)

			rt, err := Detect(context.Background(), exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, toolchain.ErrMissingTool)
				assert.Contains(t, err.Error(), "docker, podman")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		rt      func(toolchain.Executor) *Runtime
		cmds    []string
		wantErr bool
	}{
		{
			name: "docker image exists",
			rt:   Docker,
			cmds: []string{"docker image inspect texlive/texlive:latest"},
		},
		{
			name:    "docker image not found",
			rt:      Docker,
			wantErr: true,
		},
		{
			name: "podman image exists",
			rt:   Podman,
			cmds: []string{"podman image exists texlive/texlive:latest"},
		},
		{
			name:    "podman image not found",
			rt:      Podman,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := tooltest.New()
			exec.Handle = runnable(tt.cmds...)

			err := tt.rt(exec).ImageExists(context.Background(), "texlive/texlive:latest")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "texlive/texlive:latest")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWrap(t *testing.T) {
	var out bytes.Buffer
	cmd := toolchain.Command{
		Name:   "pdflatex",
		Args:   []string{"-interaction=nonstopmode", "-output-directory", "/p/report/build", "report.tex"},
		Dir:    "/p/report",
		Stdout: &out,
		Stderr: &out,
	}

	wrapped := Docker(tooltest.New()).Wrap("texlive/texlive:latest", cmd, "/p/report", "/p/report/build")

	assert.Equal(t, "docker", wrapped.Name)
	assert.Equal(t, "/p/report", wrapped.Dir)
	assert.Same(t, &out, wrapped.Stdout.(*bytes.Buffer))
	assert.Equal(t,
		"docker run --rm -v /p/report:/p/report -w /p/report texlive/texlive:latest pdflatex -interaction=nonstopmode -output-directory /p/report/build report.tex",
		wrapped.String())
}

func TestWrap_SeparateMounts(t *testing.T) {
	cmd := toolchain.Command{Name: "pdflatex", Args: []string{"report.tex"}, Dir: "/p/report"}
	wrapped := Podman(tooltest.New()).Wrap("tex", cmd, "/p/report", "/tmp/out", "/p/report")

	assert.Equal(t, 2, strings.Count(wrapped.String(), " -v "))
	assert.Contains(t, wrapped.String(), "-v /tmp/out:/tmp/out")
}

func TestDetect_UnresponsiveDaemon(t *testing.T) {
	exec := tooltest.New("docker", "podman")
	exec.Hang = map[string]bool{"docker info": true}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Detect(ctx, exec)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"docker"}, exec.Names(), "podman is not probed once the deadline has passed")
}
