// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs a tool inside a Docker or Podman container so a
// report can be built on machines without a local TeX installation.
package container

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/reportbuild/internal/toolchain"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// Capability names the container runtime in probe errors.
	Capability = "container runtime"
	// Remedy is printed when neither runtime is available.
	Remedy = "install Docker or Podman, or unset engine_image to use a local TeX engine"
)

// Runtime is one container binary. Docker and Podman share the same logic;
// they differ only in binary name and the subcommand used to check image
// existence.
type Runtime struct {
	Bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          toolchain.Executor
}

// Docker returns the docker runtime.
func Docker(exec toolchain.Executor) *Runtime {
	return &Runtime{Bin: binDocker, imageCheckCmd: []string{"image", "inspect"}, exec: exec}
}

// Podman returns the podman runtime.
func Podman(exec toolchain.Executor) *Runtime {
	return &Runtime{Bin: binPodman, imageCheckCmd: []string{"image", "exists"}, exec: exec}
}

func (r *Runtime) Name() string { return r.Bin }

// Available reports whether the runtime binary exists on PATH and responds
// to an info command.
func (r *Runtime) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.Bin); err != nil {
		return false
	}
	return r.exec.Run(ctx, toolchain.Command{Name: r.Bin, Args: []string{"info"}}) == nil
}

// ImageExists checks whether the named image exists locally.
func (r *Runtime) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string(nil), r.imageCheckCmd...), image)
	if err := r.exec.Run(ctx, toolchain.Command{Name: r.Bin, Args: args}); err != nil {
		return fmt.Errorf("image %s not found in %s (pull it first): %w", image, r.Bin, err)
	}
	return nil
}

// Wrap rewrites cmd to run inside image. Each mount is bound at the same
// path inside the container so absolute paths in cmd stay valid; mounts
// nested under an earlier one are skipped.
func (r *Runtime) Wrap(image string, cmd toolchain.Command, mounts ...string) toolchain.Command {
	args := []string{"run", "--rm"}
	for _, m := range dedupeMounts(mounts) {
		args = append(args, "-v", m+":"+m)
	}
	if cmd.Dir != "" {
		args = append(args, "-w", cmd.Dir)
	}
	args = append(args, image, cmd.Name)
	args = append(args, cmd.Args...)

	return toolchain.Command{
		Name:   r.Bin,
		Args:   args,
		Dir:    cmd.Dir,
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}
}

func dedupeMounts(mounts []string) []string {
	var kept []string
outer:
	for _, m := range mounts {
		m = filepath.Clean(m)
		for _, k := range kept {
			if m == k || strings.HasPrefix(m, k+string(filepath.Separator)) {
				continue outer
			}
		}
		kept = append(kept, m)
	}
	return kept
}

// Detect tries docker first and falls back to podman. It returns a
// *toolchain.MissingToolError when neither is operational, or ctx's error
// when ctx ends while a runtime is being probed.
func Detect(ctx context.Context, exec toolchain.Executor) (*Runtime, error) {
	return toolchain.Select(ctx, Capability, Remedy, []*Runtime{Docker(exec), Podman(exec)})
}
