// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reportbuild/internal/build"
	"github.com/pdiddy/reportbuild/internal/history"
	"github.com/pdiddy/reportbuild/internal/metrics"
	"github.com/pdiddy/reportbuild/internal/watch"
	"github.com/pdiddy/reportbuild/pkg/types"
)

// newBuilder wires a Builder from cfg. The returned function releases the
// history database and must be called when the builder is done.
func newBuilder(cfg types.BuildConfig) (*build.Builder, func()) {
	b := build.New(cfg, os.Stdout)
	if cfg.Metrics {
		b.Recorder = metrics.NewPrometheusRecorder(nil)
	}

	closeFn := func() {}
	if cfg.History {
		store, err := history.Open(cfg.BuildPath())
		if err != nil {
			slog.Warn("run history disabled", "error", err)
		} else {
			b.History = store
			closeFn = func() { _ = store.Close() }
		}
	}
	return b, closeFn
}

// runFlow runs flow once, or under a file watcher when --watch is set.
func runFlow(cmd *cobra.Command, cfg types.BuildConfig, flow func(*build.Builder, context.Context) (types.RunRecord, error)) error {
	b, closeFn := newBuilder(cfg)
	defer closeFn()

	ctx := cmd.Context()
	watching, _ := cmd.Flags().GetBool("watch")
	if !watching {
		_, err := flow(b, ctx)
		return err
	}

	root, err := filepath.Abs(cfg.ReportDir)
	if err != nil {
		return err
	}
	buildDir, err := filepath.Abs(cfg.BuildPath())
	if err != nil {
		return err
	}
	w := &watch.Watcher{
		Root:   root,
		Ignore: []string{buildDir},
		Rebuild: func(ctx context.Context) error {
			_, err := flow(b, ctx)
			return err
		},
	}
	slog.Info("watching for changes", "dir", root)
	return w.Run(ctx)
}
