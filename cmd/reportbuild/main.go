// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the reportbuild CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reportbuild/internal/envfile"
	"github.com/pdiddy/reportbuild/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the reportbuild CLI.
var rootCmd = &cobra.Command{
	Use:   "reportbuild",
	Short: "Compile and assemble a LaTeX report with external tools",
	Long: `reportbuild drives pdflatex, an image converter and a PDF merger to turn
a report directory into a finished PDF.

  compile   run the TeX engine twice over the report source
  assemble  cover image + report + code appendix -> final_report.pdf
  history   list previous runs recorded in the build directory

Every artifact is written to the build directory (default: build/ inside
the report directory). Any failing step stops the run with a non-zero exit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		reportDir := viper.GetString("report_dir")
		applied, err := envfile.Load(reportDir)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			slog.Info("loaded env file", "dir", reportDir, "keys", applied)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./reportbuild.yaml or ~/.config/reportbuild/config.yaml)")
	pf.BoolP("verbose", "v", false, "enable debug logging on stderr")
	pf.String("report-dir", ".", "directory containing the report sources")
	pf.String("engine", types.DefaultEngine, "TeX engine binary")
	pf.String("engine-image", "", "run the TeX engine in this docker/podman image")
	pf.Duration("timeout", 0, "limit for each external tool run (0 = no limit)")

	_ = viper.BindPFlag("report_dir", pf.Lookup("report-dir"))
	_ = viper.BindPFlag("engine", pf.Lookup("engine"))
	_ = viper.BindPFlag("engine_image", pf.Lookup("engine-image"))
	_ = viper.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))

	viper.SetDefault("report_dir", ".")
	viper.SetDefault("build_dir", types.DefaultBuildDir)
	viper.SetDefault("report_source", types.DefaultReportSource)
	viper.SetDefault("appendix_source", types.DefaultAppendixSource)
	viper.SetDefault("image", types.DefaultImage)
	viper.SetDefault("engine", types.DefaultEngine)
	viper.SetDefault("engine_image", "")
	viper.SetDefault("passes", types.DefaultPasses)
	viper.SetDefault("image_converters", types.DefaultImageConverters)
	viper.SetDefault("mergers", types.DefaultMergers)
	viper.SetDefault("timeout", 0)
	viper.SetDefault("metrics", false)
	viper.SetDefault("history", true)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("reportbuild")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "reportbuild"))
		}
	}

	viper.SetEnvPrefix("REPORTBUILD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// loadConfig resolves the build configuration from flags, environment,
// config file and defaults, in that order of precedence.
func loadConfig() (types.BuildConfig, error) {
	var cfg types.BuildConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg.WithDefaults(), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
