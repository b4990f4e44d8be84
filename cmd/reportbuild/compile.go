// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reportbuild/internal/build"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the report source with two TeX passes",
	Long: `Compile runs the TeX engine in non-stop mode over the report source,
twice, so the table of contents, citations and labels resolve. Output goes
to the build directory; engine diagnostics go to <name>_compile.log there.
A failing first pass stops the run before the second.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = viper.BindPFlag("report_source", cmd.Flags().Lookup("source"))
		_ = viper.BindPFlag("passes", cmd.Flags().Lookup("passes"))

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runFlow(cmd, cfg, (*build.Builder).Compile)
	},
}

func init() {
	compileCmd.Flags().String("source", "report.tex", "TeX source to compile, relative to the report directory")
	compileCmd.Flags().Int("passes", 2, "number of engine passes")
	compileCmd.Flags().Bool("watch", false, "recompile whenever sources change")

	rootCmd.AddCommand(compileCmd)
}
