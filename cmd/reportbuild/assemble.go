// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/reportbuild/internal/build"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build final_report.pdf from the cover image, report and code appendix",
	Long: `Assemble runs four steps in order, stopping at the first failure:

  1. convert the cover PNG to a PDF page (sips, else ImageMagick convert)
  2. compile report.tex (log: build/report_compile.log)
  3. compile code.tex   (log: build/code_compile.log)
  4. merge image, report and appendix (pdfunite, else pdftk)

Converter and merger order can be changed with image_converters and
mergers in the config file; "builtin" selects an in-process fallback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runFlow(cmd, cfg, (*build.Builder).Assemble)
	},
}

func init() {
	assembleCmd.Flags().Bool("watch", false, "reassemble whenever sources change")

	rootCmd.AddCommand(assembleCmd)
}
