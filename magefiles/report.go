// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Report builds the CLI and assembles report/ into report/build/final_report.pdf.
func Report() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "assemble", "--report-dir", "report")
}

// Compile builds the CLI and runs the two-pass compile over report/report.tex.
func Compile() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "compile", "--report-dir", "report")
}

// History prints the most recent runs recorded in report/build.
func History() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "history", "--report-dir", "report")
}
