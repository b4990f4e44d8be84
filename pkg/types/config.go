// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// Default layout of a report project. The image lives outside the report
// directory, next to the plots it was generated with.
const (
	DefaultBuildDir       = "build"
	DefaultReportSource   = "report.tex"
	DefaultAppendixSource = "code.tex"
	DefaultImage          = "../media/multipole_plot.png"
	DefaultEngine         = "pdflatex"
	DefaultPasses         = 2

	ImagePDF = "image.pdf"
	FinalPDF = "final_report.pdf"
)

// DefaultImageConverters is the probe order for PNG-to-PDF conversion:
// the macOS-native converter first, ImageMagick second.
var DefaultImageConverters = []string{"sips", "convert"}

// DefaultMergers is the probe order for PDF concatenation.
var DefaultMergers = []string{"pdfunite", "pdftk"}

// BuildConfig holds settings shared by the compile and assemble flows.
type BuildConfig struct {
	// ReportDir is the directory holding the TeX sources. Relative paths
	// below are resolved against it.
	ReportDir string `json:"report_dir" yaml:"report_dir" mapstructure:"report_dir"`

	// BuildDir receives every generated artifact (default "build").
	BuildDir string `json:"build_dir" yaml:"build_dir" mapstructure:"build_dir"`

	// ReportSource is the main report document (default "report.tex").
	ReportSource string `json:"report_source" yaml:"report_source" mapstructure:"report_source"`

	// AppendixSource is the code appendix document (default "code.tex").
	AppendixSource string `json:"appendix_source" yaml:"appendix_source" mapstructure:"appendix_source"`

	// Image is the PNG placed as the first page of the assembled report.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Engine is the TeX engine binary (default "pdflatex").
	Engine string `json:"engine" yaml:"engine" mapstructure:"engine"`

	// EngineImage, when set, runs Engine inside this container image with
	// docker or podman.
	EngineImage string `json:"engine_image" yaml:"engine_image" mapstructure:"engine_image"`

	// Passes is how many times the compile flow runs the engine (default 2).
	Passes int `json:"passes" yaml:"passes" mapstructure:"passes"`

	// ImageConverters lists converter names in probe order.
	ImageConverters []string `json:"image_converters" yaml:"image_converters" mapstructure:"image_converters"`

	// Mergers lists PDF merger names in probe order.
	Mergers []string `json:"mergers" yaml:"mergers" mapstructure:"mergers"`

	// Timeout bounds each external tool invocation. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Metrics enables writing metrics.prom into the build directory.
	Metrics bool `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// History enables recording runs in history.db.
	History bool `json:"history" yaml:"history" mapstructure:"history"`
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
// Metrics and History are left as given.
func (c BuildConfig) WithDefaults() BuildConfig {
	if c.ReportDir == "" {
		c.ReportDir = "."
	}
	if c.BuildDir == "" {
		c.BuildDir = DefaultBuildDir
	}
	if c.ReportSource == "" {
		c.ReportSource = DefaultReportSource
	}
	if c.AppendixSource == "" {
		c.AppendixSource = DefaultAppendixSource
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.Passes <= 0 {
		c.Passes = DefaultPasses
	}
	if len(c.ImageConverters) == 0 {
		c.ImageConverters = append([]string(nil), DefaultImageConverters...)
	}
	if len(c.Mergers) == 0 {
		c.Mergers = append([]string(nil), DefaultMergers...)
	}
	return c
}

// Resolve returns p unchanged when absolute, otherwise joined to ReportDir.
func (c BuildConfig) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ReportDir, p)
}

// BuildPath returns the resolved build directory.
func (c BuildConfig) BuildPath() string {
	return c.Resolve(c.BuildDir)
}
