// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imageconv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// US Letter in points.
const (
	letterWidth  = 612.0
	letterHeight = 792.0
)

// Builtin places the image full bleed on one Letter page using gofpdf. It
// needs no external binary and is only used when listed in the converter
// order.
type Builtin struct{}

func (Builtin) Name() string { return nameBuiltin }

func (Builtin) Available(context.Context) bool { return true }

func (Builtin) Convert(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: imageType(src)}
	pdf.ImageOptions(src, 0, 0, letterWidth, letterHeight, false, opts, 0, "")

	if err := pdf.OutputFileAndClose(dst); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}
