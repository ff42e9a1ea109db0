// Package raster turns a raw delivery document into a pixel grid the
// preprocessing stage can work on. PDF pages are rendered through poppler's
// pdftoppm at a configurable DPI; already-raster input passes through a
// plain decode.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/KorotaevvEgor/ttnscan/document"
)

// ErrDecode is returned when the input bytes cannot be decoded or rendered
// into an image.
var ErrDecode = errors.New("raster: undecodable document")

const defaultDPI = 200

type Config struct {
	DPI      int    // render resolution for PDF pages; default 200
	Page     int    // zero-based page index; out-of-range falls back to 0
	Pdftoppm string // binary name or absolute path; default "pdftoppm"
	Runner   Runner // command runner; default executes on the host
}

// Page is one rasterized document page.
type Page struct {
	Image image.Image
	DPI   int
	Index int
}

type Rasterizer struct {
	cfg    Config
	runner Runner
}

func New(cfg Config) *Rasterizer {
	if cfg.DPI <= 0 {
		cfg.DPI = defaultDPI
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	runner := cfg.Runner
	if runner == nil {
		runner = execRunner{}
	}
	return &Rasterizer{cfg: cfg, runner: runner}
}

// Rasterize produces the configured page of doc as an image. Non-PDF input
// is decoded as-is; the DPI on the returned Page then only records the
// configured value, not a measured one.
func (r *Rasterizer) Rasterize(ctx context.Context, doc document.Raw) (Page, error) {
	if doc.Kind == document.KindPDF {
		return r.renderPDF(ctx, doc.Data)
	}
	img, _, err := image.Decode(bytes.NewReader(doc.Data))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Page{Image: img, DPI: r.cfg.DPI, Index: 0}, nil
}

func (r *Rasterizer) renderPDF(ctx context.Context, data []byte) (Page, error) {
	page := r.cfg.Page
	if n := PageCount(data); page >= n || page < 0 {
		page = 0
	}

	tmp, err := os.MkdirTemp("", "ttnscan-render-*")
	if err != nil {
		return Page{}, fmt.Errorf("raster: temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "doc.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return Page{}, fmt.Errorf("raster: write temp pdf: %w", err)
	}

	// pdftoppm -r <dpi> -png -f <p> -l <p> -singlefile doc.pdf <prefix>
	prefix := filepath.Join(tmp, "page")
	human := strconv.Itoa(page + 1)
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", strconv.Itoa(r.cfg.DPI),
		"-png",
		"-f", human, "-l", human,
		"-singlefile",
		in, prefix,
	)
	if err != nil {
		return Page{}, fmt.Errorf("%w: pdftoppm: %v (%s)", ErrDecode, err, bytes.TrimSpace(errb))
	}

	rendered, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return Page{}, fmt.Errorf("%w: pdftoppm produced no page image", ErrDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(rendered))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Page{Image: img, DPI: r.cfg.DPI, Index: page}, nil
}
