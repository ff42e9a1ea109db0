// Package preprocess derives several independently enhanced, binarized
// versions of a scanned waybill page. Recognition quality on degraded scans
// depends heavily on which enhancement was applied, so the pipeline runs the
// recognizer over every variant and keeps the best reading.
package preprocess

import (
	"errors"
	"fmt"
	"image"
)

// Variant labels. Each names the enhancement strategy that produced the
// derived image.
const (
	LabelAdaptive    = "adaptive-threshold"
	LabelContrast    = "contrast-enhanced-otsu"
	LabelLineRemoved = "line-removed"
	LabelGrayscale   = "grayscale"
)

// ErrNoVariants is returned when the source image is unusable and not even
// the grayscale fallback could be produced.
var ErrNoVariants = errors.New("preprocess: no variants produced")

// Variant is one enhanced rendition of the source page. Variants never alias
// the source pixels.
type Variant struct {
	Label string
	Image *image.Gray
}

type Config struct {
	MinWidth  int     // upscale target width; default 1000
	MinHeight int     // upscale target height; default 800
	MaxScale  float64 // upscale cap; default 4.0
	ClipLimit float64 // CLAHE contrast clip; default 3.0
	TileGrid  int     // CLAHE tile grid per axis; default 8
}

func (c Config) withDefaults() Config {
	if c.MinWidth <= 0 {
		c.MinWidth = 1000
	}
	if c.MinHeight <= 0 {
		c.MinHeight = 800
	}
	if c.MaxScale <= 0 {
		c.MaxScale = 4.0
	}
	if c.ClipLimit <= 0 {
		c.ClipLimit = 3.0
	}
	if c.TileGrid <= 0 {
		c.TileGrid = 8
	}
	return c
}

// Variants produces the enhancement variants in a fixed order: adaptive
// binarization, contrast-enhanced Otsu, ruling-line removal. A variant that
// fails is skipped; if all fail the unmodified grayscale page is returned as
// the sole variant so recognition still has input.
func Variants(src image.Image, cfg Config) ([]Variant, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrNoVariants
	}
	cfg = cfg.withDefaults()

	gray := upscale(toGray(src), cfg.MinWidth, cfg.MinHeight, cfg.MaxScale)

	builders := []struct {
		label string
		fn    func(*image.Gray) *image.Gray
	}{
		{LabelAdaptive, adaptiveVariant},
		{LabelContrast, func(g *image.Gray) *image.Gray { return contrastVariant(g, cfg.ClipLimit, cfg.TileGrid) }},
		{LabelLineRemoved, lineRemovedVariant},
	}

	variants := make([]Variant, 0, len(builders))
	for _, b := range builders {
		v, err := buildVariant(b.label, gray, b.fn)
		if err != nil {
			continue
		}
		variants = append(variants, v)
	}
	if len(variants) == 0 {
		variants = append(variants, Variant{Label: LabelGrayscale, Image: cloneGray(gray)})
	}
	return variants, nil
}

// buildVariant isolates one strategy; a panic inside image math only loses
// that variant, not the document.
func buildVariant(label string, g *image.Gray, fn func(*image.Gray) *image.Gray) (v Variant, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("preprocess: %s: %v", label, p)
		}
	}()
	return Variant{Label: label, Image: fn(g)}, nil
}

// adaptiveVariant binarizes against the local neighborhood mean, then runs a
// small close/open pass to drop speckle noise without thinning strokes.
func adaptiveVariant(g *image.Gray) *image.Gray {
	bin := adaptiveThreshold(g, 5, 2)
	bin = closeBinary(bin, 2)
	return openBinary(bin, 2)
}

// contrastVariant equalizes local contrast, smooths while preserving edges
// and binarizes with a globally chosen Otsu threshold.
func contrastVariant(g *image.Gray, clipLimit float64, tileGrid int) *image.Gray {
	enhanced := clahe(g, clipLimit, tileGrid)
	smoothed := bilateral(enhanced, 4, 75, 75)
	return binarize(smoothed, otsuThreshold(smoothed))
}

// lineRemovedVariant subtracts long horizontal and vertical structuring
// responses before binarization, recovering text occluded by table ruling.
func lineRemovedVariant(g *image.Gray) *image.Gray {
	cleaned := removeRuling(g, 40)
	return binarize(cleaned, otsuThreshold(cleaned))
}
