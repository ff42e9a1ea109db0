package preprocess

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return cloneGray(g)
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(src.At(x, y)).(color.Gray))
		}
	}
	return dst
}

func cloneGray(g *image.Gray) *image.Gray {
	dst := image.NewGray(g.Bounds())
	copy(dst.Pix, g.Pix)
	return dst
}

// upscale enlarges small scans so character strokes stay legible after
// binarization. The factor reaches the minimum working size but is capped so
// very small thumbnails cannot balloon memory.
func upscale(g *image.Gray, minW, minH int, maxScale float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= minW && h >= minH {
		return g
	}
	scale := math.Max(float64(minW)/float64(w), float64(minH)/float64(h))
	if scale > maxScale {
		scale = maxScale
	}
	dst := image.NewGray(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), g, b, xdraw.Src, nil)
	return dst
}

func invertGray(g *image.Gray) *image.Gray {
	dst := image.NewGray(g.Bounds())
	for i, p := range g.Pix {
		dst.Pix[i] = 0xFF - p
	}
	return dst
}

// subtract computes a-b per pixel, saturating at zero.
func subtract(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Bounds())
	for i := range a.Pix {
		if a.Pix[i] > b.Pix[i] {
			dst.Pix[i] = a.Pix[i] - b.Pix[i]
		}
	}
	return dst
}
