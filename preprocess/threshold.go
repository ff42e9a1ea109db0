package preprocess

import "image"

// otsuThreshold picks the global threshold maximizing inter-class variance
// over the intensity histogram.
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)
	if total == 0 {
		return 128
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var best float64
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

// binarize maps pixels above the threshold to white, the rest to black.
func binarize(g *image.Gray, threshold uint8) *image.Gray {
	dst := image.NewGray(g.Bounds())
	for i, p := range g.Pix {
		if p > threshold {
			dst.Pix[i] = 0xFF
		}
	}
	return dst
}

// adaptiveThreshold binarizes each pixel against the mean of its
// (2*radius+1)^2 neighborhood minus offset, computed with an integral image.
// Window portions outside the image are clamped away.
func adaptiveThreshold(g *image.Gray, radius int, offset int) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(g.Bounds())

	// integral[y][x] holds the sum over the rectangle [0,x) x [0,y).
	stride := w + 1
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(g.Pix[y*g.Stride+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + row
		}
	}

	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-radius), min(h-1, y+radius)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-radius), min(w-1, x+radius)
			area := int64((y1 - y0 + 1) * (x1 - x0 + 1))
			sum := integral[(y1+1)*stride+x1+1] -
				integral[y0*stride+x1+1] -
				integral[(y1+1)*stride+x0] +
				integral[y0*stride+x0]
			mean := sum / area
			if int64(g.Pix[y*g.Stride+x]) > mean-int64(offset) {
				dst.Pix[y*dst.Stride+x] = 0xFF
			}
		}
	}
	return dst
}
