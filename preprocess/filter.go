package preprocess

import (
	"image"
	"math"
)

// clahe performs contrast-limited adaptive histogram equalization over a
// tileGrid x tileGrid layout with bilinear blending between neighboring tile
// mappings.
func clahe(g *image.Gray, clipLimit float64, tileGrid int) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if tileGrid < 1 {
		tileGrid = 1
	}
	tileW := (w + tileGrid - 1) / tileGrid
	tileH := (h + tileGrid - 1) / tileGrid

	// Ceil rounding can leave trailing tiles with no pixels when a dimension
	// is smaller than the grid. Only populated tiles get a lookup table, and
	// blending clamps to them.
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	// Per-tile lookup tables from clipped, redistributed histograms.
	luts := make([][256]uint8, tileGrid*tileGrid)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.Pix[y*g.Stride+x]]++
				}
			}
			pixels := (x1 - x0) * (y1 - y0)
			if pixels == 0 {
				continue
			}

			clip := int(clipLimit * float64(pixels) / 256)
			if clip < 1 {
				clip = 1
			}
			excess := 0
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			share := excess / 256
			for i := range hist {
				hist[i] += share
			}

			cdf := 0
			lut := &luts[ty*tileGrid+tx]
			for i := range hist {
				cdf += hist[i]
				lut[i] = uint8(math.Round(255 * float64(cdf) / float64(pixels)))
			}
		}
	}

	dst := image.NewGray(g.Bounds())
	for y := 0; y < h; y++ {
		// Position relative to tile centers, for blending.
		fy := (float64(y)-float64(tileH)/2+0.5)/float64(tileH)
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clampTile(ty0+1, tilesY)
		ty0 = clampTile(ty0, tilesY)

		for x := 0; x < w; x++ {
			fx := (float64(x)-float64(tileW)/2+0.5)/float64(tileW)
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clampTile(tx0+1, tilesX)
			tx0c := clampTile(tx0, tilesX)

			p := g.Pix[y*g.Stride+x]
			v00 := float64(luts[ty0*tileGrid+tx0c][p])
			v01 := float64(luts[ty0*tileGrid+tx1][p])
			v10 := float64(luts[ty1*tileGrid+tx0c][p])
			v11 := float64(luts[ty1*tileGrid+tx1][p])
			top := v00*(1-wx) + v01*wx
			bottom := v10*(1-wx) + v11*wx
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(top*(1-wy) + bottom*wy))
		}
	}
	return dst
}

func clampTile(t, grid int) int {
	if t < 0 {
		return 0
	}
	if t >= grid {
		return grid - 1
	}
	return t
}

// bilateral smooths intensity noise while preserving stroke edges: each
// output pixel is a spatially and photometrically weighted mean of its
// neighborhood.
func bilateral(g *image.Gray, radius int, sigmaColor, sigmaSpace float64) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(g.Bounds())

	size := 2*radius + 1
	spatial := make([]float64, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*size+dx+radius] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}
	var rangeWeight [256]float64
	for i := range rangeWeight {
		rangeWeight[i] = math.Exp(-float64(i*i) / (2 * sigmaColor * sigmaColor))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := g.Pix[y*g.Stride+x]
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := x + dx
					if xx < 0 || xx >= w {
						continue
					}
					p := g.Pix[yy*g.Stride+xx]
					diff := int(p) - int(center)
					if diff < 0 {
						diff = -diff
					}
					weight := spatial[(dy+radius)*size+dx+radius] * rangeWeight[diff]
					sum += weight * float64(p)
					norm += weight
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(sum / norm))
		}
	}
	return dst
}
