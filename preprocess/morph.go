package preprocess

import "image"

// erode/dilate with a small square kernel, for speckle cleanup on binary
// images. The kernel anchor is the top-left corner, matching a ones(k,k)
// structuring element.

func erodeBinary(g *image.Gray, k int) *image.Gray {
	return squareFilter(g, k, true)
}

func dilateBinary(g *image.Gray, k int) *image.Gray {
	return squareFilter(g, k, false)
}

func closeBinary(g *image.Gray, k int) *image.Gray {
	return erodeBinary(dilateBinary(g, k), k)
}

func openBinary(g *image.Gray, k int) *image.Gray {
	return dilateBinary(erodeBinary(g, k), k)
}

func squareFilter(g *image.Gray, k int, takeMin bool) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(g.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc uint8
			if takeMin {
				acc = 0xFF
			}
			for dy := 0; dy < k; dy++ {
				yy := y + dy
				if yy >= h {
					continue
				}
				for dx := 0; dx < k; dx++ {
					xx := x + dx
					if xx >= w {
						continue
					}
					p := g.Pix[yy*g.Stride+xx]
					if takeMin {
						if p < acc {
							acc = p
						}
					} else if p > acc {
						acc = p
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = acc
		}
	}
	return dst
}

// 1-D grayscale min/max filters. An opening with a long flat line detects
// ruling because only runs at least as long as the element survive erosion.

func lineFilter(g *image.Gray, length int, horizontal, takeMin bool) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(g.Bounds())
	half := length / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc uint8
			if takeMin {
				acc = 0xFF
			}
			for d := -half; d < length-half; d++ {
				xx, yy := x, y
				if horizontal {
					xx += d
				} else {
					yy += d
				}
				if xx < 0 || xx >= w || yy < 0 || yy >= h {
					continue
				}
				p := g.Pix[yy*g.Stride+xx]
				if takeMin {
					if p < acc {
						acc = p
					}
				} else if p > acc {
					acc = p
				}
			}
			dst.Pix[y*dst.Stride+x] = acc
		}
	}
	return dst
}

func openLine(g *image.Gray, length int, horizontal bool) *image.Gray {
	return lineFilter(lineFilter(g, length, horizontal, true), length, horizontal, false)
}

// removeRuling erases long horizontal and vertical strokes from the page.
// The opening runs on the inverted image, where ink is bright: only runs at
// least as long as the element survive, which isolates table borders, and
// subtracting them keeps the characters. The result is re-inverted back to
// dark-on-white.
func removeRuling(g *image.Gray, length int) *image.Gray {
	inv := invertGray(g)
	horizontal := openLine(inv, length, true)
	vertical := openLine(inv, length, false)
	cleaned := subtract(inv, horizontal)
	cleaned = subtract(cleaned, vertical)
	return invertGray(cleaned)
}
