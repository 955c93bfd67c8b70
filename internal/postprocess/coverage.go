package postprocess

import "image"

// Coverage measures the rendered silhouette: the bounding rectangle of pixels with
// non-zero alpha and the fraction of the image they fill. Fully transparent images give an
// empty rectangle and 0. Only meaningful for renders over a transparent background.
type Coverage struct {
	Bounds   image.Rectangle
	Fraction float64
	// Clipped is set when the silhouette touches the image border.
	Clipped bool
}

// Measure computes the coverage of img.
func Measure(img *image.NRGBA) Coverage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Coverage{}
	}

	minX, minY := w, h
	maxX, maxY := -1, -1
	covered := 0
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			covered++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if covered == 0 {
		return Coverage{}
	}

	r := image.Rect(minX, minY, maxX+1, maxY+1).Add(b.Min)
	return Coverage{
		Bounds:   r,
		Fraction: float64(covered) / float64(w*h),
		Clipped:  minX == 0 || minY == 0 || maxX == w-1 || maxY == h-1,
	}
}
