package raster

import (
	"image"
	"image/color"
	"math"

	"jsonmesh-renderer/internal/mathutil"
)

// RasterizeTriangle fills one projected triangle with z-buffering. Lighting and base color
// are interpolated from the corners (Gouraud); UVs are interpolated perspective-correct.
// Pixels with opacity < 1 are blended over the buffer and do not write depth.
//
// This is the hot path: no allocation in the pixel loop.
func RasterizeTriangle(
	fb *FrameBuffer,
	tri *[3]Vertex,
	base *[3]mathutil.Vec3,
	emissive mathutil.Vec3,
	tex *image.NRGBA,
	opacity float64,
) {
	x0, y0, z0 := tri[0].X, tri[0].Y, tri[0].Z
	x1, y1, z1 := tri[1].X, tri[1].Y, tri[1].Z
	x2, y2, z2 := tri[2].X, tri[2].Y, tri[2].Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Per-corner color terms: pixel = emissive + base * texel * lit
	var cr, cg, cb [3]float64
	for k := 0; k < 3; k++ {
		cr[k] = base[k][0] * tri[k].Lit[0]
		cg[k] = base[k][1] * tri[k].Lit[1]
		cb[k] = base[k][2] * tri[k].Lit[2]
	}

	for sy := minY; sy <= maxY; sy++ {
		// Sample at pixel centers
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -1e-9 || w1 < -1e-9 || w2 < -1e-9 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			tr, tg, tb, ta := 1.0, 1.0, 1.0, 1.0
			if tex != nil {
				invW := w0*tri[0].InvW + w1*tri[1].InvW + w2*tri[2].InvW
				u := (w0*tri[0].U + w1*tri[1].U + w2*tri[2].U) / invW
				v := (w0*tri[0].V + w1*tri[1].V + w2*tri[2].V) / invW
				tr, tg, tb, ta = SampleTexture(tex, u, v)
			}

			alpha := ta * opacity
			// Skip transparent texels
			if alpha < 8.0/255 {
				continue
			}

			fr := emissive[0] + (w0*cr[0]+w1*cr[1]+w2*cr[2])*tr
			fg := emissive[1] + (w0*cg[0]+w1*cg[1]+w2*cg[2])*tg
			ffb := emissive[2] + (w0*cb[0]+w1*cb[1]+w2*cb[2])*tb

			pxIdx := zIdx * 4
			if alpha >= 1 {
				fb.ZBuf[zIdx] = z
				fb.Color[pxIdx] = clamp255(fr * 255)
				fb.Color[pxIdx+1] = clamp255(fg * 255)
				fb.Color[pxIdx+2] = clamp255(ffb * 255)
				fb.Color[pxIdx+3] = 255
				continue
			}

			// Source-over blend, no depth write
			dstA := float64(fb.Color[pxIdx+3]) / 255
			outA := alpha + dstA*(1-alpha)
			blend := func(src float64, dst uint8) uint8 {
				return clamp255((src*255*alpha + float64(dst)*dstA*(1-alpha)) / outA)
			}
			fb.Color[pxIdx] = blend(fr, fb.Color[pxIdx])
			fb.Color[pxIdx+1] = blend(fg, fb.Color[pxIdx+1])
			fb.Color[pxIdx+2] = blend(ffb, fb.Color[pxIdx+2])
			fb.Color[pxIdx+3] = clamp255(outA * 255)
		}
	}
}

// DrawLine draws a depth-tested line between two projected points (wireframe materials).
func DrawLine(fb *FrameBuffer, x0, y0, z0, x1, y1, z1 float64, c color.NRGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(x0 + (x1-x0)*t)
		y := int(y0 + (y1-y0)*t)
		if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
			continue
		}
		z := z0 + (z1-z0)*t
		zIdx := y*fb.Width + x
		if z < fb.ZBuf[zIdx] {
			continue
		}
		fb.ZBuf[zIdx] = z
		pxIdx := zIdx * 4
		fb.Color[pxIdx] = c.R
		fb.Color[pxIdx+1] = c.G
		fb.Color[pxIdx+2] = c.B
		fb.Color[pxIdx+3] = c.A
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
