// Package raster is a CPU triangle rasterizer implementing scene.Renderer: perspective
// projection through the camera, z-buffering, Lambert lighting evaluated per vertex and
// bilinear texture sampling.
package raster

import (
	"fmt"
	"image"

	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
)

// Renderer is the software backend. The zero value is ready to use.
type Renderer struct{}

// New returns a software renderer.
func New() *Renderer {
	return &Renderer{}
}

// Vertex is a projected vertex with its lighting terms.
type Vertex struct {
	X, Y, Z float64 // screen pixels, depth (larger = closer)
	InvW    float64 // 1/w for perspective-correct UVs
	U, V    float64
	Lit     mathutil.Vec3 // diffuse multiplier from lights (without emissive)
}

// Render draws s from cam into a width×height image.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	fb := NewFrameBuffer(width, height)
	fb.Fill(s.Background)
	if s.Model == nil || len(s.Materials) == 0 {
		return fb.Image(), nil
	}

	model := s.Model
	rot := s.ModelMatrix()
	vp := cam.ViewProjection()

	// Transform all vertices once
	world := make([]mathutil.Vec3, len(model.Vertices))
	proj := make([]Vertex, len(model.Vertices))
	visible := make([]bool, len(model.Vertices))
	halfW, halfH := float64(width)/2, float64(height)/2
	for i, v := range model.Vertices {
		wv := rot.MulVec3(v)
		world[i] = wv
		cx, cy, cz, cw := vp.MulPointW(wv)
		if cw <= 1e-9 {
			continue
		}
		nz := cz / cw
		if nz < -1 || nz > 1 {
			continue
		}
		visible[i] = true
		proj[i] = Vertex{
			X:    (cx/cw + 1) * halfW,
			Y:    (1 - cy/cw) * halfH,
			Z:    -nz,
			InvW: 1 / cw,
		}
	}

	for fi := range model.Faces {
		f := &model.Faces[fi]
		idx := [3]int{f.A, f.B, f.C}
		if !visible[idx[0]] || !visible[idx[1]] || !visible[idx[2]] {
			continue
		}
		mat := s.MaterialFor(f)

		var tri [3]Vertex
		var base [3]mathutil.Vec3
		faceNormal := rot.MulVec3(f.Normal)
		for k := 0; k < 3; k++ {
			sv := proj[idx[k]]
			n := faceNormal
			if f.HasVertexNorm {
				n = rot.MulVec3(f.VertexNormals[k]).Normalize()
			}
			base[k] = vertexBase(mat, f, k)
			white := mathutil.Vec3{1, 1, 1}
			sv.Lit = s.Shade(mat, white, world[idx[k]], n).Sub(mat.Emissive)
			if f.HasUV {
				sv.U = f.UVs[k][0] * sv.InvW
				sv.V = (1 - f.UVs[k][1]) * sv.InvW // textures are stored top row first
			}
			tri[k] = sv
		}

		if mat.Wireframe {
			for k := 0; k < 3; k++ {
				a, b := tri[k], tri[(k+1)%3]
				c := mulVec(base[k], a.Lit).Add(mat.Emissive)
				DrawLine(fb, a.X, a.Y, a.Z, b.X, b.Y, b.Z, scene.ToRGBA(c))
			}
			continue
		}

		var tex *image.NRGBA
		if f.HasUV {
			tex = mat.Texture
		}
		RasterizeTriangle(fb, &tri, &base, mat.Emissive, tex, mat.Opacity)
	}

	return fb.Image(), nil
}

// vertexBase returns the unlit diffuse color of corner k: material color times the
// face or vertex color when the material asks for them.
func vertexBase(mat *scene.Material, f *mesh.Face, k int) mathutil.Vec3 {
	c := mat.Color
	if !mat.VertexColors {
		return c
	}
	switch {
	case f.HasVertColor:
		return mulVec(c, scene.HexColor(f.VertexColors[k]))
	case f.HasColor:
		return mulVec(c, scene.HexColor(f.Color))
	}
	return c
}

func mulVec(a, b mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
