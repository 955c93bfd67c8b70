// Package fauxglrender implements scene.Renderer on top of the fauxgl software
// rasterizer. Models are converted to fauxgl meshes once (one mesh per material)
// and rotated per frame.
package fauxglrender

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/fogleman/fauxgl"

	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
)

// Renderer caches converted meshes per model. Safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	model *mesh.Model
	mats  []scene.Material
	parts []part
}

type part struct {
	material int
	mesh     *fauxgl.Mesh
}

// New returns a fauxgl-backed renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) meshes(s *scene.Scene) []part {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model == s.Model && sameMaterials(r.mats, s.Materials) {
		return r.parts
	}
	r.model = s.Model
	r.mats = s.Materials
	r.parts = convert(s)
	return r.parts
}

func sameMaterials(a, b []scene.Material) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// convert groups faces by resolved material and bakes base colors into the vertices.
func convert(s *scene.Scene) []part {
	byMat := make(map[int][]*fauxgl.Triangle)
	var order []int
	model := s.Model
	for fi := range model.Faces {
		f := &model.Faces[fi]
		mi := f.MaterialIndex
		if mi < 0 || mi >= len(s.Materials) {
			mi = 0
		}
		mat := &s.Materials[mi]
		var vs [3]fauxgl.Vertex
		idx := [3]int{f.A, f.B, f.C}
		for k := 0; k < 3; k++ {
			n := f.Normal
			if f.HasVertexNorm {
				n = f.VertexNormals[k].Normalize()
			}
			vs[k] = fauxgl.Vertex{
				Position: toVector(model.Vertices[idx[k]]),
				Normal:   toVector(n),
				Color:    toColor(baseColor(mat, f, k)),
			}
			if f.HasUV {
				vs[k].Texture = fauxgl.Vector{X: f.UVs[k][0], Y: f.UVs[k][1]}
			}
		}
		if _, ok := byMat[mi]; !ok {
			order = append(order, mi)
		}
		byMat[mi] = append(byMat[mi], &fauxgl.Triangle{V1: vs[0], V2: vs[1], V3: vs[2]})
	}

	parts := make([]part, 0, len(order))
	for _, mi := range order {
		parts = append(parts, part{material: mi, mesh: fauxgl.NewTriangleMesh(byMat[mi])})
	}
	return parts
}

func baseColor(mat *scene.Material, f *mesh.Face, k int) mathutil.Vec3 {
	c := mat.Color
	if !mat.VertexColors {
		return c
	}
	var vc mathutil.Vec3
	switch {
	case f.HasVertColor:
		vc = scene.HexColor(f.VertexColors[k])
	case f.HasColor:
		vc = scene.HexColor(f.Color)
	default:
		return c
	}
	return mathutil.Vec3{c[0] * vc[0], c[1] * vc[1], c[2] * vc[2]}
}

// Render draws s from cam into a width×height image.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("fauxglrender: invalid size %dx%d", width, height)
	}

	ctx := fauxgl.NewContext(width, height)
	ctx.ClearColorBufferWith(fauxgl.MakeColor(s.Background))
	ctx.ClearDepthBuffer()
	ctx.Cull = fauxgl.CullNone

	if s.Model != nil && len(s.Materials) > 0 {
		up := cam.Up
		if up == (mathutil.Vec3{}) {
			up = mathutil.WorldUp
		}
		matrix := fauxgl.LookAt(toVector(cam.Position), toVector(cam.Target), toVector(up)).
			Perspective(cam.FOV, cam.Aspect, cam.Near, cam.Far)
		rotation := fauxgl.Identity().
			Rotate(fauxgl.Vector{Z: 1}, s.Rotation[2]).
			Rotate(fauxgl.Vector{Y: 1}, s.Rotation[1]).
			Rotate(fauxgl.Vector{X: 1}, s.Rotation[0])

		for _, p := range r.meshes(s) {
			m := p.mesh
			if s.Rotation != (mathutil.Vec3{}) {
				m = m.Copy()
				m.Transform(rotation)
			}
			mat := &s.Materials[p.material]
			ctx.Shader = newLambertShader(matrix, s, mat)
			ctx.Wireframe = mat.Wireframe
			ctx.DrawMesh(m)
		}
	}

	return toNRGBA(ctx.Image()), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func toVector(v mathutil.Vec3) fauxgl.Vector {
	return fauxgl.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func fromVector(v fauxgl.Vector) mathutil.Vec3 {
	return mathutil.Vec3{v.X, v.Y, v.Z}
}

func toColor(c mathutil.Vec3) fauxgl.Color {
	return fauxgl.Color{R: c[0], G: c[1], B: c[2], A: 1}
}
