package raster

import (
	"image/color"
	"path/filepath"
	"testing"

	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
)

func loadCubeView(t testing.TB) *scene.View {
	t.Helper()
	m, err := mesh.Load(filepath.Join("..", "mesh", "testdata", "cube.3js.json"))
	if err != nil {
		t.Fatal(err)
	}
	v, err := (&scene.Builder{Renderer: New()}).Build(m)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRenderCubeCoversCenter(t *testing.T) {
	v := loadCubeView(t)
	img, err := v.Render(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if a := img.NRGBAAt(32, 32).A; a != 255 {
		t.Fatalf("center alpha = %d, want opaque", a)
	}

	covered := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			covered++
		}
	}
	if covered == 64*64 {
		t.Fatal("cube covers the whole image")
	}
}

func TestRenderBackgroundOnly(t *testing.T) {
	bg := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	s := &scene.Scene{Model: &mesh.Model{}, Materials: []scene.Material{scene.DefaultMaterial()}, Background: bg}
	v := loadCubeView(t)
	img, err := New().Render(s, v.Camera, 8, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.NRGBAAt(7, 3); got != bg {
		t.Fatalf("pixel = %v, want %v", got, bg)
	}
}

func TestRenderRejectsBadSize(t *testing.T) {
	v := loadCubeView(t)
	if _, err := New().Render(v.Scene, v.Camera, 0, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestRasterizeTriangleDepth(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	white := [3]mathutil.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	mk := func(z, lit float64) [3]Vertex {
		l := mathutil.Vec3{lit, lit, lit}
		return [3]Vertex{
			{X: 0, Y: 0, Z: z, Lit: l},
			{X: 8, Y: 0, Z: z, Lit: l},
			{X: 0, Y: 8, Z: z, Lit: l},
		}
	}
	near := mk(0.5, 1)
	far := mk(0.1, 0.2)

	RasterizeTriangle(fb, &near, &white, mathutil.Vec3{}, nil, 1)
	RasterizeTriangle(fb, &far, &white, mathutil.Vec3{}, nil, 1)

	if got := fb.Color[0]; got != 255 {
		t.Fatalf("far triangle overwrote near one: r=%d", got)
	}
	// Outside the triangle stays empty.
	last := (7*8 + 7) * 4
	if fb.Color[last+3] != 0 {
		t.Fatalf("pixel outside triangle written")
	}
}

func TestRasterizeTriangleBlend(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.Fill(color.NRGBA{A: 255})
	base := [3]mathutil.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	l := mathutil.Vec3{1, 1, 1}
	tri := [3]Vertex{{X: 0, Y: 0, Lit: l}, {X: 8, Y: 0, Lit: l}, {X: 0, Y: 8, Lit: l}}

	RasterizeTriangle(fb, &tri, &base, mathutil.Vec3{}, nil, 0.5)
	if r := fb.Color[0]; r < 120 || r > 135 {
		t.Fatalf("blended red = %d, want ~128", r)
	}
	if fb.ZBuf[0] >= 0 {
		t.Fatal("translucent pixel wrote depth")
	}
}

func BenchmarkRenderCube(b *testing.B) {
	v := loadCubeView(b)
	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		v.Spin(0.01, 0.01)
		if _, err := v.Render(400, 400); err != nil {
			b.Fatal(err)
		}
	}
}
