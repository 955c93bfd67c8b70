package fauxglrender

import (
	"github.com/fogleman/fauxgl"

	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/scene"
)

// lambertShader evaluates the scene's Lambert light model per fragment, using the
// interpolated world position and normal.
type lambertShader struct {
	matrix  fauxgl.Matrix
	scene   *scene.Scene
	mat     *scene.Material
	texture fauxgl.Texture
}

func newLambertShader(matrix fauxgl.Matrix, s *scene.Scene, mat *scene.Material) *lambertShader {
	sh := &lambertShader{matrix: matrix, scene: s, mat: mat}
	if mat.Texture != nil {
		sh.texture = fauxgl.NewImageTexture(mat.Texture)
	}
	return sh
}

func (sh *lambertShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = sh.matrix.MulPositionW(v.Position)
	return v
}

func (sh *lambertShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	diffuse := mathutil.Vec3{v.Color.R, v.Color.G, v.Color.B}
	alpha := sh.mat.Opacity
	if sh.texture != nil {
		t := sh.texture.Sample(v.Texture.X, v.Texture.Y)
		diffuse = mathutil.Vec3{diffuse[0] * t.R, diffuse[1] * t.G, diffuse[2] * t.B}
		alpha *= t.A
	}
	n := fromVector(v.Normal).Normalize()
	c := sh.scene.Shade(sh.mat, diffuse, fromVector(v.Position), n)
	return fauxgl.Color{R: clamp01(c[0]), G: clamp01(c[1]), B: clamp01(c[2]), A: alpha}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
