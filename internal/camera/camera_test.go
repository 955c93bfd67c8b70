package camera

import (
	"math"
	"testing"

	"jsonmesh-renderer/internal/autoframe"
	"jsonmesh-renderer/internal/mathutil"
)

func TestAutoframedSphereIsInsideFrustum(t *testing.T) {
	cam := NewPerspective(DefaultFOV, DefaultAspect, DefaultNear, DefaultFar)
	s := mathutil.Sphere{Center: mathutil.Vec3{3, -1, 2}, Radius: 2.5}

	p, err := autoframe.Frame(s, cam.FOV, autoframe.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	p.ApplyTo(cam)

	vp := cam.ViewProjection()
	// Sample the sphere surface along the camera's screen axes.
	view := cam.View()
	right := mathutil.Vec3{view[0], view[1], view[2]}
	up := mathutil.Vec3{view[4], view[5], view[6]}
	for _, dir := range []mathutil.Vec3{right, right.Scale(-1), up, up.Scale(-1)} {
		pt := s.Center.Add(dir.Scale(s.Radius))
		x, y, _, w := vp.MulPointW(pt)
		if w <= 0 {
			t.Fatalf("point %v behind camera", pt)
		}
		if math.Abs(x/w) >= 1 || math.Abs(y/w) >= 1 {
			t.Fatalf("point %v projects outside viewport: (%v, %v)", pt, x/w, y/w)
		}
	}

	// Center projects to the middle of the screen.
	x, y, _, w := vp.MulPointW(s.Center)
	if math.Abs(x/w) > 1e-9 || math.Abs(y/w) > 1e-9 {
		t.Fatalf("center projects to (%v, %v)", x/w, y/w)
	}
}

func TestFitClipPlanes(t *testing.T) {
	cam := NewPerspective(60, 1, 0.1, 10)
	cam.SetPosition(mathutil.Vec3{0, 0, 100})
	s := mathutil.Sphere{Radius: 20}
	cam.FitClipPlanes(s)
	if cam.Far < 120 {
		t.Fatalf("far = %v, want >= 120", cam.Far)
	}
	if cam.Near != 0.1 {
		t.Fatalf("near changed to %v", cam.Near)
	}
	if cam.Position != (mathutil.Vec3{0, 0, 100}) {
		t.Fatal("position changed")
	}
}

func TestSetAspect(t *testing.T) {
	cam := NewPerspective(60, 1, 0.1, 10)
	cam.SetAspect(800, 400)
	if cam.Aspect != 2 {
		t.Fatalf("aspect = %v", cam.Aspect)
	}
	cam.SetAspect(0, 400)
	if cam.Aspect != 2 {
		t.Fatalf("aspect changed on zero width: %v", cam.Aspect)
	}
}
