package scene

import (
	"errors"
	"image"
	"math"
	"testing"

	"jsonmesh-renderer/internal/autoframe"
	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
)

type recordingRenderer struct {
	calls int
	cam   camera.Perspective
}

func (r *recordingRenderer) Render(s *Scene, cam *camera.Perspective, w, h int) (*image.NRGBA, error) {
	r.calls++
	r.cam = *cam
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

type fakeControls struct {
	cam   *camera.Perspective
	saved int
}

func (c *fakeControls) Update() {}
func (c *fakeControls) OnChange(func()) {}
func (c *fakeControls) Reset() {}
func (c *fakeControls) SaveState() { c.saved++ }

func cubeModel(t *testing.T, half float64) *mesh.Model {
	t.Helper()
	m := &mesh.Model{}
	for _, x := range []float64{-half, half} {
		for _, y := range []float64{-half, half} {
			for _, z := range []float64{-half, half} {
				m.Vertices = append(m.Vertices, mathutil.Vec3{x + 10, y, z})
			}
		}
	}
	m.Faces = []mesh.Face{{A: 0, B: 1, C: 2, MaterialIndex: -1}}
	m.ComputeFaceNormals()
	return m
}

func TestBuildFramesCamera(t *testing.T) {
	r := &recordingRenderer{}
	var ctl *fakeControls
	b := &Builder{
		Renderer: r,
		Controls: func(cam *camera.Perspective) Controls {
			ctl = &fakeControls{cam: cam}
			return ctl
		},
	}
	model := cubeModel(t, 2)
	v, err := b.Build(model)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Framed() {
		t.Fatalf("not framed: %v", v.FrameErr)
	}

	sphere, _ := model.BoundingSphere()
	want, _ := autoframe.Frame(sphere, camera.DefaultFOV, autoframe.Config{})
	if v.Camera.Position != want.Position || v.Camera.Target != sphere.Center {
		t.Fatalf("camera at %v -> %v, want %v -> %v", v.Camera.Position, v.Camera.Target, want.Position, sphere.Center)
	}
	if ctl == nil || ctl.cam != v.Camera {
		t.Fatal("controls not attached to the view camera")
	}
	if len(v.Scene.Lights) != 2 {
		t.Fatalf("lights = %d, want defaults", len(v.Scene.Lights))
	}
	if v.Scene.Materials[0].Color != HexColor(0x00ff00) {
		t.Fatalf("material = %+v, want default green", v.Scene.Materials[0])
	}

	if _, err := v.Render(400, 200); err != nil {
		t.Fatal(err)
	}
	if r.calls != 1 || r.cam.Aspect != 2 {
		t.Fatalf("renderer calls=%d aspect=%v", r.calls, r.cam.Aspect)
	}
}

func TestBuildFallsBackOnEmptyModel(t *testing.T) {
	v, err := (&Builder{Renderer: &recordingRenderer{}}).Build(&mesh.Model{})
	if err != nil {
		t.Fatal(err)
	}
	if v.Framed() || !errors.Is(v.FrameErr, mesh.ErrEmptyGeometry) {
		t.Fatalf("FrameErr = %v", v.FrameErr)
	}
	if v.Camera.Position != autoframe.Fallback().Position {
		t.Fatalf("position = %v, want fallback", v.Camera.Position)
	}
}

func TestBuildFallsBackOnBadFOV(t *testing.T) {
	b := &Builder{
		Renderer: &recordingRenderer{},
		Camera:   CameraConfig{FOV: 180, Aspect: 1, Near: 0.1, Far: 100},
	}
	v, err := b.Build(cubeModel(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(v.FrameErr, autoframe.ErrInvalidFOV) {
		t.Fatalf("FrameErr = %v", v.FrameErr)
	}
}

func TestBuildWithoutRenderer(t *testing.T) {
	if _, err := (&Builder{}).Build(&mesh.Model{}); !errors.Is(err, ErrNoRenderer) {
		t.Fatalf("err = %v", err)
	}
}

func TestReplaceReframesAndSavesControls(t *testing.T) {
	var ctl *fakeControls
	b := &Builder{
		Renderer: &recordingRenderer{},
		Controls: func(cam *camera.Perspective) Controls {
			ctl = &fakeControls{cam: cam}
			return ctl
		},
	}
	v, err := b.Build(cubeModel(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	before := v.Placement.Distance

	v.Replace(cubeModel(t, 4), nil)
	if v.Placement.Distance <= before {
		t.Fatalf("distance %v not larger than %v after loading a bigger model", v.Placement.Distance, before)
	}
	if ctl.saved != 1 {
		t.Fatalf("SaveState calls = %d", ctl.saved)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	v, err := (&Builder{Renderer: &recordingRenderer{}}).Build(cubeModel(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	sc, cam := v.Snapshot()
	v.Spin(0.5, 0.25)
	v.Camera.SetPosition(mathutil.Vec3{9, 9, 9})

	if sc.Rotation != (mathutil.Vec3{}) {
		t.Fatalf("snapshot rotation changed: %v", sc.Rotation)
	}
	if cam.Position == v.Camera.Position {
		t.Fatal("snapshot camera shares state")
	}
	if sc.Model != v.Scene.Model {
		t.Fatal("snapshot should share the model")
	}
}

func TestResolveMaterials(t *testing.T) {
	diffuse := [3]float64{0.5, 0.25, 1}
	opacity := 0.5
	mats := ResolveMaterials([]mesh.Material{
		{DbgName: "a", ColorDiffuse: &diffuse, Opacity: &opacity, Transparent: true},
		{DbgName: "b", Opacity: &opacity},
	}, nil)
	if mats[0].Color != mathutil.Vec3(diffuse) || mats[0].Opacity != 0.5 {
		t.Fatalf("a = %+v", mats[0])
	}
	if mats[1].Color != HexColor(0xeeeeee) || mats[1].Opacity != 1 {
		t.Fatalf("b = %+v", mats[1])
	}
}

func TestShade(t *testing.T) {
	s := &Scene{Lights: []Light{
		{Kind: Ambient, Color: mathutil.Vec3{0.1, 0.1, 0.1}, Intensity: 1},
		{Kind: Point, Color: mathutil.Vec3{1, 1, 1}, Intensity: 1, Distance: 10, Position: mathutil.Vec3{0, 0, 5}},
	}}
	m := DefaultMaterial()
	n := mathutil.Vec3{0, 0, 1}

	got := s.Shade(&m, mathutil.Vec3{1, 1, 1}, mathutil.Vec3{}, n)
	// ambient 0.1 + direct 1 * (1 - 5/10)
	if math.Abs(got[0]-0.6) > 1e-12 {
		t.Fatalf("shade = %v, want 0.6", got)
	}

	far := s.Shade(&m, mathutil.Vec3{1, 1, 1}, mathutil.Vec3{0, 0, -20}, n)
	if math.Abs(far[0]-0.1) > 1e-12 {
		t.Fatalf("shade beyond light range = %v, want ambient only", far)
	}
}

func TestHexColor(t *testing.T) {
	c := HexColor(0xff8000)
	if c[0] != 1 || math.Abs(c[1]-128.0/255) > 1e-12 || c[2] != 0 {
		t.Fatalf("HexColor = %v", c)
	}
	if got := ToRGBA(c); got.R != 255 || got.G != 128 || got.B != 0 || got.A != 255 {
		t.Fatalf("ToRGBA = %v", got)
	}
}
