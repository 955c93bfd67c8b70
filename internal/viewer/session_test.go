package viewer

import (
	"image"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/controls"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
)

type countingRenderer struct {
	calls atomic.Int32
	gate  chan struct{} // when non-nil, each render waits for a value
}

func (r *countingRenderer) Render(s *scene.Scene, cam *camera.Perspective, w, h int) (*image.NRGBA, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.calls.Add(1)
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

func loadCube(t *testing.T) *mesh.Model {
	t.Helper()
	m, err := mesh.Load(filepath.Join("..", "mesh", "testdata", "cube.3js.json"))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newSession(t *testing.T, r scene.Renderer, opts Options) (*Session, *scene.View) {
	t.Helper()
	var tb *controls.Trackball
	b := &scene.Builder{
		Renderer: r,
		Controls: func(cam *camera.Perspective) scene.Controls {
			tb = controls.NewTrackball(cam)
			tb.StaticMoving = true
			return tb
		},
	}
	v, err := b.Build(loadCube(t))
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(v, tb, opts)
	s.Resize(16, 12)
	return s, v
}

func tick(s *Session, n int) {
	now := time.Now()
	for i := 0; i < n; i++ {
		s.Tick(now.Add(time.Duration(i) * 16 * time.Millisecond))
		s.Wait()
	}
}

func TestSessionRendersOnDemand(t *testing.T) {
	r := &countingRenderer{}
	s, _ := newSession(t, r, Options{})

	tick(s, 1)
	img, version := s.Frame()
	if img == nil || version != 1 {
		t.Fatalf("frame = %v, version = %d", img, version)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	tick(s, 3)
	if n := r.calls.Load(); n != 1 {
		t.Fatalf("idle ticks rendered: calls = %d", n)
	}

	s.Trackball().Wheel(5)
	tick(s, 1)
	if n := r.calls.Load(); n != 2 {
		t.Fatalf("camera change did not render: calls = %d", n)
	}
}

func TestSessionSpin(t *testing.T) {
	r := &countingRenderer{}
	s, v := newSession(t, r, Options{Spin: 0.01, Spinning: true})

	tick(s, 3)
	if got := v.Scene.Rotation[0]; got < 0.0299 || got > 0.0301 {
		t.Fatalf("rotation x = %v, want 0.03", got)
	}
	if n := r.calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want a render per tick", n)
	}

	s.ToggleSpin()
	tick(s, 2)
	if n := r.calls.Load(); n != 3 {
		t.Fatalf("calls = %d after stopping spin", n)
	}
}

func TestSessionReload(t *testing.T) {
	r := &countingRenderer{}
	s, v := newSession(t, r, Options{})
	tick(s, 1)

	replacement := loadCube(t)
	for i := range replacement.Vertices {
		replacement.Vertices[i] = replacement.Vertices[i].Scale(10)
	}
	s.Reload(loadCube(t))
	s.Reload(replacement)
	tick(s, 1)

	if v.Scene.Model != replacement {
		t.Fatal("newest model not installed")
	}
	if v.Placement.Distance < 5 {
		t.Fatalf("camera not reframed: distance = %v", v.Placement.Distance)
	}
	if n := r.calls.Load(); n != 2 {
		t.Fatalf("calls = %d", n)
	}
}

func TestSessionRetriesWhileBusy(t *testing.T) {
	r := &countingRenderer{gate: make(chan struct{})}
	s, _ := newSession(t, r, Options{})

	s.Tick(time.Now()) // starts a render that blocks on the gate
	s.ResetCamera()
	s.Tick(time.Now()) // busy: must stay dirty

	r.gate <- struct{}{}
	s.Wait()
	close(r.gate)

	tick(s, 1)
	if n := r.calls.Load(); n != 2 {
		t.Fatalf("calls = %d, want the skipped frame retried", n)
	}
}
