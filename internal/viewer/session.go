// Package viewer shows a scene in an interactive window: trackball input moves the
// camera, frames are rendered in the background and hot-reloaded models replace the
// current one.
package viewer

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	trylock "github.com/subchen/go-trylock/v2"

	"jsonmesh-renderer/internal/controls"
	"jsonmesh-renderer/internal/loop"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
)

// tryRenderWait bounds how long the UI goroutine waits for a running render.
const tryRenderWait = time.Millisecond

// Options configures a Session.
type Options struct {
	Spin     float64 // radians about x and y per frame while spinning
	Spinning bool
	Textures scene.TextureResolver // used for reloaded models
}

// Session is the window-independent state of the viewer. Tick and input methods are
// called from the UI goroutine; Reload may be called from any goroutine.
type Session struct {
	view *scene.View
	tb   *controls.Trackball
	loop *loop.Loop
	opts Options

	width, height int
	spinning      bool
	reloads       chan *mesh.Model

	// render serializes background renders; a frame requested while one is running is
	// retried on the next tick.
	render trylock.TryLocker
	wg     sync.WaitGroup

	mu      sync.Mutex
	frame   *image.NRGBA
	version uint64
	lastErr error
}

// NewSession wires the trackball's change notifications and the per-frame work into a
// render loop. tb must be the controls attached to view.
func NewSession(view *scene.View, tb *controls.Trackball, opts Options) *Session {
	s := &Session{
		view:     view,
		tb:       tb,
		opts:     opts,
		spinning: opts.Spinning,
		width:    1,
		height:   1,
		reloads:  make(chan *mesh.Model, 1),
		render:   trylock.New(),
	}
	s.loop = loop.New(s.requestRender)
	s.loop.OnFrame(s.onFrame)
	s.loop.SetContinuous(s.spinning)
	if view.Controls != nil {
		view.Controls.OnChange(s.loop.Invalidate)
	}
	return s
}

// Resize sets the render size and the trackball screen.
func (s *Session) Resize(width, height int) {
	if width < 1 || height < 1 || (width == s.width && height == s.height) {
		return
	}
	s.width, s.height = width, height
	s.tb.SetScreen(0, 0, float64(width), float64(height))
	s.loop.Invalidate()
}

// Size returns the current render size.
func (s *Session) Size() (int, int) {
	return s.width, s.height
}

// Trackball returns the controls fed by the window's input.
func (s *Session) Trackball() *controls.Trackball {
	return s.tb
}

// Tick advances one frame.
func (s *Session) Tick(now time.Time) {
	s.loop.Tick(now)
}

// ToggleSpin starts or stops the model rotation.
func (s *Session) ToggleSpin() {
	s.spinning = !s.spinning
	s.loop.SetContinuous(s.spinning)
}

// Spinning reports whether the model rotates every frame.
func (s *Session) Spinning() bool {
	return s.spinning
}

// ResetCamera returns the camera to the framed placement.
func (s *Session) ResetCamera() {
	s.tb.Reset()
}

// Reframe re-runs the camera framing on the current model.
func (s *Session) Reframe() {
	s.view.Reframe()
	s.tb.Reset()
}

// Framed reports whether the current placement came from autoframing.
func (s *Session) Framed() bool {
	return s.view.Framed()
}

// Reload queues a new model; it replaces the current one on the next tick. Only the
// newest queued model is kept.
func (s *Session) Reload(m *mesh.Model) {
	for {
		select {
		case s.reloads <- m:
			return
		default:
		}
		select {
		case <-s.reloads:
		default:
		}
	}
}

func (s *Session) onFrame(time.Duration) {
	select {
	case m := <-s.reloads:
		s.view.Replace(m, s.opts.Textures)
		s.tb.Reset()
		s.loop.Invalidate()
	default:
	}

	s.tb.Update()
	if s.spinning {
		s.view.Spin(s.opts.Spin, s.opts.Spin)
	}
}

// requestRender starts a background render of a snapshot unless one is running.
func (s *Session) requestRender() {
	ctx, cancel := context.WithTimeout(context.Background(), tryRenderWait)
	ok := s.render.TryLock(ctx)
	cancel()
	if !ok {
		s.loop.Invalidate()
		return
	}
	sc, cam := s.view.Snapshot()
	w, h := s.width, s.height

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.render.Unlock()

		img, err := s.view.RenderSnapshot(sc, cam, w, h)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			if s.lastErr == nil || s.lastErr.Error() != err.Error() {
				log.Printf("[viewer] render: %v", err)
			}
			s.lastErr = err
			return
		}
		s.lastErr = nil
		s.frame = img
		s.version++
	}()
}

// Frame returns the newest finished render and a counter that changes with every new one.
func (s *Session) Frame() (*image.NRGBA, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.version
}

// Wait blocks until the render in flight, if any, has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}
