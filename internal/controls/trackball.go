// Package controls implements trackball camera controls: the camera orbits, zooms and pans
// around its target in response to pointer input.
package controls

import (
	"math"

	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/mathutil"
)

// Button identifies the pointer button that started a drag.
type Button int

const (
	ButtonLeft   Button = iota // rotate
	ButtonMiddle               // zoom
	ButtonRight                // pan
)

type state int

const (
	stateNone state = iota
	stateRotate
	stateZoom
	statePan
)

// changeEpsilon is the squared camera displacement below which Update stays silent.
const changeEpsilon = 1e-6

type vec2 struct{ x, y float64 }

// Trackball drives a perspective camera. It is not safe for concurrent use; Update is
// meant to be called once per frame from the same goroutine that feeds it input.
type Trackball struct {
	RotateSpeed float64
	ZoomSpeed   float64
	PanSpeed    float64

	NoRotate bool
	NoZoom   bool
	NoPan    bool

	StaticMoving         bool
	DynamicDampingFactor float64

	MinDistance float64
	MaxDistance float64

	cam *camera.Perspective

	left, top, width, height float64

	state     state
	lastPos   mathutil.Vec3
	lastAxis  mathutil.Vec3
	lastAngle float64

	moveCurr, movePrev vec2
	zoomStart, zoomEnd vec2
	panStart, panEnd   vec2

	target0, position0, up0 mathutil.Vec3

	listeners []func()
}

// NewTrackball attaches controls to cam. The camera's current placement becomes the
// reset state.
func NewTrackball(cam *camera.Perspective) *Trackball {
	t := &Trackball{
		RotateSpeed:          1.0,
		ZoomSpeed:            1.2,
		PanSpeed:             0.3,
		DynamicDampingFactor: 0.2,
		MaxDistance:          math.Inf(1),
		cam:                  cam,
		width:                1,
		height:               1,
	}
	t.SaveState()
	t.lastPos = cam.Position
	return t
}

// SetScreen sets the viewport rectangle pointer coordinates are relative to.
func (t *Trackball) SetScreen(left, top, width, height float64) {
	t.left, t.top = left, top
	if width > 0 {
		t.width = width
	}
	if height > 0 {
		t.height = height
	}
}

// OnChange registers fn to run whenever Update or Reset moved the camera.
func (t *Trackball) OnChange(fn func()) {
	t.listeners = append(t.listeners, fn)
}

func (t *Trackball) emit() {
	for _, fn := range t.listeners {
		fn()
	}
}

// SaveState records the camera's current placement as the reset state.
func (t *Trackball) SaveState() {
	t.target0 = t.cam.Target
	t.position0 = t.cam.Position
	t.up0 = t.cam.Up
}

// Reset moves the camera back to the saved state and cancels any drag in progress.
func (t *Trackball) Reset() {
	t.state = stateNone
	t.lastAngle = 0
	t.moveCurr, t.movePrev = vec2{}, vec2{}
	t.zoomStart, t.zoomEnd = vec2{}, vec2{}
	t.panStart, t.panEnd = vec2{}, vec2{}

	t.cam.Up = t.up0
	t.cam.SetPosition(t.position0)
	t.cam.LookAt(t.target0)
	t.lastPos = t.cam.Position
	t.emit()
}

func (t *Trackball) onScreen(x, y float64) vec2 {
	return vec2{(x - t.left) / t.width, (y - t.top) / t.height}
}

func (t *Trackball) onCircle(x, y float64) vec2 {
	return vec2{
		(x - t.width*0.5 - t.left) / (t.width * 0.5),
		(t.height + 2*(t.top-y)) / t.width,
	}
}

// PointerDown starts a drag. Buttons whose action is disabled are ignored.
func (t *Trackball) PointerDown(b Button, x, y float64) {
	if t.state != stateNone {
		return
	}
	switch {
	case b == ButtonLeft && !t.NoRotate:
		t.state = stateRotate
		t.moveCurr = t.onCircle(x, y)
		t.movePrev = t.moveCurr
	case b == ButtonMiddle && !t.NoZoom:
		t.state = stateZoom
		t.zoomStart = t.onScreen(x, y)
		t.zoomEnd = t.zoomStart
	case b == ButtonRight && !t.NoPan:
		t.state = statePan
		t.panStart = t.onScreen(x, y)
		t.panEnd = t.panStart
	}
}

// PointerMove continues the current drag.
func (t *Trackball) PointerMove(x, y float64) {
	switch t.state {
	case stateRotate:
		t.movePrev = t.moveCurr
		t.moveCurr = t.onCircle(x, y)
	case stateZoom:
		t.zoomEnd = t.onScreen(x, y)
	case statePan:
		t.panEnd = t.onScreen(x, y)
	}
}

// PointerUp ends the current drag. Damped motion continues in later Updates.
func (t *Trackball) PointerUp() {
	t.state = stateNone
}

// Wheel zooms by a scroll delta in notches; positive zooms in.
func (t *Trackball) Wheel(delta float64) {
	if t.NoZoom {
		return
	}
	t.zoomStart.y += delta * 0.01
}

// Update applies pending motion to the camera and notifies observers if it moved.
func (t *Trackball) Update() {
	eye := t.cam.Position.Sub(t.cam.Target)

	if !t.NoRotate {
		eye = t.rotate(eye)
	}
	if !t.NoZoom {
		eye = t.zoom(eye)
	}
	if !t.NoPan {
		t.pan(eye)
	}

	t.cam.SetPosition(t.cam.Target.Add(eye))
	t.checkDistances(eye)
	t.cam.LookAt(t.cam.Target)

	if t.lastPos.DistSq(t.cam.Position) > changeEpsilon {
		t.emit()
		t.lastPos = t.cam.Position
	}
}

func (t *Trackball) rotate(eye mathutil.Vec3) mathutil.Vec3 {
	dx := t.moveCurr.x - t.movePrev.x
	dy := t.moveCurr.y - t.movePrev.y
	angle := math.Hypot(dx, dy)

	switch {
	case angle != 0:
		eyeDir := eye.Normalize()
		up := t.cam.Up.Normalize()
		sideways := up.Cross(eyeDir).Normalize()
		move := up.WithLen(dy).Add(sideways.WithLen(dx))
		axis := move.Cross(eye).Normalize()
		angle *= t.RotateSpeed

		q := mathutil.QuatFromAxisAngle(axis, angle)
		eye = q.Rotate(eye)
		t.cam.Up = q.Rotate(t.cam.Up)
		t.lastAxis = axis
		t.lastAngle = angle
	case !t.StaticMoving && t.lastAngle != 0:
		t.lastAngle *= math.Sqrt(1 - t.DynamicDampingFactor)
		q := mathutil.QuatFromAxisAngle(t.lastAxis, t.lastAngle)
		eye = q.Rotate(eye)
		t.cam.Up = q.Rotate(t.cam.Up)
	}
	t.movePrev = t.moveCurr
	return eye
}

func (t *Trackball) zoom(eye mathutil.Vec3) mathutil.Vec3 {
	factor := 1 + (t.zoomEnd.y-t.zoomStart.y)*t.ZoomSpeed
	if factor != 1 && factor > 0 {
		eye = eye.Scale(factor)
	}
	if t.StaticMoving {
		t.zoomStart = t.zoomEnd
	} else {
		t.zoomStart.y += (t.zoomEnd.y - t.zoomStart.y) * t.DynamicDampingFactor
	}
	return eye
}

func (t *Trackball) pan(eye mathutil.Vec3) {
	cx := t.panEnd.x - t.panStart.x
	cy := t.panEnd.y - t.panStart.y
	if cx*cx+cy*cy == 0 {
		return
	}
	scale := eye.Len() * t.PanSpeed
	cx *= scale
	cy *= scale

	p := eye.Cross(t.cam.Up).WithLen(cx).Add(t.cam.Up.WithLen(cy))
	t.cam.SetPosition(t.cam.Position.Add(p))
	t.cam.Target = t.cam.Target.Add(p)

	if t.StaticMoving {
		t.panStart = t.panEnd
	} else {
		t.panStart.x += (t.panEnd.x - t.panStart.x) * t.DynamicDampingFactor
		t.panStart.y += (t.panEnd.y - t.panStart.y) * t.DynamicDampingFactor
	}
}

func (t *Trackball) checkDistances(eye mathutil.Vec3) {
	if t.NoZoom && t.NoPan {
		return
	}
	d2 := eye.LenSq()
	switch {
	case d2 > t.MaxDistance*t.MaxDistance:
		t.cam.SetPosition(t.cam.Target.Add(eye.WithLen(t.MaxDistance)))
		t.zoomStart = t.zoomEnd
	case d2 < t.MinDistance*t.MinDistance:
		t.cam.SetPosition(t.cam.Target.Add(eye.WithLen(t.MinDistance)))
		t.zoomStart = t.zoomEnd
	}
}
