// Package camera holds the perspective camera descriptor shared by the scene builder,
// the trackball controls and the render backends.
package camera

import (
	"math"

	"jsonmesh-renderer/internal/mathutil"
)

// Default perspective: 75° vertical fov, aspect 1, near 0.1, far 1000.
const (
	DefaultFOV    = 75.0
	DefaultAspect = 1.0
	DefaultNear   = 0.1
	DefaultFar    = 1000.0
)

// Perspective is a camera with a vertical field of view in degrees.
type Perspective struct {
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64

	Position mathutil.Vec3
	Target   mathutil.Vec3
	Up       mathutil.Vec3
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float64) *Perspective {
	return &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: mathutil.Vec3{0, 0, -1},
		Up:     mathutil.WorldUp,
	}
}

func (c *Perspective) SetPosition(p mathutil.Vec3) {
	c.Position = p
}

func (c *Perspective) LookAt(t mathutil.Vec3) {
	c.Target = t
}

// SetAspect updates the aspect ratio from a viewport size.
func (c *Perspective) SetAspect(w, h int) {
	if w > 0 && h > 0 {
		c.Aspect = float64(w) / float64(h)
	}
}

func (c *Perspective) View() mathutil.Mat4 {
	up := c.Up
	if up == (mathutil.Vec3{}) {
		up = mathutil.WorldUp
	}
	return mathutil.LookAt(c.Position, c.Target, up)
}

func (c *Perspective) Projection() mathutil.Mat4 {
	return mathutil.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection × View.
func (c *Perspective) ViewProjection() mathutil.Mat4 {
	return mathutil.Mat4Mul(c.Projection(), c.View())
}

// FitClipPlanes widens near/far so the sphere lies between them as seen from the
// current position. Position and target are not touched. Planes are only ever widened.
func (c *Perspective) FitClipPlanes(s mathutil.Sphere) {
	d := c.Position.Sub(s.Center).Len()
	far := d + s.Radius
	if far > c.Far {
		c.Far = far * 1.01
	}
	near := d - s.Radius
	if near > 0 && near < c.Near {
		c.Near = math.Max(near*0.5, 1e-6)
	}
}

// Clone returns an independent copy.
func (c *Perspective) Clone() *Perspective {
	cp := *c
	return &cp
}
