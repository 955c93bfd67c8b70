// Package autoframe places a perspective camera so that a bounding sphere fits entirely
// inside its vertical field of view, approached from a fixed direction.
package autoframe

import (
	"errors"
	"fmt"
	"math"

	"jsonmesh-renderer/internal/mathutil"
)

// DefaultMarginFactor keeps the framed sphere slightly away from the frustum edges.
const DefaultMarginFactor = 1.05

var (
	ErrInvalidFOV       = errors.New("autoframe: vertical field of view must be in (0, 180) degrees")
	ErrDegenerateSphere = errors.New("autoframe: bounding sphere radius must be positive and finite")
	ErrNonFiniteCenter  = errors.New("autoframe: bounding sphere center must be finite")
	ErrInvalidMargin    = errors.New("autoframe: margin factor must be >= 1")
	ErrOutOfRange       = errors.New("autoframe: camera placement is not finite")
)

// Config holds the tunables of the framing. The zero value means defaults.
type Config struct {
	MarginFactor float64       // 0 = DefaultMarginFactor
	Direction    mathutil.Vec3 // zero = mathutil.DefaultViewDirection; normalized on use
}

// DefaultConfig returns the margin and direction used by the viewer and batch renderer.
func DefaultConfig() Config {
	return Config{
		MarginFactor: DefaultMarginFactor,
		Direction:    mathutil.DefaultViewDirection,
	}
}

func (c Config) margin() float64 {
	if c.MarginFactor == 0 {
		return DefaultMarginFactor
	}
	return c.MarginFactor
}

func (c Config) direction() mathutil.Vec3 {
	d := c.Direction.Normalize()
	if d == (mathutil.Vec3{}) || !d.IsFinite() {
		return mathutil.DefaultViewDirection
	}
	return d
}

// Placement is the computed camera position and look-at target.
type Placement struct {
	Position mathutil.Vec3
	Target   mathutil.Vec3
	Distance float64 // |Position - Target|
}

// Target is the part of a camera the placement writes to. The camera is owned by the caller.
type Target interface {
	SetPosition(p mathutil.Vec3)
	LookAt(target mathutil.Vec3)
}

// ApplyTo writes the placement to a camera.
func (p Placement) ApplyTo(t Target) {
	t.SetPosition(p.Position)
	t.LookAt(p.Target)
}

// Fallback is the fixed placement (camera at z=5 looking at the origin),
// used when the inputs to Frame are invalid.
func Fallback() Placement {
	return Placement{
		Position: mathutil.Vec3{0, 0, 5},
		Target:   mathutil.Vec3{},
		Distance: 5,
	}
}

// ValidateFOV checks the vertical field of view (degrees).
func ValidateFOV(fov float64) error {
	if math.IsNaN(fov) || fov <= 0 || fov >= 180 {
		return fmt.Errorf("%w: got %v", ErrInvalidFOV, fov)
	}
	return nil
}

// FitDistance returns the distance at which a sphere of the given radius, enlarged by margin,
// exactly spans the vertical field of view: margin*2*radius / (2*tan(π*fov/360)).
func FitDistance(radius, fov, margin float64) (float64, error) {
	if err := ValidateFOV(fov); err != nil {
		return 0, err
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrDegenerateSphere, radius)
	}
	if math.IsNaN(margin) || math.IsInf(margin, 0) || margin < 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidMargin, margin)
	}

	diameter := margin * 2 * radius
	dist := diameter / (2 * math.Tan(math.Pi*fov/360))
	if math.IsInf(diameter, 0) || math.IsInf(dist, 0) || math.IsNaN(dist) {
		return 0, fmt.Errorf("%w: distance for radius %v", ErrOutOfRange, radius)
	}
	return dist, nil
}

// Frame computes the placement for sphere s seen through a vertical field of view of fov degrees.
// The target is s.Center exactly.
func Frame(s mathutil.Sphere, fov float64, cfg Config) (Placement, error) {
	if !s.Center.IsFinite() {
		return Placement{}, ErrNonFiniteCenter
	}
	dist, err := FitDistance(s.Radius, fov, cfg.margin())
	if err != nil {
		return Placement{}, err
	}

	pos := s.Center.Add(cfg.direction().Scale(dist))
	if !pos.IsFinite() {
		return Placement{}, fmt.Errorf("%w: position %v", ErrOutOfRange, pos)
	}
	return Placement{
		Position: pos,
		Target:   s.Center,
		Distance: dist,
	}, nil
}

// FrameOrFallback is Frame that falls back to the fixed default placement on invalid input.
// The returned error, if any, explains why the fallback was used.
func FrameOrFallback(s mathutil.Sphere, fov float64, cfg Config) (Placement, error) {
	p, err := Frame(s, fov, cfg)
	if err != nil {
		return Fallback(), err
	}
	return p, nil
}
