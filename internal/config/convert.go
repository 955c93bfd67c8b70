package config

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"jsonmesh-renderer/internal/autoframe"
	"jsonmesh-renderer/internal/controls"
	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/scene"
)

// ParseHex parses "#rrggbb", "0xrrggbb" or "rrggbb".
func ParseHex(s string) (uint32, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(t) != 6 {
		return 0, fmt.Errorf("config: bad color %q", s)
	}
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("config: bad color %q: %w", s, err)
	}
	return uint32(v), nil
}

// BackgroundColor parses Background. Empty means fully transparent.
func (c *Config) BackgroundColor() (color.NRGBA, error) {
	if c.Background == "" {
		return color.NRGBA{}, nil
	}
	s := strings.TrimPrefix(c.Background, "#")
	alpha := uint8(255)
	if len(s) == 8 {
		a, err := strconv.ParseUint(s[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("config: bad background %q: %w", c.Background, err)
		}
		alpha = uint8(a)
		s = s[:6]
	}
	rgb, err := ParseHex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: alpha}, nil
}

// SceneLights converts the light list. An empty list means the default scene lights.
func (c *Config) SceneLights() ([]scene.Light, error) {
	if len(c.Lights) == 0 {
		return scene.DefaultLights(), nil
	}
	out := make([]scene.Light, 0, len(c.Lights))
	for i, lc := range c.Lights {
		hex, err := ParseHex(lc.Color)
		if err != nil {
			return nil, fmt.Errorf("config: light %d: %w", i, err)
		}
		l := scene.Light{
			Color:     scene.HexColor(hex),
			Intensity: lc.Intensity,
			Distance:  lc.Distance,
			Position:  mathutil.Vec3(lc.Position),
		}
		if l.Intensity == 0 {
			l.Intensity = 1
		}
		switch strings.ToLower(lc.Type) {
		case "ambient":
			l.Kind = scene.Ambient
		case "point":
			l.Kind = scene.Point
		default:
			return nil, fmt.Errorf("config: light %d: unknown type %q", i, lc.Type)
		}
		out = append(out, l)
	}
	return out, nil
}

// FrameConfig returns the autoframe settings.
func (c *Config) FrameConfig() autoframe.Config {
	return autoframe.Config{
		MarginFactor: c.Camera.Margin,
		Direction:    mathutil.Vec3(c.Camera.Direction),
	}
}

// CameraConfig returns the camera settings for scene.Builder.
func (c *Config) CameraConfig() scene.CameraConfig {
	return scene.CameraConfig{
		FOV:    c.Camera.FOV,
		Aspect: 1,
		Near:   c.Camera.Near,
		Far:    c.Camera.Far,
	}
}

// ApplyTrackball copies the non-zero trackball tunables onto t.
func (c *Config) ApplyTrackball(t *controls.Trackball) {
	tb := c.Trackball
	if tb.RotateSpeed > 0 {
		t.RotateSpeed = tb.RotateSpeed
	}
	if tb.ZoomSpeed > 0 {
		t.ZoomSpeed = tb.ZoomSpeed
	}
	if tb.PanSpeed > 0 {
		t.PanSpeed = tb.PanSpeed
	}
	if tb.DampingFactor > 0 && tb.DampingFactor < 1 {
		t.DynamicDampingFactor = tb.DampingFactor
	}
	t.StaticMoving = tb.StaticMoving
	t.MinDistance = tb.MinDistance
	if tb.MaxDistance > 0 {
		t.MaxDistance = tb.MaxDistance
	} else {
		t.MaxDistance = math.Inf(1)
	}
}
