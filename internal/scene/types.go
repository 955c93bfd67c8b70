package scene

import (
	"image"
	"image/color"

	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
)

// LightKind selects the light model.
type LightKind int

const (
	Ambient LightKind = iota
	Point
)

// Light is an ambient or point light. Color components are linear 0..1.
type Light struct {
	Kind      LightKind
	Color     mathutil.Vec3
	Intensity float64
	Distance  float64 // point lights: 0 = no falloff
	Position  mathutil.Vec3
}

// DefaultLights returns the stock scene lights: a 0x707070 point light at
// (5,5,10) with range 100 and a 0x101010 ambient light.
func DefaultLights() []Light {
	return []Light{
		{Kind: Point, Color: HexColor(0x707070), Intensity: 1, Distance: 100, Position: mathutil.Vec3{5, 5, 10}},
		{Kind: Ambient, Color: HexColor(0x101010), Intensity: 1},
	}
}

// Material is the resolved surface description used by the renderers.
type Material struct {
	Name         string
	Color        mathutil.Vec3 // diffuse
	Ambient      mathutil.Vec3
	Emissive     mathutil.Vec3
	Opacity      float64
	VertexColors bool
	Wireframe    bool
	Texture      *image.NRGBA // nil when untextured
}

// DefaultMaterial is the fallback Lambert material (0x00ff00).
func DefaultMaterial() Material {
	return Material{
		Name:    "default",
		Color:   HexColor(0x00ff00),
		Ambient: mathutil.Vec3{1, 1, 1},
		Opacity: 1,
	}
}

// HexColor converts 0xRRGGBB into 0..1 components.
func HexColor(hex uint32) mathutil.Vec3 {
	return mathutil.Vec3{
		float64(hex>>16&0xff) / 255,
		float64(hex>>8&0xff) / 255,
		float64(hex&0xff) / 255,
	}
}

// ToRGBA converts 0..1 components into an opaque color.
func ToRGBA(c mathutil.Vec3) color.NRGBA {
	return color.NRGBA{R: clamp255(c[0] * 255), G: clamp255(c[1] * 255), B: clamp255(c[2] * 255), A: 255}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Scene is the renderable state: the model, its resolved materials, lights and the model's
// Euler rotation (XYZ order, radians).
type Scene struct {
	Model      *mesh.Model
	Materials  []Material
	Lights     []Light
	Rotation   mathutil.Vec3
	Background color.NRGBA
}

// MaterialFor returns the material of a face, falling back to the first one.
func (s *Scene) MaterialFor(f *mesh.Face) *Material {
	if f.MaterialIndex >= 0 && f.MaterialIndex < len(s.Materials) {
		return &s.Materials[f.MaterialIndex]
	}
	return &s.Materials[0]
}

// ModelMatrix returns the rotation applied to the model's vertices.
func (s *Scene) ModelMatrix() mathutil.Mat3 {
	return mathutil.EulerXYZ(s.Rotation)
}

// Shade evaluates the Lambert light model of three.js MeshLambertMaterial for a surface
// point p with unit normal n: emissive + diffuse * (ambient*ambientLights + Σ point terms).
// Point lights fall off as 1 - min(d/distance, 1).
func (s *Scene) Shade(m *Material, diffuse, p, n mathutil.Vec3) mathutil.Vec3 {
	var ambient, direct mathutil.Vec3
	for i := range s.Lights {
		l := &s.Lights[i]
		switch l.Kind {
		case Ambient:
			ambient = ambient.Add(l.Color.Scale(l.Intensity))
		case Point:
			toLight := l.Position.Sub(p)
			dist := toLight.Len()
			atten := 1.0
			if l.Distance > 0 {
				atten = 1 - dist/l.Distance
				if atten < 0 {
					atten = 0
				}
			}
			// Double-sided: light reaches both faces.
			ndl := n.Dot(toLight.Normalize())
			if ndl < 0 {
				ndl = -ndl
			}
			direct = direct.Add(l.Color.Scale(l.Intensity * ndl * atten))
		}
	}
	return mathutil.Vec3{
		m.Emissive[0] + diffuse[0]*(ambient[0]*m.Ambient[0]+direct[0]),
		m.Emissive[1] + diffuse[1]*(ambient[1]*m.Ambient[1]+direct[1]),
		m.Emissive[2] + diffuse[2]*(ambient[2]*m.Ambient[2]+direct[2]),
	}
}
