package mathutil

import "math"

// Box3 is an axis-aligned bounding box. The zero value is not empty; use EmptyBox3.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns a box that any Expand call will replace.
func EmptyBox3() Box3 {
	return Box3{
		Min: Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// IsEmpty reports whether no point has been added.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Expand grows the box to contain p.
func (b Box3) Expand(p Vec3) Box3 {
	for k := 0; k < 3; k++ {
		if p[k] < b.Min[k] {
			b.Min[k] = p[k]
		}
		if p[k] > b.Max[k] {
			b.Max[k] = p[k]
		}
	}
	return b
}

func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float64
}

// SphereFromPoints centers the sphere on the bounding box of pts and takes the farthest
// point as radius. Not minimal, but stable and what three.js geometries compute.
// Returns a zero sphere for no points.
func SphereFromPoints(pts []Vec3) Sphere {
	if len(pts) == 0 {
		return Sphere{}
	}
	box := EmptyBox3()
	for _, p := range pts {
		box = box.Expand(p)
	}
	c := box.Center()
	var maxSq float64
	for _, p := range pts {
		if d := p.DistSq(c); d > maxSq {
			maxSq = d
		}
	}
	return Sphere{Center: c, Radius: math.Sqrt(maxSq)}
}

// Contains reports whether p lies inside the sphere (with a small tolerance).
func (s Sphere) Contains(p Vec3) bool {
	return p.DistSq(s.Center) <= s.Radius*s.Radius*(1+1e-9)+1e-12
}
