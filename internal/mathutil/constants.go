package mathutil

import "math"

// Scene defaults.
var (
	// DefaultViewDirection is the diagonal approach axis used for autoframing: normalize(1,1,1).
	DefaultViewDirection = Vec3{1, 1, 1}.Normalize()

	// WorldUp is the Y-up convention of three.js scenes.
	WorldUp = Vec3{0, 1, 0}
)

// IsFinite reports whether every component of v is a finite number.
func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
