package mesh

import "jsonmesh-renderer/internal/mathutil"

// Face is a triangle. Quads from the file are split into two faces.
// Index fields refer into the owning Model's arrays; -1 means absent.
type Face struct {
	A, B, C       int
	MaterialIndex int

	Normal        mathutil.Vec3    // from ComputeFaceNormals
	VertexNormals [3]mathutil.Vec3 // zero when the file has none
	HasVertexNorm bool

	Color        uint32 // 0xRRGGBB
	HasColor     bool
	VertexColors [3]uint32
	HasVertColor bool

	UVs   [3][2]float64 // first UV layer only
	HasUV bool
}

// Material holds the subset of three.js JSON material fields the renderers use.
type Material struct {
	DbgName       string      `json:"DbgName"`
	Shading       string      `json:"shading"` // "Lambert", "Phong", "Basic"
	ColorDiffuse  *[3]float64 `json:"colorDiffuse"`
	ColorAmbient  *[3]float64 `json:"colorAmbient"`
	ColorEmissive *[3]float64 `json:"colorEmissive"`
	ColorSpecular *[3]float64 `json:"colorSpecular"`
	MapDiffuse    string      `json:"mapDiffuse"`
	Opacity       *float64    `json:"opacity"`
	Transparent   bool        `json:"transparent"`
	VertexColors  any         `json:"vertexColors"` // bool or "face"/"vertex" in exporter output
	Wireframe     bool        `json:"wireframe"`
}

// UsesVertexColors reports whether the material asks for per-face or per-vertex colors.
func (m *Material) UsesVertexColors() bool {
	switch v := m.VertexColors.(type) {
	case bool:
		return v
	case string:
		return v != "" && v != "none"
	case float64:
		return v != 0
	}
	return false
}

// Model is a parsed three.js JSON model (format version 3).
type Model struct {
	FormatVersion float64
	Vertices      []mathutil.Vec3
	Faces         []Face
	Materials     []Material
}
