package mesh

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"jsonmesh-renderer/internal/mathutil"
)

func TestLoadCube(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "cube.3js.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 8 {
		t.Fatalf("vertices = %d, want 8", len(m.Vertices))
	}
	if len(m.Faces) != 12 {
		t.Fatalf("faces = %d, want 12 (6 quads split)", len(m.Faces))
	}
	if len(m.Materials) != 1 || m.Materials[0].DbgName != "cube" {
		t.Fatalf("materials = %+v", m.Materials)
	}

	// Every face normal points away from the cube center.
	for i, f := range m.Faces {
		if f.MaterialIndex != 0 {
			t.Fatalf("face %d material = %d", i, f.MaterialIndex)
		}
		centroid := m.Vertices[f.A].Add(m.Vertices[f.B]).Add(m.Vertices[f.C]).Scale(1.0 / 3)
		if f.Normal.Dot(centroid) <= 0 {
			t.Fatalf("face %d normal %v points inward", i, f.Normal)
		}
		if math.Abs(f.Normal.Len()-1) > 1e-12 {
			t.Fatalf("face %d normal not unit: %v", i, f.Normal)
		}
	}

	s, err := m.BoundingSphere()
	if err != nil {
		t.Fatal(err)
	}
	if s.Center != (mathutil.Vec3{}) || math.Abs(s.Radius-math.Sqrt(3)) > 1e-12 {
		t.Fatalf("sphere = %+v", s)
	}
}

func TestQuadSplit(t *testing.T) {
	doc := `{"vertices":[0,0,0, 1,0,0, 1,1,0, 0,1,0], "faces":[1, 0,1,2,3]}`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 2 {
		t.Fatalf("faces = %d", len(m.Faces))
	}
	a, b := m.Faces[0], m.Faces[1]
	if a.A != 0 || a.B != 1 || a.C != 3 || b.A != 1 || b.B != 2 || b.C != 3 {
		t.Fatalf("split = %+v / %+v", a, b)
	}
	if a.MaterialIndex != -1 {
		t.Fatalf("material index = %d, want -1", a.MaterialIndex)
	}
}

func TestFaceAttributes(t *testing.T) {
	// type 2|8|32|128 = material, vertex uvs, vertex normals, vertex colors
	doc := `{
		"scale": 2,
		"vertices": [0,0,0, 2,0,0, 0,2,0],
		"normals": [0,0,1],
		"colors": [16711680, 65280, 255],
		"uvs": [[0,0, 1,0, 0,1], [9,9]],
		"faces": [170, 0,1,2, 4, 0,1,2, 0,0,0, 0,0,0, 0,1,2]
	}`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if m.Vertices[1] != (mathutil.Vec3{1, 0, 0}) {
		t.Fatalf("scale not applied: %v", m.Vertices[1])
	}
	f := m.Faces[0]
	if f.MaterialIndex != 4 {
		t.Fatalf("material = %d", f.MaterialIndex)
	}
	if !f.HasUV || f.UVs[1] != [2]float64{1, 0} || f.UVs[2] != [2]float64{0, 1} {
		t.Fatalf("uvs = %v", f.UVs)
	}
	if !f.HasVertexNorm || f.VertexNormals[0] != (mathutil.Vec3{0, 0, 1}) {
		t.Fatalf("normals = %v", f.VertexNormals)
	}
	if !f.HasVertColor || f.VertexColors != [3]uint32{0xff0000, 0x00ff00, 0x0000ff} {
		t.Fatalf("colors = %x", f.VertexColors)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"truncated", `{"vertices":[0,0,0, 1,0,0, 0,1,0], "faces":[0, 0,1]}`, ErrTruncatedFaces},
		{"vertex out of range", `{"vertices":[0,0,0, 1,0,0, 0,1,0], "faces":[0, 0,1,9]}`, ErrIndexOutOfRange},
		{"color out of range", `{"vertices":[0,0,0, 1,0,0, 0,1,0], "faces":[64, 0,1,2, 3]}`, ErrIndexOutOfRange},
		{"no vertices key", `{"workers":4,"format":"png"}`, ErrNotModel},
		{"null vertices", `{"vertices":null,"faces":[]}`, ErrNotModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse([]byte(`{"vertices":[0,0]}`)); err == nil {
		t.Fatal("expected error for partial vertex")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Fatal("expected json error")
	}
}

func TestEmptyGeometry(t *testing.T) {
	m, err := Parse([]byte(`{"vertices":[],"faces":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.BoundingSphere(); !errors.Is(err, ErrEmptyGeometry) {
		t.Fatalf("err = %v", err)
	}
	if _, err := m.BoundingBox(); !errors.Is(err, ErrEmptyGeometry) {
		t.Fatalf("err = %v", err)
	}
}

func TestMaterialVertexColors(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{"vertex", true},
		{"none", false},
		{float64(2), true},
	}
	for _, tt := range tests {
		m := Material{VertexColors: tt.v}
		if got := m.UsesVertexColors(); got != tt.want {
			t.Errorf("UsesVertexColors(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
