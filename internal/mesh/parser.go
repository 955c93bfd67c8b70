// Package mesh parses three.js JSON models (format version 3), the format the
// three.js JSONLoader consumes and exporters for Blender and 3ds Max produce.
package mesh

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"jsonmesh-renderer/internal/mathutil"
)

var (
	ErrTruncatedFaces  = errors.New("mesh: truncated face stream")
	ErrIndexOutOfRange = errors.New("mesh: index out of range")
	ErrEmptyGeometry   = errors.New("mesh: geometry has no vertices")
	ErrNotModel        = errors.New("mesh: document has no \"vertices\" array")
)

// Face type bits of the "faces" stream.
const (
	bitQuad = 1 << iota
	bitMaterial
	bitFaceUV
	bitFaceVertexUV
	bitFaceNormal
	bitFaceVertexNormal
	bitFaceColor
	bitFaceVertexColor
)

// rawModel matches the JSON document layout.
type rawModel struct {
	Metadata struct {
		FormatVersion float64 `json:"formatVersion"`
	} `json:"metadata"`
	Scale     float64     `json:"scale"`
	Vertices  []float64   `json:"vertices"`
	Normals   []float64   `json:"normals"`
	Colors    []uint32    `json:"colors"`
	UVs       [][]float64 `json:"uvs"`
	Faces     []int       `json:"faces"`
	Materials []Material  `json:"materials"`
}

// Load reads and parses a model file.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: read %s: %w", path, err)
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("mesh: parse %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a three.js JSON model document.
func Parse(data []byte) (*Model, error) {
	var doc rawModel
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mesh: decode json: %w", err)
	}
	if doc.Vertices == nil {
		return nil, ErrNotModel
	}
	if len(doc.Vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh: vertex array length %d is not a multiple of 3", len(doc.Vertices))
	}

	scale := 1.0
	if doc.Scale != 0 {
		scale = 1 / doc.Scale
	}

	m := &Model{
		FormatVersion: doc.Metadata.FormatVersion,
		Vertices:      make([]mathutil.Vec3, len(doc.Vertices)/3),
		Materials:     doc.Materials,
	}
	for i := range m.Vertices {
		m.Vertices[i] = mathutil.Vec3{
			doc.Vertices[i*3] * scale,
			doc.Vertices[i*3+1] * scale,
			doc.Vertices[i*3+2] * scale,
		}
	}

	r := faceReader{doc: &doc, nVerts: len(m.Vertices)}
	faces, err := r.read()
	if err != nil {
		return nil, err
	}
	m.Faces = faces
	m.ComputeFaceNormals()

	return m, nil
}

type faceReader struct {
	doc    *rawModel
	nVerts int
	off    int
}

func (r *faceReader) next() (int, error) {
	if r.off >= len(r.doc.Faces) {
		return 0, fmt.Errorf("%w at offset %d", ErrTruncatedFaces, r.off)
	}
	v := r.doc.Faces[r.off]
	r.off++
	return v, nil
}

func (r *faceReader) nextN(n int) ([4]int, error) {
	var out [4]int
	for i := 0; i < n; i++ {
		v, err := r.next()
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *faceReader) read() ([]Face, error) {
	var faces []Face
	nUVLayers := len(r.doc.UVs)

	for r.off < len(r.doc.Faces) {
		typ, err := r.next()
		if err != nil {
			return nil, err
		}
		n := 3
		if typ&bitQuad != 0 {
			n = 4
		}

		vi, err := r.nextN(n)
		if err != nil {
			return nil, err
		}
		for k := 0; k < n; k++ {
			if vi[k] < 0 || vi[k] >= r.nVerts {
				return nil, fmt.Errorf("%w: vertex %d (have %d)", ErrIndexOutOfRange, vi[k], r.nVerts)
			}
		}

		matIdx := -1
		if typ&bitMaterial != 0 {
			if matIdx, err = r.next(); err != nil {
				return nil, err
			}
		}

		// Face UVs are read and discarded; three.js ignores them too.
		if typ&bitFaceUV != 0 {
			for l := 0; l < nUVLayers; l++ {
				if _, err := r.next(); err != nil {
					return nil, err
				}
			}
		}

		var uvs [4][2]float64
		hasUV := false
		if typ&bitFaceVertexUV != 0 {
			for l := 0; l < nUVLayers; l++ {
				idx, err := r.nextN(n)
				if err != nil {
					return nil, err
				}
				if l != 0 {
					continue
				}
				layer := r.doc.UVs[0]
				for k := 0; k < n; k++ {
					if idx[k] < 0 || idx[k]*2+1 >= len(layer) {
						return nil, fmt.Errorf("%w: uv %d", ErrIndexOutOfRange, idx[k])
					}
					uvs[k] = [2]float64{layer[idx[k]*2], layer[idx[k]*2+1]}
				}
				hasUV = true
			}
		}

		// Face normals are recomputed from the winding after parsing.
		if typ&bitFaceNormal != 0 {
			idx, err := r.next()
			if err != nil {
				return nil, err
			}
			if _, err := r.normal(idx); err != nil {
				return nil, err
			}
		}

		var vnormals [4]mathutil.Vec3
		hasVN := false
		if typ&bitFaceVertexNormal != 0 {
			idx, err := r.nextN(n)
			if err != nil {
				return nil, err
			}
			for k := 0; k < n; k++ {
				if vnormals[k], err = r.normal(idx[k]); err != nil {
					return nil, err
				}
			}
			hasVN = true
		}

		var faceColor uint32
		hasColor := false
		if typ&bitFaceColor != 0 {
			idx, err := r.next()
			if err != nil {
				return nil, err
			}
			if faceColor, err = r.color(idx); err != nil {
				return nil, err
			}
			hasColor = true
		}

		var vcolors [4]uint32
		hasVC := false
		if typ&bitFaceVertexColor != 0 {
			idx, err := r.nextN(n)
			if err != nil {
				return nil, err
			}
			for k := 0; k < n; k++ {
				if vcolors[k], err = r.color(idx[k]); err != nil {
					return nil, err
				}
			}
			hasVC = true
		}

		// Quads split into (a,b,d) and (b,c,d).
		corners := [][3]int{{0, 1, 2}}
		if n == 4 {
			corners = [][3]int{{0, 1, 3}, {1, 2, 3}}
		}
		for _, c := range corners {
			f := Face{
				A:             vi[c[0]],
				B:             vi[c[1]],
				C:             vi[c[2]],
				MaterialIndex: matIdx,
				HasVertexNorm: hasVN,
				Color:         faceColor,
				HasColor:      hasColor,
				HasVertColor:  hasVC,
				HasUV:         hasUV,
			}
			for k := 0; k < 3; k++ {
				f.VertexNormals[k] = vnormals[c[k]]
				f.VertexColors[k] = vcolors[c[k]]
				f.UVs[k] = uvs[c[k]]
			}
			faces = append(faces, f)
		}
	}

	return faces, nil
}

func (r *faceReader) normal(idx int) (mathutil.Vec3, error) {
	ns := r.doc.Normals
	if idx < 0 || idx*3+2 >= len(ns) {
		return mathutil.Vec3{}, fmt.Errorf("%w: normal %d", ErrIndexOutOfRange, idx)
	}
	return mathutil.Vec3{ns[idx*3], ns[idx*3+1], ns[idx*3+2]}, nil
}

func (r *faceReader) color(idx int) (uint32, error) {
	if idx < 0 || idx >= len(r.doc.Colors) {
		return 0, fmt.Errorf("%w: color %d", ErrIndexOutOfRange, idx)
	}
	return r.doc.Colors[idx], nil
}

// ComputeFaceNormals fills Face.Normal from the winding of each face
// (counter-clockwise is front-facing). Degenerate faces get a zero normal.
func (m *Model) ComputeFaceNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		a, b, c := m.Vertices[f.A], m.Vertices[f.B], m.Vertices[f.C]
		f.Normal = c.Sub(b).Cross(a.Sub(b)).Normalize()
	}
}

// BoundingBox returns the axis-aligned bounds of all vertices.
func (m *Model) BoundingBox() (mathutil.Box3, error) {
	if len(m.Vertices) == 0 {
		return mathutil.Box3{}, ErrEmptyGeometry
	}
	box := mathutil.EmptyBox3()
	for _, v := range m.Vertices {
		box = box.Expand(v)
	}
	return box, nil
}

// BoundingSphere returns the sphere three.js computes for the geometry: centered on the
// bounding box, radius to the farthest vertex. Non-finite vertices are an error.
func (m *Model) BoundingSphere() (mathutil.Sphere, error) {
	if len(m.Vertices) == 0 {
		return mathutil.Sphere{}, ErrEmptyGeometry
	}
	for i, v := range m.Vertices {
		if !v.IsFinite() {
			return mathutil.Sphere{}, fmt.Errorf("mesh: vertex %d is not finite: %v", i, v)
		}
	}
	s := mathutil.SphereFromPoints(m.Vertices)
	if math.IsNaN(s.Radius) {
		return mathutil.Sphere{}, fmt.Errorf("mesh: bounding sphere radius is NaN")
	}
	return s, nil
}
