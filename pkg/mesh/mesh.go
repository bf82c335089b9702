// Package mesh defines the flat-buffer triangle mesh that every part of
// the engine produces and consumes. All arrays are flat: vertices has 3
// floats per vertex (x,y,z), normals has 3 floats per vertex, indices has
// 3 uint32s per triangle. This layout is the interchange contract with
// external renderers, so it never grows per-vertex objects.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangle mesh suitable for rendering.
type Mesh struct {
	Vertices []float32  `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32  `json:"normals"`  // [nx0,ny0,nz0, ...] unit length
	Indices  []uint32   `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string     `json:"name"`     // which layer or fitting this is
	Color    [3]float32 `json:"color"`    // RGB in [0,1]
	Opacity  float32    `json:"opacity"`  // [0,1], 1 = opaque
}

// New returns an empty mesh with the given name, full opacity and a
// neutral gray color.
func New(name string) *Mesh {
	return &Mesh{Name: name, Color: [3]float32{0.5, 0.5, 0.5}, Opacity: 1}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Clone returns a deep copy sharing no buffers with the original.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]float32(nil), m.Vertices...)
	c.Normals = append([]float32(nil), m.Normals...)
	c.Indices = append([]uint32(nil), m.Indices...)
	return &c
}

// Translate moves every vertex by (dx, dy, dz). Normals are unaffected.
func (m *Mesh) Translate(dx, dy, dz float64) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		m.Vertices[i] += float32(dx)
		m.Vertices[i+1] += float32(dy)
		m.Vertices[i+2] += float32(dz)
	}
}

// MirrorZ reflects the mesh through the z=0 plane. Triangle winding is
// flipped so outward faces stay outward.
func (m *Mesh) MirrorZ() {
	for i := 2; i < len(m.Vertices); i += 3 {
		m.Vertices[i] = -m.Vertices[i]
	}
	for i := 2; i < len(m.Normals); i += 3 {
		m.Normals[i] = -m.Normals[i]
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
	}
}

// Append merges other into m, re-basing other's indices past m's existing
// vertices. Name, color and opacity of m are kept.
func (m *Mesh) Append(other *Mesh) {
	if other == nil || other.IsEmpty() {
		return
	}
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Bounds returns the axis-aligned bounding box. An empty mesh reports a
// zero box.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for k := 0; k < 3; k++ {
		min[k] = math.Inf(1)
		max[k] = math.Inf(-1)
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			v := float64(m.Vertices[i+k])
			if v < min[k] {
				min[k] = v
			}
			if v > max[k] {
				max[k] = v
			}
		}
	}
	return min, max
}

// RadialExtent returns the largest distance of any vertex from the Z axis.
func (m *Mesh) RadialExtent() float64 {
	var maxR2 float64
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		x := float64(m.Vertices[i])
		y := float64(m.Vertices[i+1])
		if r2 := x*x + y*y; r2 > maxR2 {
			maxR2 = r2
		}
	}
	return math.Sqrt(maxR2)
}

// vertexAt returns vertex i as an r3 vector.
func (m *Mesh) vertexAt(i uint32) r3.Vec {
	return r3.Vec{
		X: float64(m.Vertices[i*3]),
		Y: float64(m.Vertices[i*3+1]),
		Z: float64(m.Vertices[i*3+2]),
	}
}

// RecomputeNormals rebuilds per-vertex normals by accumulating the area-
// weighted face normal of every incident triangle, then normalizing.
// Used after operations that invalidate analytic normals (mirroring a
// merged buffer, kernel output without normals).
func (m *Mesh) RecomputeNormals() {
	normals := make([]r3.Vec, m.VertexCount())
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		a := m.vertexAt(i0)
		n := r3.Cross(r3.Sub(m.vertexAt(i1), a), r3.Sub(m.vertexAt(i2), a))
		normals[i0] = r3.Add(normals[i0], n)
		normals[i1] = r3.Add(normals[i1], n)
		normals[i2] = r3.Add(normals[i2], n)
	}
	m.Normals = make([]float32, len(normals)*3)
	for i, n := range normals {
		if r3.Norm(n) > 1e-12 {
			n = r3.Unit(n)
		}
		m.Normals[i*3] = float32(n.X)
		m.Normals[i*3+1] = float32(n.Y)
		m.Normals[i*3+2] = float32(n.Z)
	}
}

// ParseHexColor converts a "#rrggbb" appearance token to an RGB triplet in
// [0,1]. Malformed tokens fall back to mid gray so a bad appearance string
// never breaks rendering.
func ParseHexColor(s string) [3]float32 {
	gray := [3]float32{0.5, 0.5, 0.5}
	if len(s) != 7 || s[0] != '#' {
		return gray
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		hi, okHi := hexNibble(s[1+i*2])
		lo, okLo := hexNibble(s[2+i*2])
		if !okHi || !okLo {
			return gray
		}
		c[i] = float32(hi*16+lo) / 255
	}
	return c
}

func hexNibble(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}
