// Package lathe revolves 2D meridian profiles about the Z axis into
// triangle meshes. It is the one shared surface-of-revolution primitive:
// every vessel layer and every boss tube passes through Revolve rather
// than stitching its own rings.
package lathe

import (
	"fmt"
	"math"

	"github.com/chazu/mandrel/pkg/mesh"
)

// Point is one meridian sample: radial distance from the axis and axial
// position along it.
type Point struct {
	R float64 `json:"r"`
	Z float64 `json:"z"`
}

// MinProfilePoints and MinSegments are the smallest inputs that can form
// a triangulated surface. Anything below is rejected, not clamped.
const (
	MinProfilePoints = 2
	MinSegments      = 3
)

// InvalidGeometryParametersError reports a revolve request that cannot
// form a valid surface. It is the only error the geometry core raises;
// degenerate-but-valid inputs (zero-depth domes, coincident samples) are
// tolerated instead.
type InvalidGeometryParametersError struct {
	Points   int
	Segments int
}

func (e *InvalidGeometryParametersError) Error() string {
	return fmt.Sprintf("invalid geometry parameters: %d profile points (min %d), %d segments (min %d)",
		e.Points, MinProfilePoints, e.Segments, MinSegments)
}

// Revolve rotates profile about the Z axis into a closed ring of quads,
// two triangles each. For every profile sample it emits segments+1
// vertices; the seam vertex is duplicated so renderers can assign seam
// normals or texture coordinates independently.
//
// Vertex normals come from the meridian tangent: a central difference
// against the neighboring samples (one-sided at the two ends), turned 90
// degrees in the meridian plane, then rotated to the vertex's angular
// station. Coincident consecutive samples are legal; they produce
// zero-area stitch quads and give a crisp normal break, which the
// assembler relies on at the dome/cylinder joint.
func Revolve(profile []Point, segments int) (*mesh.Mesh, error) {
	if len(profile) < MinProfilePoints || segments < MinSegments {
		return nil, &InvalidGeometryParametersError{Points: len(profile), Segments: segments}
	}

	ringSize := segments + 1
	m := mesh.New("revolve")
	m.Vertices = make([]float32, 0, len(profile)*ringSize*3)
	m.Normals = make([]float32, 0, len(profile)*ringSize*3)
	m.Indices = make([]uint32, 0, (len(profile)-1)*segments*6)

	sin := make([]float64, ringSize)
	cos := make([]float64, ringSize)
	for j := 0; j <= segments; j++ {
		phi := 2 * math.Pi * float64(j) / float64(segments)
		sin[j] = math.Sin(phi)
		cos[j] = math.Cos(phi)
	}

	for i, p := range profile {
		nr, nz := meridianNormal(profile, i)
		for j := 0; j <= segments; j++ {
			m.Vertices = append(m.Vertices,
				float32(p.R*cos[j]), float32(p.R*sin[j]), float32(p.Z))
			m.Normals = append(m.Normals,
				float32(nr*cos[j]), float32(nr*sin[j]), float32(nz))
		}
	}

	for i := 0; i < len(profile)-1; i++ {
		row := uint32(i * ringSize)
		next := uint32((i + 1) * ringSize)
		for j := 0; j < segments; j++ {
			a := row + uint32(j)
			b := row + uint32(j) + 1
			c := next + uint32(j)
			d := next + uint32(j) + 1
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}

	return m, nil
}

// meridianNormal returns the outward unit normal of the meridian at
// sample i, in (r, z) components. The tangent is the central difference
// of the neighboring samples; rotating it -90 degrees gives the normal
// that points away from the enclosed volume (radially out on a wall,
// axially out on a cap). A degenerate tangent falls back to radial.
func meridianNormal(profile []Point, i int) (nr, nz float64) {
	prev := profile[maxInt(i-1, 0)]
	next := profile[minInt(i+1, len(profile)-1)]
	dr := next.R - prev.R
	dz := next.Z - prev.Z
	length := math.Hypot(dr, dz)
	if length < 1e-12 {
		return 1, 0
	}
	return dz / length, -dr / length
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
