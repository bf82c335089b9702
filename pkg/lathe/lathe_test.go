package lathe

import (
	"math"
	"testing"
)

func TestRevolveRejectsDegenerateInputs(t *testing.T) {
	cases := []struct {
		name     string
		profile  []Point
		segments int
	}{
		{"no points", nil, 16},
		{"one point", []Point{{R: 1, Z: 0}}, 16},
		{"two segments", []Point{{R: 1, Z: 0}, {R: 1, Z: 1}}, 2},
		{"zero segments", []Point{{R: 1, Z: 0}, {R: 1, Z: 1}}, 0},
	}
	for _, tc := range cases {
		m, err := Revolve(tc.profile, tc.segments)
		if err == nil {
			t.Errorf("%s: expected error, got mesh with %d vertices", tc.name, m.VertexCount())
			continue
		}
		if _, ok := err.(*InvalidGeometryParametersError); !ok {
			t.Errorf("%s: expected InvalidGeometryParametersError, got %T", tc.name, err)
		}
	}
}

func TestRevolveCounts(t *testing.T) {
	profile := []Point{{R: 1, Z: 0}, {R: 1, Z: 2}, {R: 0.5, Z: 3}}
	segments := 16
	m, err := Revolve(profile, segments)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}

	wantVerts := len(profile) * (segments + 1)
	if m.VertexCount() != wantVerts {
		t.Errorf("expected %d vertices (seam duplicated), got %d", wantVerts, m.VertexCount())
	}
	wantTris := (len(profile) - 1) * segments * 2
	if m.TriangleCount() != wantTris {
		t.Errorf("expected %d triangles, got %d", wantTris, m.TriangleCount())
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals length %d does not match vertices length %d", len(m.Normals), len(m.Vertices))
	}
}

func TestRevolveIndicesInBounds(t *testing.T) {
	profile := []Point{{R: 2, Z: 0}, {R: 2, Z: 1}, {R: 1, Z: 2}, {R: 0.2, Z: 2.5}}
	m, err := Revolve(profile, 24)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(m.Indices))
	}
	limit := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= limit {
			t.Fatalf("index %d at position %d out of bounds (vertex count %d)", idx, i, limit)
		}
	}
}

func TestRevolveSeamDuplication(t *testing.T) {
	profile := []Point{{R: 1.5, Z: 0}, {R: 1.5, Z: 1}}
	segments := 8
	m, err := Revolve(profile, segments)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}

	// First and last vertex of each ring sit at the same position.
	ringSize := segments + 1
	for ring := 0; ring < len(profile); ring++ {
		first := ring * ringSize * 3
		last := (ring*ringSize + segments) * 3
		for c := 0; c < 3; c++ {
			d := math.Abs(float64(m.Vertices[first+c] - m.Vertices[last+c]))
			if d > 1e-5 {
				t.Errorf("ring %d: seam vertices differ in component %d by %g", ring, c, d)
			}
		}
	}
}

func TestRevolveCylinderNormalsPointOutward(t *testing.T) {
	profile := []Point{{R: 3, Z: 0}, {R: 3, Z: 5}, {R: 3, Z: 10}}
	segments := 32
	m, err := Revolve(profile, segments)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}

	for i := 0; i < m.VertexCount(); i++ {
		vx := float64(m.Vertices[i*3])
		vy := float64(m.Vertices[i*3+1])
		nx := float64(m.Normals[i*3])
		ny := float64(m.Normals[i*3+1])
		nz := float64(m.Normals[i*3+2])

		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if math.Abs(length-1) > 1e-5 {
			t.Fatalf("vertex %d: normal length %g, expected unit", i, length)
		}
		if math.Abs(nz) > 1e-5 {
			t.Errorf("vertex %d: cylinder wall normal has axial component %g", i, nz)
		}
		// Normal is parallel to the radial direction of the vertex.
		vr := math.Hypot(vx, vy)
		dot := (vx*nx + vy*ny) / vr
		if dot < 0.999 {
			t.Errorf("vertex %d: normal not radially outward, dot %g", i, dot)
		}
	}
}

func TestRevolveConeNormalsTilt(t *testing.T) {
	// 45 degree cone: normal should split evenly between radial and axial.
	profile := []Point{{R: 0, Z: 0}, {R: 1, Z: 1}, {R: 2, Z: 2}}
	m, err := Revolve(profile, 16)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}

	want := 1 / math.Sqrt2
	// Middle ring, seam vertex: phi=0 so the normal is (nr, 0, nz).
	ringSize := 17
	i := 1 * ringSize
	nr := float64(m.Normals[i*3])
	nz := float64(m.Normals[i*3+2])
	if math.Abs(nr-want) > 1e-6 || math.Abs(nz-(-want)) > 1e-6 {
		t.Errorf("cone normal (%.6f, %.6f), expected (%.6f, %.6f)", nr, nz, want, -want)
	}
}

func TestRevolveCoincidentSamplesFallBackRadial(t *testing.T) {
	// Duplicated sample in the middle: its one-sided differences vanish,
	// so the normal falls back to pure radial instead of NaN.
	profile := []Point{{R: 1, Z: 0}, {R: 1, Z: 1}, {R: 1, Z: 1}, {R: 0.5, Z: 2}}
	m, err := Revolve(profile, 8)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}
	for i, n := range m.Normals {
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			t.Fatalf("normal component %d is not finite: %g", i, n)
		}
	}
}

func TestRevolveWindingFacesOutward(t *testing.T) {
	// For an ascending cylinder wall every triangle's geometric normal
	// must point away from the axis.
	profile := []Point{{R: 2, Z: 0}, {R: 2, Z: 4}}
	m, err := Revolve(profile, 12)
	if err != nil {
		t.Fatalf("revolve failed: %v", err)
	}

	for i := 0; i < len(m.Indices); i += 3 {
		ax, ay, az := vert(m.Vertices, m.Indices[i])
		bx, by, bz := vert(m.Vertices, m.Indices[i+1])
		cx, cy, cz := vert(m.Vertices, m.Indices[i+2])

		ux, uy, uz := bx-ax, by-ay, bz-az
		wx, wy, wz := cx-ax, cy-ay, cz-az
		fx := uy*wz - uz*wy
		fy := uz*wx - ux*wz

		// Project the face normal onto the centroid's radial direction.
		mx := (ax + bx + cx) / 3
		my := (ay + by + cy) / 3
		if fx*mx+fy*my <= 0 {
			t.Fatalf("triangle %d winds inward at centroid (%g, %g)", i/3, mx, my)
		}
	}
}

func vert(vs []float32, i uint32) (x, y, z float64) {
	return float64(vs[i*3]), float64(vs[i*3+1]), float64(vs[i*3+2])
}
