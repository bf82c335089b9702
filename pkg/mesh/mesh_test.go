package mesh

import (
	"math"
	"testing"
)

// quad returns a unit square in the z=0 plane, two triangles wound CCW
// so the face normal points +Z.
func quad(t *testing.T) *Mesh {
	t.Helper()
	m := New("quad")
	m.Vertices = []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}
	m.Indices = []uint32{0, 1, 2, 0, 2, 3}
	m.RecomputeNormals()
	return m
}

func TestCounts(t *testing.T) {
	m := quad(t)
	if m.VertexCount() != 4 {
		t.Fatalf("VertexCount = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	if m.IsEmpty() {
		t.Fatal("quad reported empty")
	}
}

func TestRecomputeNormals(t *testing.T) {
	m := quad(t)
	if len(m.Normals) != len(m.Vertices) {
		t.Fatalf("normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	for i := 0; i < m.VertexCount(); i++ {
		nx := float64(m.Normals[i*3])
		ny := float64(m.Normals[i*3+1])
		nz := float64(m.Normals[i*3+2])
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if math.Abs(length-1) > 1e-5 {
			t.Errorf("vertex %d normal length %f, want 1", i, length)
		}
		if nz < 0.99 {
			t.Errorf("vertex %d normal = (%f,%f,%f), want +Z", i, nx, ny, nz)
		}
	}
}

func TestTranslate(t *testing.T) {
	m := quad(t)
	m.Translate(10, -5, 2)
	if m.Vertices[0] != 10 || m.Vertices[1] != -5 || m.Vertices[2] != 2 {
		t.Fatalf("first vertex = (%f,%f,%f), want (10,-5,2)", m.Vertices[0], m.Vertices[1], m.Vertices[2])
	}
	// Normals must be untouched by translation.
	if m.Normals[2] < 0.99 {
		t.Errorf("normal changed by Translate: %f", m.Normals[2])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := quad(t)
	c := m.Clone()
	c.Translate(100, 0, 0)
	if m.Vertices[0] == c.Vertices[0] {
		t.Fatal("translating the clone moved the original")
	}
	c.Indices[0] = 99
	if m.Indices[0] == 99 {
		t.Fatal("clone shares the index buffer")
	}
	if c.Name != m.Name || c.Opacity != m.Opacity {
		t.Errorf("clone lost render attributes: %q %.2f", c.Name, c.Opacity)
	}
}

func TestMirrorZ(t *testing.T) {
	m := quad(t)
	m.Translate(0, 0, 3)
	m.MirrorZ()
	if m.Vertices[2] != -3 {
		t.Fatalf("mirrored z = %f, want -3", m.Vertices[2])
	}
	// Winding flip: recomputing normals after the mirror must give -Z.
	m.RecomputeNormals()
	if m.Normals[2] > -0.99 {
		t.Errorf("mirrored normal z = %f, want -1", m.Normals[2])
	}
}

func TestAppendRebasesIndices(t *testing.T) {
	a := quad(t)
	b := quad(t)
	b.Translate(5, 0, 0)
	a.Append(b)

	if a.VertexCount() != 8 {
		t.Fatalf("merged vertex count = %d, want 8", a.VertexCount())
	}
	if a.TriangleCount() != 4 {
		t.Fatalf("merged triangle count = %d, want 4", a.TriangleCount())
	}
	if len(a.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(a.Indices))
	}
	limit := uint32(a.VertexCount())
	for i, idx := range a.Indices {
		if idx >= limit {
			t.Fatalf("index %d = %d out of bounds (%d vertices)", i, idx, limit)
		}
	}
	// The second quad's first triangle must reference the re-based vertices.
	if a.Indices[6] != 4 {
		t.Errorf("re-based index = %d, want 4", a.Indices[6])
	}
}

func TestBoundsAndRadialExtent(t *testing.T) {
	m := quad(t)
	m.Translate(1, 2, 3)
	min, max := m.Bounds()
	wantMin := [3]float64{1, 2, 3}
	wantMax := [3]float64{2, 3, 3}
	for k := 0; k < 3; k++ {
		if math.Abs(min[k]-wantMin[k]) > 1e-6 || math.Abs(max[k]-wantMax[k]) > 1e-6 {
			t.Fatalf("bounds[%d] = [%f,%f], want [%f,%f]", k, min[k], max[k], wantMin[k], wantMax[k])
		}
	}
	want := math.Sqrt(2*2 + 3*3)
	if r := m.RadialExtent(); math.Abs(r-want) > 1e-6 {
		t.Errorf("RadialExtent = %f, want %f", r, want)
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want [3]float32
	}{
		{"#ff0000", [3]float32{1, 0, 0}},
		{"#00ff00", [3]float32{0, 1, 0}},
		{"#0000FF", [3]float32{0, 0, 1}},
		{"#2e3138", [3]float32{46.0 / 255, 49.0 / 255, 56.0 / 255}},
		{"not-a-color", [3]float32{0.5, 0.5, 0.5}},
		{"#12345", [3]float32{0.5, 0.5, 0.5}},
		{"#gg0000", [3]float32{0.5, 0.5, 0.5}},
	}
	for _, tc := range cases {
		got := ParseHexColor(tc.in)
		for k := 0; k < 3; k++ {
			if math.Abs(float64(got[k]-tc.want[k])) > 1e-6 {
				t.Errorf("ParseHexColor(%q)[%d] = %f, want %f", tc.in, k, got[k], tc.want[k])
			}
		}
	}
}
