package boss

import (
	"math"
	"testing"

	"github.com/chazu/mandrel/pkg/mesh"
)

func TestGenerateAllFamiliesWellFormed(t *testing.T) {
	metal := mesh.ParseHexColor(MetallicAppearance)
	for _, family := range Families() {
		m := Generate(Config{Family: family})
		if m.IsEmpty() {
			t.Fatalf("%s: empty mesh", family)
		}
		if len(m.Indices)%3 != 0 {
			t.Errorf("%s: index count %d not a multiple of 3", family, len(m.Indices))
		}
		limit := uint32(m.VertexCount())
		for i, idx := range m.Indices {
			if idx >= limit {
				t.Fatalf("%s: index %d at position %d out of bounds (%d vertices)",
					family, idx, i, limit)
			}
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("%s: %d normal components vs %d vertex components",
				family, len(m.Normals), len(m.Vertices))
		}
		if m.Color != metal {
			t.Errorf("%s: color %v, want the metallic token", family, m.Color)
		}
		if m.Opacity != 1 {
			t.Errorf("%s: opacity %.2f, want 1", family, m.Opacity)
		}
		if want := "boss_" + family.String(); m.Name != want {
			t.Errorf("%s: mesh named %q, want %q", family, m.Name, want)
		}
	}
}

func TestStandardTubeCounts(t *testing.T) {
	segments := 32
	m := Generate(Config{Family: FamilyStandard, Segments: segments})

	// Six profile samples: outer wall, duplicated tip corners, bore.
	if want := 6 * (segments + 1); m.VertexCount() != want {
		t.Errorf("vertex count %d, want %d", m.VertexCount(), want)
	}
	if want := 5 * segments * 2; m.TriangleCount() != want {
		t.Errorf("triangle count %d, want %d", m.TriangleCount(), want)
	}
}

func TestStandardTopFaceWindsUpward(t *testing.T) {
	segments := 16
	m := Generate(Config{Family: FamilyStandard, Segments: segments})

	// Quad row 2 stitches the duplicated tip corners: the annular face.
	base := 2 * segments * 6
	for k := 0; k < segments*6; k += 3 {
		a := m.Indices[base+k]
		b := m.Indices[base+k+1]
		c := m.Indices[base+k+2]
		ux := float64(m.Vertices[b*3] - m.Vertices[a*3])
		uy := float64(m.Vertices[b*3+1] - m.Vertices[a*3+1])
		wx := float64(m.Vertices[c*3] - m.Vertices[a*3])
		wy := float64(m.Vertices[c*3+1] - m.Vertices[a*3+1])
		if cross := ux*wy - uy*wx; cross <= 1e-12 {
			t.Fatalf("annular face triangle %d winds downward (cross %g)", k/3, cross)
		}
	}
}

func TestClampedDimensions(t *testing.T) {
	// Zero config resolves to the catalog defaults.
	ri, ro, length, segments := Config{}.clamped()
	if ro != DefaultOuterDiameter/2 || ri != DefaultInnerDiameter/2 {
		t.Errorf("default radii %.1f/%.1f, want %d/%d", ri, ro,
			DefaultInnerDiameter/2, DefaultOuterDiameter/2)
	}
	if length != DefaultProtrusion || segments != DefaultSegments {
		t.Errorf("default protrusion %.1f segments %d", length, segments)
	}

	// A bore at or past the outer wall pulls inside it.
	ri, ro, _, _ = Config{InnerDiameterMM: 120, OuterDiameterMM: 90}.clamped()
	if ri >= ro {
		t.Errorf("bore %.1f not inside outer wall %.1f", ri, ro)
	}
}

func TestRadiusReportsOuterWall(t *testing.T) {
	if r := (Config{OuterDiameterMM: 120}).Radius(); r != 60 {
		t.Errorf("radius %.1f, want 60", r)
	}
	if r := (Config{}).Radius(); r != DefaultOuterDiameter/2 {
		t.Errorf("default radius %.1f, want %d", r, DefaultOuterDiameter/2)
	}
}

func TestIntegratedTaperNarrowsTip(t *testing.T) {
	cfg := Config{Family: FamilyIntegrated, Segments: 24}
	m := Generate(cfg)

	_, ro, length, _ := cfg.clamped()
	wantTip := ro - length*math.Tan(float64(DefaultTaperAngleDeg)*math.Pi/180)
	if got := maxRadiusAt(m, length); math.Abs(got-wantTip) > 1e-4 {
		t.Errorf("tip radius %.4f, want %.4f", got, wantTip)
	}
	if got := maxRadiusAt(m, 0); math.Abs(got-ro) > 1e-4 {
		t.Errorf("base radius %.4f, want %.1f", got, ro)
	}
}

func TestIntegratedSteepTaperStopsAtBore(t *testing.T) {
	cfg := Config{
		Family:   FamilyIntegrated,
		Segments: 24,
		Extras:   IntegratedExtras{TaperAngleDeg: 80},
	}
	m := Generate(cfg)
	ri, _, length, _ := cfg.clamped()
	if got := maxRadiusAt(m, length); math.Abs(got-ri) > 1e-4 {
		t.Errorf("tip radius %.4f, want bore radius %.1f", got, ri)
	}
}

func TestFlangedExtentAndBoltMarkers(t *testing.T) {
	segments := 24
	cfg := Config{Family: FamilyFlanged, Segments: segments}
	m := Generate(cfg)

	if got := m.RadialExtent(); math.Abs(got-DefaultFlangeDiameter/2) > 1e-4 {
		t.Errorf("radial extent %.4f, want flange radius %d", got, DefaultFlangeDiameter/2)
	}

	// Flange profile has ten samples, plus one marker tube per bolt.
	wantTris := 9*segments*2 + DefaultBoltCount*5*boltMarkerSegments*2
	if m.TriangleCount() != wantTris {
		t.Errorf("triangle count %d, want %d", m.TriangleCount(), wantTris)
	}
}

func TestFlangedRespectsExtras(t *testing.T) {
	cfg := Config{
		Family:   FamilyFlanged,
		Segments: 16,
		Extras: FlangedExtras{
			FlangeDiameterMM:     200,
			FlangeThicknessMM:    10,
			BoltCircleDiameterMM: 160,
			BoltCount:            8,
		},
	}
	m := Generate(cfg)
	if got := m.RadialExtent(); math.Abs(got-100) > 1e-4 {
		t.Errorf("radial extent %.4f, want 100", got)
	}
	wantTris := 9*16*2 + 8*5*boltMarkerSegments*2
	if m.TriangleCount() != wantTris {
		t.Errorf("triangle count %d, want %d", m.TriangleCount(), wantTris)
	}
}

func TestMultiPortMergesAuxTubes(t *testing.T) {
	segments := 24
	cfg := Config{
		Family:   FamilyMultiPort,
		Segments: segments,
		Extras: MultiPortExtras{Aux: []AuxPort{
			{AngleDeg: 0},
			{AngleDeg: 120},
			{AngleDeg: 240},
		}},
	}
	m := Generate(cfg)

	// Main tube plus three aux tubes, all six-sample profiles.
	if want := 4 * 6 * (segments + 1); m.VertexCount() != want {
		t.Errorf("vertex count %d, want %d", m.VertexCount(), want)
	}
	limit := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= limit {
			t.Fatalf("index %d at position %d out of bounds after merge", idx, i)
		}
	}

	// Aux tubes push the radial extent past the main wall.
	wantExtent := DefaultAuxOffset + DefaultAuxOuterDiameter/2.0
	if got := m.RadialExtent(); math.Abs(got-wantExtent) > 1e-4 {
		t.Errorf("radial extent %.4f, want %.1f", got, wantExtent)
	}
}

func TestMultiPortDefaultsToTwoAux(t *testing.T) {
	segments := 16
	m := Generate(Config{Family: FamilyMultiPort, Segments: segments})
	if want := 3 * 6 * (segments + 1); m.VertexCount() != want {
		t.Errorf("vertex count %d, want %d (main plus two default aux)", m.VertexCount(), want)
	}
}

func TestGenerateUnknownFamilyFallsBack(t *testing.T) {
	m := Generate(Config{Family: Family(9), Segments: 16})
	want := Generate(Config{Family: FamilyStandard, Segments: 16})
	if m.VertexCount() != want.VertexCount() || m.TriangleCount() != want.TriangleCount() {
		t.Errorf("fallback mesh %d/%d, want standard %d/%d",
			m.VertexCount(), m.TriangleCount(), want.VertexCount(), want.TriangleCount())
	}
	if m.Name != "boss_standard" {
		t.Errorf("fallback mesh named %q", m.Name)
	}
}

func TestParseFamily(t *testing.T) {
	cases := []struct {
		in   string
		want Family
	}{
		{"standard", FamilyStandard},
		{"CYLINDRICAL", FamilyStandard},
		{"integrated", FamilyIntegrated},
		{"Tapered", FamilyIntegrated},
		{"flanged", FamilyFlanged},
		{"flange", FamilyFlanged},
		{"multiport", FamilyMultiPort},
		{"multi-port", FamilyMultiPort},
		{"MULTI_PORT", FamilyMultiPort},
		{"", FamilyStandard},
		{"bogus", FamilyStandard},
	}
	for _, tc := range cases {
		if got := ParseFamily(tc.in); got != tc.want {
			t.Errorf("ParseFamily(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestLookupFamilyRecognition(t *testing.T) {
	if _, ok := LookupFamily("multi-port"); !ok {
		t.Error("known token reported unrecognized")
	}
	if _, ok := LookupFamily("bogus"); ok {
		t.Error("unknown token reported recognized")
	}
}

func maxRadiusAt(m *mesh.Mesh, z float64) float64 {
	var max float64
	for i := 0; i < m.VertexCount(); i++ {
		if math.Abs(float64(m.Vertices[i*3+2])-z) > 1e-3 {
			continue
		}
		r := math.Hypot(float64(m.Vertices[i*3]), float64(m.Vertices[i*3+1]))
		if r > max {
			max = r
		}
	}
	return max
}
