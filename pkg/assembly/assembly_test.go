package assembly

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/mandrel/pkg/boss"
	"github.com/chazu/mandrel/pkg/dome"
	"github.com/chazu/mandrel/pkg/lathe"
	"github.com/chazu/mandrel/pkg/mesh"
	"github.com/chazu/mandrel/pkg/vessel"
)

func typeIVOpts() Options {
	return Options{
		Type:             vessel.TypeIV,
		Dome:             dome.KindIsotensoid,
		CylinderRadiusMM: 200,
		CylinderLengthMM: 800,
	}
}

func TestBuildTypeIVScenario(t *testing.T) {
	model, err := Build(typeIVOpts())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(model.Layers) != 3 {
		t.Fatalf("expected 3 layer meshes (liner, hoop, helical), got %d", len(model.Layers))
	}
	if model.Layers[0].Name != "HDPE liner" {
		t.Errorf("innermost layer %q, want the polymer liner", model.Layers[0].Name)
	}

	wantDepth := 200 * (1 - math.Sin(dome.DefaultWindingAngleDeg*math.Pi/180))
	wantTotal := 800 + 2*wantDepth
	if math.Abs(model.TotalLengthMM-wantTotal) > 1e-6 {
		t.Errorf("total length %.6f, want %.6f", model.TotalLengthMM, wantTotal)
	}
	if math.Abs(model.MaxRadiusMM-210) > 1e-9 {
		t.Errorf("max radius %.6f, want 210 (200 + 10mm wall)", model.MaxRadiusMM)
	}
	for _, m := range model.Layers {
		if m.IsEmpty() {
			t.Fatalf("layer %q is empty", m.Name)
		}
		if len(m.Indices)%3 != 0 {
			t.Errorf("layer %q index count %d not a multiple of 3", m.Name, len(m.Indices))
		}
	}
}

func TestBuildTypeISingleLayerMetallicBoss(t *testing.T) {
	metal := mesh.ParseHexColor(boss.MetallicAppearance)
	for _, kind := range dome.Kinds() {
		opts := typeIVOpts()
		opts.Type = vessel.TypeI
		opts.Dome = kind
		model, err := Build(opts)
		if err != nil {
			t.Fatalf("%s: build failed: %v", kind, err)
		}
		if len(model.Layers) != 1 {
			t.Errorf("%s: expected exactly 1 layer mesh, got %d", kind, len(model.Layers))
		}
		if model.TopBoss.Color != metal || model.BottomBoss.Color != metal {
			t.Errorf("%s: boss colors %v/%v, want the metallic token",
				kind, model.TopBoss.Color, model.BottomBoss.Color)
		}
	}
}

func TestLayerBuffersSized(t *testing.T) {
	opts := typeIVOpts()
	opts.Segments = 32
	opts.DomeOptions.NumPoints = 24
	model, err := Build(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// Meridian: dome samples twice plus two cylinder samples.
	samples := 2*24 + 2
	wantVerts := samples * (32 + 1)
	wantTris := (samples - 1) * 32 * 2
	for _, m := range model.Layers {
		if m.VertexCount() != wantVerts {
			t.Errorf("layer %q: %d vertices, want %d", m.Name, m.VertexCount(), wantVerts)
		}
		if m.TriangleCount() != wantTris {
			t.Errorf("layer %q: %d triangles, want %d", m.Name, m.TriangleCount(), wantTris)
		}
	}
}

func TestLayerRadialGrowth(t *testing.T) {
	model, err := Build(typeIVOpts())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// TYPE_IV stack: 4mm liner, 3mm hoop, 3mm helical over a 200mm wall.
	want := []float64{204, 207, 210}
	for i, m := range model.Layers {
		if got := m.RadialExtent(); math.Abs(got-want[i]) > 1e-3 {
			t.Errorf("layer %d radial extent %.4f, want %.0f", i, got, want[i])
		}
	}
}

func TestLayerOpacityMultiplier(t *testing.T) {
	base, err := Build(typeIVOpts())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	opts := typeIVOpts()
	opts.LayerOpacity = 0.5
	model, err := Build(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	spec := vessel.SpecFor(vessel.TypeIV)
	for i, m := range model.Layers {
		want := float32(spec.Layers[i].Opacity * 0.5)
		if math.Abs(float64(m.Opacity-want)) > 1e-6 {
			t.Errorf("layer %q opacity %.3f, want %.3f", m.Name, m.Opacity, want)
		}
		ref := base.Layers[i]
		if len(m.Vertices) != len(ref.Vertices) {
			t.Fatalf("layer %q vertex count changed with the multiplier", m.Name)
		}
		for j := range m.Vertices {
			if m.Vertices[j] != ref.Vertices[j] {
				t.Fatalf("layer %q vertex component %d changed with the multiplier", m.Name, j)
			}
		}
	}
}

func TestModelCenteredAndBossesAtApexes(t *testing.T) {
	model, err := Build(typeIVOpts())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	half := model.TotalLengthMM / 2

	min, max := model.Layers[0].Bounds()
	if math.Abs(min[2]+half) > 1e-3 || math.Abs(max[2]-half) > 1e-3 {
		t.Errorf("layer z bounds [%.3f, %.3f], want symmetric [%.3f, %.3f]",
			min[2], max[2], -half, half)
	}

	topMin, topMax := model.TopBoss.Bounds()
	if math.Abs(topMin[2]-half) > 1e-3 {
		t.Errorf("top boss base at %.3f, want %.3f", topMin[2], half)
	}
	if math.Abs(topMax[2]-(half+boss.DefaultProtrusion)) > 1e-3 {
		t.Errorf("top boss tip at %.3f, want %.3f", topMax[2], half+boss.DefaultProtrusion)
	}

	botMin, botMax := model.BottomBoss.Bounds()
	if math.Abs(botMax[2]+half) > 1e-3 {
		t.Errorf("bottom boss base at %.3f, want %.3f", botMax[2], -half)
	}
	if math.Abs(botMin[2]+(half+boss.DefaultProtrusion)) > 1e-3 {
		t.Errorf("bottom boss tip at %.3f, want %.3f", botMin[2], -(half + boss.DefaultProtrusion))
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	seq, err := Build(typeIVOpts())
	if err != nil {
		t.Fatalf("sequential build failed: %v", err)
	}
	opts := typeIVOpts()
	opts.Parallel = true
	par, err := Build(opts)
	if err != nil {
		t.Fatalf("parallel build failed: %v", err)
	}

	if len(seq.Layers) != len(par.Layers) {
		t.Fatalf("layer counts differ: %d vs %d", len(seq.Layers), len(par.Layers))
	}
	for i := range seq.Layers {
		a, b := seq.Layers[i], par.Layers[i]
		if a.Name != b.Name || len(a.Vertices) != len(b.Vertices) {
			t.Fatalf("layer %d differs: %q/%d vs %q/%d",
				i, a.Name, len(a.Vertices), b.Name, len(b.Vertices))
		}
		for j := range a.Vertices {
			if a.Vertices[j] != b.Vertices[j] {
				t.Fatalf("layer %d vertex component %d differs", i, j)
			}
		}
	}
}

func TestFlatDomeWhenBossSwallowsCylinder(t *testing.T) {
	opts := typeIVOpts()
	opts.CylinderRadiusMM = 40 // below the default 45mm boss outer radius
	model, err := Build(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if model.TotalLengthMM != 800 {
		t.Errorf("total length %.3f, want the bare cylinder length 800", model.TotalLengthMM)
	}
	if len(model.Layers) != 3 {
		t.Errorf("expected all 3 layers even degenerate, got %d", len(model.Layers))
	}
}

func TestTooFewSegmentsSurfacesLatheError(t *testing.T) {
	opts := typeIVOpts()
	opts.Segments = 2
	_, err := Build(opts)
	if err == nil {
		t.Fatal("expected an error for a two-segment revolution")
	}
	var lerr *lathe.InvalidGeometryParametersError
	if !errors.As(err, &lerr) {
		t.Fatalf("error %v does not unwrap to the lathe's", err)
	}
}

func TestExactBossWithoutKernelFallsBack(t *testing.T) {
	opts := typeIVOpts()
	opts.ExactBoss = true // no kernel supplied
	model, err := Build(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	want := boss.Generate(opts.Boss)
	if model.TopBoss.VertexCount() != want.VertexCount() {
		t.Errorf("fallback boss has %d vertices, want the lathe fitting's %d",
			model.TopBoss.VertexCount(), want.VertexCount())
	}
}

func TestComputeMetricsAgreesWithBuild(t *testing.T) {
	opts := typeIVOpts()
	model, err := Build(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	metrics := ComputeMetrics(opts)

	if math.Abs(metrics.TotalLengthMM-model.TotalLengthMM) > 1e-9 {
		t.Errorf("metrics total %.6f vs model %.6f", metrics.TotalLengthMM, model.TotalLengthMM)
	}
	if math.Abs(metrics.MaxRadiusMM-model.MaxRadiusMM) > 1e-9 {
		t.Errorf("metrics radius %.6f vs model %.6f", metrics.MaxRadiusMM, model.MaxRadiusMM)
	}
	if metrics.DomeVolumeMM3 <= 0 || metrics.DomeSurfaceAreaMM2 <= 0 {
		t.Errorf("non-positive dome integrals: %.1f / %.1f",
			metrics.DomeVolumeMM3, metrics.DomeSurfaceAreaMM2)
	}
	wantMass := vessel.EstimateMass(vessel.TypeIV, 200, 800, metrics.DomeDepthMM)
	if math.Abs(metrics.MassKg-wantMass) > 1e-9 {
		t.Errorf("mass %.6f, want %.6f", metrics.MassKg, wantMass)
	}
	if metrics.Type != vessel.TypeIV || metrics.Dome != dome.KindIsotensoid {
		t.Errorf("metrics tagged %s/%s", metrics.Type, metrics.Dome)
	}
}
