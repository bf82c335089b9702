// Package boss generates the port fittings that protrude from a dome
// apex. Each of the four families produces a single triangulated solid
// with its base in the z=0 plane, protruding toward +z; the assembler
// translates one copy to each apex (mirroring the bottom one). All
// generators are total: out-of-range dimensions clamp to workable
// defaults instead of failing.
package boss

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/mandrel/pkg/lathe"
	"github.com/chazu/mandrel/pkg/mesh"
)

// Family selects a boss fitting style.
type Family int

const (
	FamilyStandard Family = iota
	FamilyIntegrated
	FamilyFlanged
	FamilyMultiPort
)

func (f Family) String() string {
	switch f {
	case FamilyStandard:
		return "standard"
	case FamilyIntegrated:
		return "integrated"
	case FamilyFlanged:
		return "flanged"
	case FamilyMultiPort:
		return "multiport"
	default:
		return "unknown"
	}
}

// Families lists the four fitting styles in catalog order.
func Families() []Family {
	return []Family{FamilyStandard, FamilyIntegrated, FamilyFlanged, FamilyMultiPort}
}

// LookupFamily maps a family token to its Family, case-insensitively, and
// reports whether the token was recognized.
func LookupFamily(s string) (Family, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "standard", "cylindrical":
		return FamilyStandard, true
	case "integrated", "tapered":
		return FamilyIntegrated, true
	case "flanged", "flange":
		return FamilyFlanged, true
	case "multiport", "multi_port", "multi":
		return FamilyMultiPort, true
	default:
		return FamilyStandard, false
	}
}

// ParseFamily maps a family token to its Family. Unrecognized tokens fall
// back to the standard cylindrical fitting.
func ParseFamily(s string) Family {
	f, _ := LookupFamily(s)
	return f
}

// MetallicAppearance is the fixed render token for every boss fitting,
// a dark metal tone that separates ports from the composite layers.
const MetallicAppearance = "#9ba1a6"

// Default fitting dimensions in millimeters.
const (
	DefaultInnerDiameter = 50
	DefaultOuterDiameter = 90
	DefaultProtrusion    = 60
	DefaultSegments      = 48

	DefaultTaperAngleDeg     = 15
	DefaultFlangeDiameter    = 140
	DefaultFlangeThickness   = 12
	DefaultBoltCircle        = 115
	DefaultBoltCount         = 6
	DefaultAuxOffset         = 70
	DefaultAuxInnerDiameter  = 20
	DefaultAuxOuterDiameter  = 36
	DefaultAuxProtrusion     = 40
	boltMarkerSegments       = 12
	boltMarkerOverhangFactor = 0.08
)

// Extras carries family-specific parameters. Exactly one concrete type
// matches each non-standard family; a nil or mismatched value falls
// back to that family's defaults.
type Extras interface {
	bossExtras()
}

// IntegratedExtras parametrizes the tapered fitting.
type IntegratedExtras struct {
	TaperAngleDeg float64
}

// FlangedExtras parametrizes the flanged fitting and its bolt pattern.
type FlangedExtras struct {
	FlangeDiameterMM     float64
	FlangeThicknessMM    float64
	BoltCircleDiameterMM float64
	BoltCount            int
}

// AuxPort is one auxiliary opening of a multi-port fitting, placed at
// OffsetMM from the main axis at AngleDeg around it.
type AuxPort struct {
	OffsetMM        float64
	AngleDeg        float64
	InnerDiameterMM float64
	OuterDiameterMM float64
	ProtrusionMM    float64
}

// MultiPortExtras lists the auxiliary ports around the main one.
type MultiPortExtras struct {
	Aux []AuxPort
}

func (IntegratedExtras) bossExtras() {}
func (FlangedExtras) bossExtras()    {}
func (MultiPortExtras) bossExtras()  {}

// Config selects a fitting family and its shared dimensions. Extras
// supplies the family-specific parameters.
type Config struct {
	Family          Family
	InnerDiameterMM float64
	OuterDiameterMM float64
	ProtrusionMM    float64
	Segments        int
	Extras          Extras
}

// Radius is the main port's outer radius, the opening the dome profile
// must leave at the apex.
func (c Config) Radius() float64 {
	_, ro, _, _ := c.clamped()
	return ro
}

// clamped resolves the shared dimensions to workable values: defaults
// for non-positive entries, bore strictly inside the outer wall.
func (c Config) clamped() (ri, ro, protrusion float64, segments int) {
	ro = c.OuterDiameterMM / 2
	if ro <= 0 {
		ro = DefaultOuterDiameter / 2
	}
	ri = c.InnerDiameterMM / 2
	if ri <= 0 {
		ri = ro * float64(DefaultInnerDiameter) / float64(DefaultOuterDiameter)
	}
	if ri >= ro {
		ri = ro * 0.9
	}
	protrusion = c.ProtrusionMM
	if protrusion <= 0 {
		protrusion = DefaultProtrusion
	}
	segments = c.Segments
	if segments < lathe.MinSegments {
		segments = DefaultSegments
	}
	return ri, ro, protrusion, segments
}

// Generate builds the fitting mesh for cfg. An out-of-range family
// falls back to the standard cylindrical fitting.
func Generate(cfg Config) *mesh.Mesh {
	family := cfg.Family
	var m *mesh.Mesh
	switch family {
	case FamilyIntegrated:
		m = integrated(cfg)
	case FamilyFlanged:
		m = flanged(cfg)
	case FamilyMultiPort:
		m = multiPort(cfg)
	case FamilyStandard:
		m = standard(cfg)
	default:
		family = FamilyStandard
		m = standard(cfg)
	}
	m.Name = "boss_" + family.String()
	m.Color = mesh.ParseHexColor(MetallicAppearance)
	m.Opacity = 1
	return m
}

// standard is the plain tube: outer wall up, annular top face, bore
// back down. Corner samples are duplicated so the lathe assigns each
// face its own normal instead of smearing the edge.
func standard(cfg Config) *mesh.Mesh {
	ri, ro, length, segments := cfg.clamped()
	return mustRevolve(tubeProfile(ri, ro, ro, length), segments)
}

// integrated narrows the outer wall linearly toward the tip by the
// taper angle. The tip never narrows past the bore wall.
func integrated(cfg Config) *mesh.Mesh {
	ri, ro, length, segments := cfg.clamped()
	tip := taperTip(cfg, ri, ro, length)
	return mustRevolve(tubeProfile(ri, ro, tip, length), segments)
}

// taperTip resolves the integrated fitting's tip radius from the taper
// angle, stopping at the bore wall.
func taperTip(cfg Config, ri, ro, length float64) float64 {
	angle := float64(DefaultTaperAngleDeg)
	if ex, ok := cfg.Extras.(IntegratedExtras); ok && ex.TaperAngleDeg > 0 && ex.TaperAngleDeg < 90 {
		angle = ex.TaperAngleDeg
	}
	tip := ro - length*math.Tan(angle*math.Pi/180)
	if tip < ri {
		tip = ri
	}
	return tip
}

// flanged is the standard tube with a disk flange at the tip and a
// ring of small cylinder markers standing in for bolt holes around the
// bolt circle.
func flanged(cfg Config) *mesh.Mesh {
	ri, ro, length, segments := cfg.clamped()
	rf, thickness, rbc, rb, bolts := flangedDims(cfg, ro, length)

	shoulder := length - thickness
	profile := []lathe.Point{
		{R: ro, Z: 0},
		{R: ro, Z: shoulder},
		{R: ro, Z: shoulder},
		{R: rf, Z: shoulder},
		{R: rf, Z: shoulder},
		{R: rf, Z: length},
		{R: rf, Z: length},
		{R: ri, Z: length},
		{R: ri, Z: length},
		{R: ri, Z: 0},
	}
	m := mustRevolve(profile, segments)

	// Bolt markers pierce the flange slightly proud of both faces.
	overhang := thickness * boltMarkerOverhangFactor
	for i := 0; i < bolts; i++ {
		angle := 2 * math.Pi * float64(i) / float64(bolts)
		marker := solidCylinder(rb, shoulder-overhang, length+overhang, boltMarkerSegments)
		marker.Translate(rbc*math.Cos(angle), rbc*math.Sin(angle), 0)
		m.Append(marker)
	}
	return m
}

// multiPort merges the main tube with each auxiliary tube, translated
// to its offset and angular station. Aux entries with non-positive
// dimensions pick up the auxiliary defaults.
func multiPort(cfg Config) *mesh.Mesh {
	m := standard(cfg)
	for _, aux := range auxList(cfg) {
		sub := Config{
			Family:          FamilyStandard,
			InnerDiameterMM: aux.InnerDiameterMM,
			OuterDiameterMM: aux.OuterDiameterMM,
			ProtrusionMM:    aux.ProtrusionMM,
			Segments:        cfg.Segments,
		}
		angle := aux.AngleDeg * math.Pi / 180

		port := standard(sub)
		port.Translate(aux.OffsetMM*math.Cos(angle), aux.OffsetMM*math.Sin(angle), 0)
		m.Append(port)
	}
	return m
}

// auxList resolves the auxiliary ports of a multi-port fitting, filling
// non-positive dimensions with the auxiliary defaults. Without extras
// the fitting gets two opposed auxiliary ports.
func auxList(cfg Config) []AuxPort {
	ex, ok := cfg.Extras.(MultiPortExtras)
	if !ok || len(ex.Aux) == 0 {
		ex = MultiPortExtras{Aux: []AuxPort{
			{AngleDeg: 0},
			{AngleDeg: 180},
		}}
	}
	out := make([]AuxPort, len(ex.Aux))
	for i, aux := range ex.Aux {
		out[i] = AuxPort{
			OffsetMM:        positiveOr(aux.OffsetMM, DefaultAuxOffset),
			AngleDeg:        aux.AngleDeg,
			InnerDiameterMM: positiveOr(aux.InnerDiameterMM, DefaultAuxInnerDiameter),
			OuterDiameterMM: positiveOr(aux.OuterDiameterMM, DefaultAuxOuterDiameter),
			ProtrusionMM:    positiveOr(aux.ProtrusionMM, DefaultAuxProtrusion),
		}
	}
	return out
}

// flangedDims resolves the flange dimensions: flange outside the tube
// wall, thickness inside the protrusion, bolt circle between wall and
// rim, bolt radius at 40% of the tighter annular gap.
func flangedDims(cfg Config, ro, length float64) (rf, thickness, rbc, rb float64, bolts int) {
	ex, _ := cfg.Extras.(FlangedExtras)
	rf = ex.FlangeDiameterMM / 2
	if rf <= ro {
		rf = math.Max(DefaultFlangeDiameter/2, ro*1.4)
	}
	thickness = ex.FlangeThicknessMM
	if thickness <= 0 || thickness >= length {
		thickness = math.Min(DefaultFlangeThickness, length/2)
	}
	rbc = ex.BoltCircleDiameterMM / 2
	if rbc <= ro || rbc >= rf {
		rbc = (ro + rf) / 2
	}
	bolts = ex.BoltCount
	if bolts <= 0 {
		bolts = DefaultBoltCount
	}
	rb = 0.4 * math.Min(rf-rbc, rbc-ro)
	return rf, thickness, rbc, rb, bolts
}

// tubeProfile is the shared meridian of the tube fittings: outer wall
// from base to tip (tipOuter allows taper), annular tip face, bore wall
// back to the base plane.
func tubeProfile(ri, baseOuter, tipOuter, length float64) []lathe.Point {
	return []lathe.Point{
		{R: baseOuter, Z: 0},
		{R: tipOuter, Z: length},
		{R: tipOuter, Z: length},
		{R: ri, Z: length},
		{R: ri, Z: length},
		{R: ri, Z: 0},
	}
}

// solidCylinder is a closed cylinder spanning z0..z1, used for the bolt
// markers. The r=0 profile ends collapse each cap into a triangle fan.
func solidCylinder(r, z0, z1 float64, segments int) *mesh.Mesh {
	profile := []lathe.Point{
		{R: 0, Z: z0},
		{R: r, Z: z0},
		{R: r, Z: z0},
		{R: r, Z: z1},
		{R: r, Z: z1},
		{R: 0, Z: z1},
	}
	return mustRevolve(profile, segments)
}

// mustRevolve wraps lathe.Revolve for the fixed profiles built here,
// which always satisfy the lathe's minimums.
func mustRevolve(profile []lathe.Point, segments int) *mesh.Mesh {
	m, err := lathe.Revolve(profile, segments)
	if err != nil {
		panic(fmt.Sprintf("boss profile rejected: %v", err))
	}
	return m
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
