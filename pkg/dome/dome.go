// Package dome generates end-cap meridian profiles for pressure vessels.
// Each of the five shape families produces an ordered run of (radius,
// axial) samples from the apex (z=0) to the cylinder joint, together with
// the integrated depth, enclosed volume, and surface area of the half
// shell. Every generator is total: out-of-range inputs clamp or fall back
// to documented defaults instead of failing.
package dome

import (
	"math"
	"strings"

	"github.com/chazu/mandrel/pkg/lathe"
)

// Kind selects a dome shape family.
type Kind int

const (
	KindHemispherical Kind = iota
	KindIsotensoid
	KindGeodesic
	KindElliptical
	KindTorispherical
)

func (k Kind) String() string {
	switch k {
	case KindHemispherical:
		return "hemispherical"
	case KindIsotensoid:
		return "isotensoid"
	case KindGeodesic:
		return "geodesic"
	case KindElliptical:
		return "elliptical"
	case KindTorispherical:
		return "torispherical"
	default:
		return "unknown"
	}
}

// Kinds lists every dome family in catalog order.
func Kinds() []Kind {
	return []Kind{KindHemispherical, KindIsotensoid, KindGeodesic, KindElliptical, KindTorispherical}
}

// LookupKind maps a family token to its Kind and reports whether the token
// was recognized. Matching is case-insensitive and tolerates
// hyphen/underscore spelling.
func LookupKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "hemispherical", "hemisphere":
		return KindHemispherical, true
	case "isotensoid":
		return KindIsotensoid, true
	case "geodesic", "geodesic-faceted":
		return KindGeodesic, true
	case "elliptical", "ellipse":
		return KindElliptical, true
	case "torispherical", "torispheric":
		return KindTorispherical, true
	default:
		return KindIsotensoid, false
	}
}

// ParseKind maps a family token to its Kind. Unrecognized tokens fall back
// to the isotensoid family rather than failing.
func ParseKind(s string) Kind {
	kind, _ := LookupKind(s)
	return kind
}

// Defaults for the family-specific shape parameters.
const (
	DefaultWindingAngleDeg = 54.74 // geodesic winding angle for the isotensoid family
	DefaultAspectRatio     = 0.5   // elliptical depth/radius
	DefaultCrownRatio      = 2.0   // torispherical crown radius / cylinder radius
	DefaultKnuckleRatio    = 0.2   // torispherical knuckle radius / cylinder radius
	DefaultFacetFrequency  = 8     // geodesic facet ripple half-waves
)

// Options parametrizes a dome profile. CylinderRadius and NumPoints apply
// to every family; the remaining fields are read only by the families
// that need them and fall back to the defaults above when zero.
type Options struct {
	CylinderRadius float64
	BossRadius     float64
	TargetDepth    float64 // overrides the family's default depth when positive
	NumPoints      int

	WindingAngleDeg float64 // isotensoid
	AspectRatio     float64 // elliptical
	CrownRatio      float64 // torispherical
	KnuckleRatio    float64 // torispherical
	FacetFrequency  float64 // geodesic
}

// Profile is a generated dome meridian. Points run from apex (index 0,
// z=0) to the cylinder joint; radius never falls below the boss radius
// and never decreases along the run, axial position never decreases.
type Profile struct {
	Kind        Kind
	Points      []lathe.Point
	Depth       float64
	Volume      float64
	SurfaceArea float64
}

// Generate dispatches to the family selected by kind. An out-of-range
// kind falls back to the isotensoid family.
func Generate(kind Kind, opts Options) Profile {
	switch kind {
	case KindHemispherical:
		return Hemispherical(opts)
	case KindIsotensoid:
		return Isotensoid(opts)
	case KindGeodesic:
		return Geodesic(opts)
	case KindElliptical:
		return Elliptical(opts)
	case KindTorispherical:
		return Torispherical(opts)
	default:
		return Isotensoid(opts)
	}
}

// begin applies the clamps shared by every family: at least two samples,
// and the degenerate flat profile when the boss opening swallows the
// whole dome (bossRadius >= cylinderRadius, or a non-positive radius).
func begin(opts Options) (radius float64, numPoints int, flat bool) {
	numPoints = opts.NumPoints
	if numPoints < 2 {
		numPoints = 2
	}
	radius = opts.CylinderRadius
	bossR := math.Max(opts.BossRadius, 0)
	if bossR >= radius {
		return radius, numPoints, true
	}
	return radius, numPoints, false
}

// flatProfile is the zero-depth stand-in used when no dome can protrude:
// every sample sits at the joint radius in the joint plane. It still
// revolves into a renderable (zero-area) surface.
func flatProfile(kind Kind, radius float64, numPoints int) Profile {
	r := math.Max(radius, 0)
	pts := make([]lathe.Point, numPoints)
	for i := range pts {
		pts[i] = lathe.Point{R: r, Z: 0}
	}
	return Profile{Kind: kind, Points: pts}
}

// finish clamps a raw family curve to the profile invariants (radius at
// least bossRadius, radius non-decreasing toward the joint) and fills in
// the integrated depth, volume, and surface area.
func finish(kind Kind, pts []lathe.Point, opts Options) Profile {
	bossR := math.Max(opts.BossRadius, 0)
	for i := range pts {
		if pts[i].R < bossR {
			pts[i].R = bossR
		}
		if i > 0 && pts[i].R < pts[i-1].R {
			pts[i].R = pts[i-1].R
		}
	}
	volume, area := integrate(pts)
	return Profile{
		Kind:        kind,
		Points:      pts,
		Depth:       pts[len(pts)-1].Z,
		Volume:      volume,
		SurfaceArea: area,
	}
}

// integrate sums frustum slices over consecutive samples: each pair
// contributes (pi/3)*dz*(r1^2 + r1*r2 + r2^2) of volume and
// pi*(r1+r2)*slant of lateral area. The volume spans the full disc at
// every station, so the open boss bore is included in the figure.
func integrate(pts []lathe.Point) (volume, area float64) {
	for i := 0; i < len(pts)-1; i++ {
		r1, r2 := pts[i].R, pts[i+1].R
		dz := pts[i+1].Z - pts[i].Z
		volume += math.Pi / 3 * dz * (r1*r1 + r1*r2 + r2*r2)
		area += math.Pi * (r1 + r2) * math.Hypot(r2-r1, dz)
	}
	return volume, area
}
