// Package vessel is the tank construction-type catalog: the five
// standard vessel families, each with its fixed material layer stack,
// nominal service pressure range, and weight/cost ratios relative to
// the Type IV baseline. The catalog is advisory data for sizing and
// rendering, not a certifying calculation.
package vessel

import (
	"math"
	"strings"
)

// Type identifies a vessel construction family.
type Type int

const (
	TypeI   Type = iota // all-metal
	TypeII              // metal with hoop wrap
	TypeIII             // metal liner, full composite wrap
	TypeIV              // polymer liner, full composite wrap
	TypeV               // linerless composite
)

func (t Type) String() string {
	switch t {
	case TypeI:
		return "TYPE_I"
	case TypeII:
		return "TYPE_II"
	case TypeIII:
		return "TYPE_III"
	case TypeIV:
		return "TYPE_IV"
	case TypeV:
		return "TYPE_V"
	default:
		return "unknown"
	}
}

// Types lists the five construction families in catalog order.
func Types() []Type {
	return []Type{TypeI, TypeII, TypeIII, TypeIV, TypeV}
}

// LookupType maps a type token ("TYPE_IV", "type-iv", "IV") to its Type and
// reports whether the token was recognized.
func LookupType(s string) (Type, bool) {
	tok := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	tok = strings.TrimPrefix(tok, "TYPE_")
	switch tok {
	case "I", "1":
		return TypeI, true
	case "II", "2":
		return TypeII, true
	case "III", "3":
		return TypeIII, true
	case "IV", "4":
		return TypeIV, true
	case "V", "5":
		return TypeV, true
	default:
		return TypeIV, false
	}
}

// ParseType maps a type token to its Type. Unrecognized tokens fall back to
// the Type IV baseline.
func ParseType(s string) Type {
	t, _ := LookupType(s)
	return t
}

// MaterialLayer is one wall layer. Appearance is a render token the
// geometry engine passes through untouched; Order runs from 0 at the
// innermost layer outward.
type MaterialLayer struct {
	Name           string
	ThicknessMM    float64
	DensityGPerCm3 float64
	Appearance     string
	Opacity        float64
	Order          int
}

// Spec describes one construction family: its ordered layer stack
// (innermost first), nominal service pressure range, and weight/cost
// ratios relative to the Type IV baseline.
type Spec struct {
	Type           Type
	Label          string
	Description    string
	Layers         []MaterialLayer
	MinPressureBar float64
	MaxPressureBar float64
	WeightRatio    float64
	CostRatio      float64
}

// TotalWallThickness sums the stack's layer thicknesses.
func (s Spec) TotalWallThickness() float64 {
	var total float64
	for _, l := range s.Layers {
		total += l.ThicknessMM
	}
	return total
}

// Appearance tokens for the standard materials. The engine treats these
// as opaque; the default renderer reads them as hex colors.
const (
	appearanceSteel    = "#8a8f98"
	appearanceAluminum = "#b8bcc2"
	appearanceLiner    = "#2f6db3"
	appearanceHoop     = "#2b2b2e"
	appearanceHelical  = "#3d3d42"
	appearanceGlass    = "#cfc07a"
)

var catalog = map[Type]Spec{
	TypeI: {
		Type:           TypeI,
		Label:          "Type I",
		Description:    "all-metal vessel, no overwrap",
		MinPressureBar: 150,
		MaxPressureBar: 300,
		WeightRatio:    3.0,
		CostRatio:      0.3,
		Layers: []MaterialLayer{
			{Name: "steel shell", ThicknessMM: 6, DensityGPerCm3: 7.85, Appearance: appearanceSteel, Opacity: 1.0, Order: 0},
		},
	},
	TypeII: {
		Type:           TypeII,
		Label:          "Type II",
		Description:    "metal vessel with hoop-only composite wrap",
		MinPressureBar: 200,
		MaxPressureBar: 300,
		WeightRatio:    2.0,
		CostRatio:      0.5,
		Layers: []MaterialLayer{
			{Name: "steel liner", ThicknessMM: 4, DensityGPerCm3: 7.85, Appearance: appearanceSteel, Opacity: 1.0, Order: 0},
			{Name: "glass hoop wrap", ThicknessMM: 3, DensityGPerCm3: 1.90, Appearance: appearanceGlass, Opacity: 0.75, Order: 1},
		},
	},
	TypeIII: {
		Type:           TypeIII,
		Label:          "Type III",
		Description:    "metal liner with full composite overwrap",
		MinPressureBar: 350,
		MaxPressureBar: 700,
		WeightRatio:    1.3,
		CostRatio:      0.9,
		Layers: []MaterialLayer{
			{Name: "aluminum liner", ThicknessMM: 3, DensityGPerCm3: 2.70, Appearance: appearanceAluminum, Opacity: 1.0, Order: 0},
			{Name: "carbon hoop wrap", ThicknessMM: 3, DensityGPerCm3: 1.60, Appearance: appearanceHoop, Opacity: 0.8, Order: 1},
			{Name: "carbon helical wrap", ThicknessMM: 3, DensityGPerCm3: 1.60, Appearance: appearanceHelical, Opacity: 0.7, Order: 2},
		},
	},
	TypeIV: {
		Type:           TypeIV,
		Label:          "Type IV",
		Description:    "polymer liner with full composite overwrap",
		MinPressureBar: 350,
		MaxPressureBar: 700,
		WeightRatio:    1.0,
		CostRatio:      1.0,
		Layers: []MaterialLayer{
			{Name: "HDPE liner", ThicknessMM: 4, DensityGPerCm3: 0.95, Appearance: appearanceLiner, Opacity: 1.0, Order: 0},
			{Name: "carbon hoop wrap", ThicknessMM: 3, DensityGPerCm3: 1.60, Appearance: appearanceHoop, Opacity: 0.8, Order: 1},
			{Name: "carbon helical wrap", ThicknessMM: 3, DensityGPerCm3: 1.60, Appearance: appearanceHelical, Opacity: 0.7, Order: 2},
		},
	},
	TypeV: {
		Type:           TypeV,
		Label:          "Type V",
		Description:    "linerless all-composite vessel",
		MinPressureBar: 500,
		MaxPressureBar: 1000,
		WeightRatio:    0.9,
		CostRatio:      1.4,
		Layers: []MaterialLayer{
			{Name: "carbon shell", ThicknessMM: 5, DensityGPerCm3: 1.60, Appearance: appearanceHelical, Opacity: 1.0, Order: 0},
			{Name: "carbon hoop wrap", ThicknessMM: 3, DensityGPerCm3: 1.60, Appearance: appearanceHoop, Opacity: 0.8, Order: 1},
		},
	},
}

// SpecFor looks up the catalog entry for t. The lookup is total:
// an out-of-range type returns the Type IV baseline.
func SpecFor(t Type) Spec {
	if s, ok := catalog[t]; ok {
		return s
	}
	return catalog[TypeIV]
}

// LightestFor returns the catalog entry with the lowest weight ratio
// whose rating window covers the given service pressure.
func LightestFor(pressureBar float64) (Spec, bool) {
	var best Spec
	found := false
	for _, t := range Types() {
		s := SpecFor(t)
		if pressureBar < s.MinPressureBar || pressureBar > s.MaxPressureBar {
			continue
		}
		if !found || s.WeightRatio < best.WeightRatio {
			best = s
			found = true
		}
	}
	return best, found
}

// EstimateMass approximates the vessel's shell mass in kilograms from
// inner radius, cylinder length, and dome depth (all in millimeters).
// The enclosed volume is taken as a cylinder plus two dome caps of
// (2/3)*pi*r^2*depth each; each layer's material volume then scales
// that figure by (outer^2 - inner^2)/r^2, a thin-shell approximation
// chosen for speed and monotonicity over exact shell integration.
func EstimateMass(t Type, innerRadiusMM, cylinderLengthMM, domeDepthMM float64) float64 {
	if innerRadiusMM <= 0 {
		return 0
	}
	length := math.Max(cylinderLengthMM, 0)
	depth := math.Max(domeDepthMM, 0)
	r := innerRadiusMM

	base := math.Pi*r*r*length + 2*(2.0/3.0)*math.Pi*r*r*depth

	var massKg float64
	inner := r
	for _, layer := range SpecFor(t).Layers {
		outer := inner + layer.ThicknessMM
		shellVol := base * (outer*outer - inner*inner) / (r * r)
		massKg += shellVol * layer.DensityGPerCm3 * 1e-6
		inner = outer
	}
	return massKg
}
