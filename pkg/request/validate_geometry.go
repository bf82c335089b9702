package request

import (
	"fmt"
	"math"

	"github.com/chazu/mandrel/pkg/boss"
	"github.com/chazu/mandrel/pkg/dome"
	"github.com/chazu/mandrel/pkg/vessel"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks. Returns errors
// (blocking) and warnings (advisory) separately.
func validateGeometry(r TankRequest) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePressureSign(r)...)
	warnings = append(warnings, validateDomeParameters(r)...)
	warnings = append(warnings, validateBossFit(r)...)
	warnings = append(warnings, validateDisplay(r)...)

	return errs, warnings
}

// validatePressureSign checks that a declared service pressure is physical.
func validatePressureSign(r TankRequest) []ValidationError {
	var errs []ValidationError

	if r.ServicePressureBar < 0 {
		errs = append(errs, ValidationError{
			Field:    "service_pressure_bar",
			Message:  fmt.Sprintf("service pressure is %.1f bar, must be non-negative", r.ServicePressureBar),
			Severity: SeverityError,
		})
	}

	return errs
}

// validateDomeParameters warns about out-of-range closure parameters.
// Each check is scoped to the dome family that reads the parameter; the
// generators clamp or substitute defaults, so these never block.
func validateDomeParameters(r TankRequest) []ValidationWarning {
	var warnings []ValidationWarning
	kind := dome.ParseKind(r.Dome)

	if kind == dome.KindIsotensoid && r.WindingAngleDeg != 0 {
		if r.WindingAngleDeg <= 0 || r.WindingAngleDeg >= 90 {
			warnings = append(warnings, ValidationWarning{
				Field: "winding_angle_deg",
				Message: fmt.Sprintf("winding angle %.1f is outside (0, 90) degrees, using the netting-optimal %.2f",
					r.WindingAngleDeg, dome.DefaultWindingAngleDeg),
			})
		}
	}

	if kind == dome.KindElliptical && r.AspectRatio < 0 {
		warnings = append(warnings, ValidationWarning{
			Field: "aspect_ratio",
			Message: fmt.Sprintf("negative aspect ratio %.2f ignored, using the default %.2f",
				r.AspectRatio, dome.DefaultAspectRatio),
		})
	}

	if kind == dome.KindTorispherical {
		switch {
		case r.CrownRatio < 0:
			warnings = append(warnings, ValidationWarning{
				Field: "crown_ratio",
				Message: fmt.Sprintf("negative crown ratio %.2f ignored, using the default %.1f",
					r.CrownRatio, dome.DefaultCrownRatio),
			})
		case r.CrownRatio > 0 && r.CrownRatio < 1:
			warnings = append(warnings, ValidationWarning{
				Field:   "crown_ratio",
				Message: fmt.Sprintf("crown ratio %.2f is below 1, clamping to a hemispherical crown", r.CrownRatio),
			})
		}
		switch {
		case r.KnuckleRatio < 0:
			warnings = append(warnings, ValidationWarning{
				Field: "knuckle_ratio",
				Message: fmt.Sprintf("negative knuckle ratio %.2f ignored, using the default %.1f",
					r.KnuckleRatio, dome.DefaultKnuckleRatio),
			})
		case r.KnuckleRatio > 0 && (r.KnuckleRatio < 0.01 || r.KnuckleRatio > 0.5):
			warnings = append(warnings, ValidationWarning{
				Field:   "knuckle_ratio",
				Message: fmt.Sprintf("knuckle ratio %.2f is outside [0.01, 0.5], clamping", r.KnuckleRatio),
			})
		}
	}

	if kind == dome.KindGeodesic && r.FacetFrequency != 0 && r.FacetFrequency < 1 {
		warnings = append(warnings, ValidationWarning{
			Field: "facet_frequency",
			Message: fmt.Sprintf("facet frequency %.1f is below 1, using %.0f",
				r.FacetFrequency, dome.DefaultFacetFrequency),
		})
	}

	if r.DomeDepthMM < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "dome_depth_mm",
			Message: fmt.Sprintf("negative dome depth override %.1fmm ignored", r.DomeDepthMM),
		})
	}

	return warnings
}

// validateBossFit warns when the fitting dimensions collide with the
// barrel or with each other.
func validateBossFit(r TankRequest) []ValidationWarning {
	var warnings []ValidationWarning
	b := r.Boss

	outerR := b.OuterDiameterMM / 2
	if outerR <= 0 {
		outerR = float64(boss.DefaultOuterDiameter) / 2
	}

	if r.RadiusMM > 0 && outerR >= r.RadiusMM {
		warnings = append(warnings, ValidationWarning{
			Field: "boss.outer_diameter_mm",
			Message: fmt.Sprintf("boss outer radius %.1fmm meets or exceeds the cylinder radius %.1fmm, closures collapse flat",
				outerR, r.RadiusMM),
		})
	}
	if b.InnerDiameterMM > 0 && b.OuterDiameterMM > 0 && b.InnerDiameterMM >= b.OuterDiameterMM {
		warnings = append(warnings, ValidationWarning{
			Field: "boss.inner_diameter_mm",
			Message: fmt.Sprintf("boss bore %.1fmm meets or exceeds the outer diameter %.1fmm, the bore narrows to fit",
				b.InnerDiameterMM, b.OuterDiameterMM),
		})
	}

	family := boss.ParseFamily(b.Family)

	if family == boss.FamilyIntegrated {
		angle := b.TaperAngleDeg
		if angle <= 0 || angle >= 90 {
			angle = boss.DefaultTaperAngleDeg
		}
		innerR := b.InnerDiameterMM / 2
		if innerR <= 0 {
			innerR = outerR * float64(boss.DefaultInnerDiameter) / float64(boss.DefaultOuterDiameter)
		}
		protrusion := b.ProtrusionMM
		if protrusion <= 0 {
			protrusion = boss.DefaultProtrusion
		}
		if tip := outerR - protrusion*math.Tan(angle*math.Pi/180); tip < innerR {
			warnings = append(warnings, ValidationWarning{
				Field: "boss.taper_angle_deg",
				Message: fmt.Sprintf("taper angle %.1f degrees would cut the tip below the bore, holding at the bore wall",
					angle),
			})
		}
	}

	if family == boss.FamilyFlanged {
		protrusion := b.ProtrusionMM
		if protrusion <= 0 {
			protrusion = boss.DefaultProtrusion
		}
		if b.FlangeThicknessMM >= protrusion {
			warnings = append(warnings, ValidationWarning{
				Field: "boss.flange_thickness_mm",
				Message: fmt.Sprintf("flange thickness %.1fmm meets the fitting protrusion %.1fmm, shortening",
					b.FlangeThicknessMM, protrusion),
			})
		}
		flangeR := b.FlangeDiameterMM / 2
		if flangeR <= 0 {
			flangeR = float64(boss.DefaultFlangeDiameter) / 2
		}
		if circleR := b.BoltCircleMM / 2; circleR > 0 && (circleR <= outerR || circleR >= flangeR) {
			warnings = append(warnings, ValidationWarning{
				Field: "boss.bolt_circle_mm",
				Message: fmt.Sprintf("bolt circle radius %.1fmm does not sit between the fitting wall %.1fmm and the flange rim %.1fmm, re-centering",
					circleR, outerR, flangeR),
			})
		}
	}

	if family == boss.FamilyMultiPort {
		for i, p := range b.Aux {
			if p.OffsetMM < 0 || p.InnerDiameterMM < 0 || p.OuterDiameterMM < 0 || p.ProtrusionMM < 0 {
				warnings = append(warnings, ValidationWarning{
					Field:   fmt.Sprintf("boss.aux_ports[%d]", i),
					Message: "aux port has negative dimensions, defaults used",
				})
			}
		}
	}

	return warnings
}

// validateDisplay warns about presentation values outside their range.
func validateDisplay(r TankRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if r.LayerOpacity != 0 && (r.LayerOpacity < 0 || r.LayerOpacity > 1) {
		warnings = append(warnings, ValidationWarning{
			Field:   "layer_opacity",
			Message: fmt.Sprintf("layer opacity %.2f is outside (0, 1], clamping", r.LayerOpacity),
		})
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: engineering advisories
// ---------------------------------------------------------------------------

// adviseEngineering produces informational findings that neither block
// nor change the build.
func adviseEngineering(r TankRequest) []ValidationWarning {
	var info []ValidationWarning
	info = append(info, advisePressureRating(r)...)
	info = append(info, adviseWindingAngle(r)...)
	info = append(info, adviseDepthOverride(r)...)
	return info
}

// advisePressureRating compares a declared service pressure against the
// rating window of the selected construction type.
func advisePressureRating(r TankRequest) []ValidationWarning {
	var info []ValidationWarning

	if r.ServicePressureBar <= 0 {
		return info
	}
	if r.Type != "" {
		if _, known := vessel.LookupType(r.Type); !known {
			// Unrecognized token already warned in Tier 1; a window
			// check against the fallback type would mislead.
			return info
		}
	}

	spec := vessel.SpecFor(vessel.ParseType(r.Type))
	if r.ServicePressureBar >= spec.MinPressureBar && r.ServicePressureBar <= spec.MaxPressureBar {
		return info
	}

	relation := "is below"
	if r.ServicePressureBar > spec.MaxPressureBar {
		relation = "exceeds"
	}
	msg := fmt.Sprintf("service pressure %.0f bar %s the %s rating window (%.0f-%.0f bar)",
		r.ServicePressureBar, relation, spec.Type, spec.MinPressureBar, spec.MaxPressureBar)
	if s, ok := vessel.LightestFor(r.ServicePressureBar); ok && s.Type != spec.Type {
		msg += fmt.Sprintf("; %s is the lightest construction rated for it", s.Type)
	}
	info = append(info, ValidationWarning{Field: "service_pressure_bar", Message: msg})

	return info
}

// adviseWindingAngle flags isotensoid closures wound far from the
// netting-optimal helix angle.
func adviseWindingAngle(r TankRequest) []ValidationWarning {
	var info []ValidationWarning

	if dome.ParseKind(r.Dome) != dome.KindIsotensoid {
		return info
	}
	a := r.WindingAngleDeg
	if a <= 0 || a >= 90 {
		return info // unset or out of range, handled in Tier 2
	}
	if math.Abs(a-dome.DefaultWindingAngleDeg) > 5 {
		info = append(info, ValidationWarning{
			Field: "winding_angle_deg",
			Message: fmt.Sprintf("winding angle %.1f degrees is far from the netting-optimal %.2f for isotensoid closures",
				a, dome.DefaultWindingAngleDeg),
		})
	}

	return info
}

// adviseDepthOverride flags depth overrides on closures that ignore them.
func adviseDepthOverride(r TankRequest) []ValidationWarning {
	var info []ValidationWarning

	if dome.ParseKind(r.Dome) == dome.KindHemispherical && r.DomeDepthMM > 0 {
		info = append(info, ValidationWarning{
			Field:   "dome_depth_mm",
			Message: fmt.Sprintf("hemispherical closures are as deep as the radius, the %.1fmm override is ignored", r.DomeDepthMM),
		})
	}

	return info
}
