// Package request defines the declarative build request for a vessel.
// A request round-trips through YAML or JSON, validates in tiers
// (blocking errors, clamp warnings, engineering advisories), and maps
// onto assembly options.
package request

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/mandrel/pkg/assembly"
	"github.com/chazu/mandrel/pkg/boss"
	"github.com/chazu/mandrel/pkg/dome"
	"github.com/chazu/mandrel/pkg/vessel"
)

// TankRequest is the top-level build request. Zero-valued fields mean
// "use the default"; the geometry layer clamps whatever remains out of
// range, and validation reports what the clamps will do.
type TankRequest struct {
	Type string `yaml:"type" json:"type"`
	Dome string `yaml:"dome" json:"dome"`

	RadiusMM float64 `yaml:"radius_mm" json:"radius_mm"`
	LengthMM float64 `yaml:"length_mm" json:"length_mm"`

	Segments      int `yaml:"segments" json:"segments"`
	ProfilePoints int `yaml:"profile_points" json:"profile_points"`

	WindingAngleDeg float64 `yaml:"winding_angle_deg" json:"winding_angle_deg"`
	AspectRatio     float64 `yaml:"aspect_ratio" json:"aspect_ratio"`
	CrownRatio      float64 `yaml:"crown_ratio" json:"crown_ratio"`
	KnuckleRatio    float64 `yaml:"knuckle_ratio" json:"knuckle_ratio"`
	FacetFrequency  float64 `yaml:"facet_frequency" json:"facet_frequency"`
	DomeDepthMM     float64 `yaml:"dome_depth_mm" json:"dome_depth_mm"`

	ServicePressureBar float64 `yaml:"service_pressure_bar" json:"service_pressure_bar"`
	LayerOpacity       float64 `yaml:"layer_opacity" json:"layer_opacity"`

	Boss BossRequest `yaml:"boss" json:"boss"`

	ExactBoss bool `yaml:"exact_boss" json:"exact_boss"`
	Parallel  bool `yaml:"parallel" json:"parallel"`

	// Renderer toggles. The geometry layer never reads these; they ride
	// along for whatever is drawing the model.
	CrossSection bool `yaml:"cross_section" json:"cross_section"`
	AutoRotate   bool `yaml:"auto_rotate" json:"auto_rotate"`
}

// BossRequest selects a port fitting family and its dimensions. The
// taper, flange, and aux fields only apply to their families.
type BossRequest struct {
	Family          string  `yaml:"family" json:"family"`
	InnerDiameterMM float64 `yaml:"inner_diameter_mm" json:"inner_diameter_mm"`
	OuterDiameterMM float64 `yaml:"outer_diameter_mm" json:"outer_diameter_mm"`
	ProtrusionMM    float64 `yaml:"protrusion_mm" json:"protrusion_mm"`
	Segments        int     `yaml:"segments" json:"segments"`

	TaperAngleDeg float64 `yaml:"taper_angle_deg" json:"taper_angle_deg"`

	FlangeDiameterMM  float64 `yaml:"flange_diameter_mm" json:"flange_diameter_mm"`
	FlangeThicknessMM float64 `yaml:"flange_thickness_mm" json:"flange_thickness_mm"`
	BoltCircleMM      float64 `yaml:"bolt_circle_mm" json:"bolt_circle_mm"`
	BoltCount         int     `yaml:"bolt_count" json:"bolt_count"`

	Aux []AuxPortRequest `yaml:"aux_ports" json:"aux_ports"`
}

// AuxPortRequest places one auxiliary opening of a multi-port fitting.
type AuxPortRequest struct {
	OffsetMM        float64 `yaml:"offset_mm" json:"offset_mm"`
	AngleDeg        float64 `yaml:"angle_deg" json:"angle_deg"`
	InnerDiameterMM float64 `yaml:"inner_diameter_mm" json:"inner_diameter_mm"`
	OuterDiameterMM float64 `yaml:"outer_diameter_mm" json:"outer_diameter_mm"`
	ProtrusionMM    float64 `yaml:"protrusion_mm" json:"protrusion_mm"`
}

// Defaults returns the canonical reference request: a Type IV vessel
// with isotensoid closures, 200mm radius, 800mm barrel.
func Defaults() TankRequest {
	return TankRequest{
		Type:            vessel.TypeIV.String(),
		Dome:            dome.KindIsotensoid.String(),
		RadiusMM:        200,
		LengthMM:        800,
		Segments:        assembly.DefaultSegments,
		ProfilePoints:   assembly.DefaultProfilePoints,
		WindingAngleDeg: dome.DefaultWindingAngleDeg,
		LayerOpacity:    1,
	}
}

// Load reads a tank request from a YAML file, or from JSON when the
// path ends in .json.
func Load(path string) (*TankRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tank request: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var req TankRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parsing tank request JSON: %w", err)
		}
		return &req, nil
	}
	return Parse(data)
}

// Parse decodes a YAML tank request.
func Parse(data []byte) (*TankRequest, error) {
	var req TankRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing tank request YAML: %w", err)
	}
	return &req, nil
}

// ToAssemblyOptions maps the request onto build options. Tokens resolve
// with their documented fallbacks; dimensional clamping is left to the
// geometry layer.
func (r TankRequest) ToAssemblyOptions() assembly.Options {
	return assembly.Options{
		Type:             vessel.ParseType(r.Type),
		Dome:             dome.ParseKind(r.Dome),
		CylinderRadiusMM: r.RadiusMM,
		CylinderLengthMM: r.LengthMM,
		DomeOptions: dome.Options{
			TargetDepth:     r.DomeDepthMM,
			NumPoints:       r.ProfilePoints,
			WindingAngleDeg: r.WindingAngleDeg,
			AspectRatio:     r.AspectRatio,
			CrownRatio:      r.CrownRatio,
			KnuckleRatio:    r.KnuckleRatio,
			FacetFrequency:  r.FacetFrequency,
		},
		Boss:         r.Boss.config(),
		Segments:     r.Segments,
		LayerOpacity: r.LayerOpacity,
		ExactBoss:    r.ExactBoss,
		Parallel:     r.Parallel,
	}
}

// config resolves the fitting family and attaches family-specific
// extras only when the request actually sets them, so the fitting
// defaults stay in charge otherwise.
func (b BossRequest) config() boss.Config {
	cfg := boss.Config{
		Family:          boss.ParseFamily(b.Family),
		InnerDiameterMM: b.InnerDiameterMM,
		OuterDiameterMM: b.OuterDiameterMM,
		ProtrusionMM:    b.ProtrusionMM,
		Segments:        b.Segments,
	}
	switch cfg.Family {
	case boss.FamilyIntegrated:
		if b.TaperAngleDeg != 0 {
			cfg.Extras = boss.IntegratedExtras{TaperAngleDeg: b.TaperAngleDeg}
		}
	case boss.FamilyFlanged:
		if b.FlangeDiameterMM != 0 || b.FlangeThicknessMM != 0 || b.BoltCircleMM != 0 || b.BoltCount != 0 {
			cfg.Extras = boss.FlangedExtras{
				FlangeDiameterMM:     b.FlangeDiameterMM,
				FlangeThicknessMM:    b.FlangeThicknessMM,
				BoltCircleDiameterMM: b.BoltCircleMM,
				BoltCount:            b.BoltCount,
			}
		}
	case boss.FamilyMultiPort:
		if len(b.Aux) > 0 {
			aux := make([]boss.AuxPort, len(b.Aux))
			for i, p := range b.Aux {
				aux[i] = boss.AuxPort{
					OffsetMM:        p.OffsetMM,
					AngleDeg:        p.AngleDeg,
					InnerDiameterMM: p.InnerDiameterMM,
					OuterDiameterMM: p.OuterDiameterMM,
					ProtrusionMM:    p.ProtrusionMM,
				}
			}
			cfg.Extras = boss.MultiPortExtras{Aux: aux}
		}
	}
	return cfg
}
