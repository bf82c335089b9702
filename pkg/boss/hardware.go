package boss

import (
	"fmt"

	"github.com/chazu/mandrel/pkg/kernel"
	"github.com/chazu/mandrel/pkg/mesh"
)

// boreOverrun extends cutting tools past the faces they pierce so the
// boolean difference leaves no skin.
const boreOverrun = 2.0

// ExactMesh builds the fitting as a true solid on a geometry kernel:
// the bore, the flange bolt holes, and the taper are cut with boolean
// operations instead of approximated by lathe stitching. The result is
// heavier to compute than Generate's and carries flat facet normals,
// so it is the opt-in path for detail renders and export.
func ExactMesh(cfg Config, k kernel.Kernel) (*mesh.Mesh, error) {
	if k == nil {
		return nil, fmt.Errorf("exact boss mesh: no geometry kernel")
	}

	family := cfg.Family
	var solid kernel.Solid
	switch family {
	case FamilyIntegrated:
		solid = exactIntegrated(cfg, k)
	case FamilyFlanged:
		solid = exactFlanged(cfg, k)
	case FamilyMultiPort:
		solid = exactMultiPort(cfg, k)
	case FamilyStandard:
		solid = exactTube(cfg, k)
	default:
		family = FamilyStandard
		solid = exactTube(cfg, k)
	}

	m, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("exact boss mesh: %w", err)
	}
	m.Name = "boss_" + family.String()
	m.Color = mesh.ParseHexColor(MetallicAppearance)
	m.Opacity = 1
	return m, nil
}

// raisedTube is a drilled cylinder with its base in the z=0 plane.
func raisedTube(k kernel.Kernel, ri, ro, height float64) kernel.Solid {
	outer := k.Translate(k.Cylinder(height, ro), 0, 0, height/2)
	bore := k.Translate(k.Cylinder(height+2*boreOverrun, ri), 0, 0, height/2)
	return k.Difference(outer, bore)
}

func exactTube(cfg Config, k kernel.Kernel) kernel.Solid {
	ri, ro, length, _ := cfg.clamped()
	return raisedTube(k, ri, ro, length)
}

func exactIntegrated(cfg Config, k kernel.Kernel) kernel.Solid {
	ri, ro, length, _ := cfg.clamped()
	tip := taperTip(cfg, ri, ro, length)

	body := k.Translate(k.Cone(length, ro, tip), 0, 0, length/2)
	bore := k.Translate(k.Cylinder(length+2*boreOverrun, ri), 0, 0, length/2)
	return k.Difference(body, bore)
}

func exactFlanged(cfg Config, k kernel.Kernel) kernel.Solid {
	ri, ro, length, _ := cfg.clamped()
	rf, thickness, rbc, rb, bolts := flangedDims(cfg, ro, length)

	stem := k.Translate(k.Cylinder(length, ro), 0, 0, length/2)
	flange := k.Translate(k.Cylinder(thickness, rf), 0, 0, length-thickness/2)
	body := k.Union(stem, flange)

	bore := k.Translate(k.Cylinder(length+2*boreOverrun, ri), 0, 0, length/2)
	body = k.Difference(body, bore)

	// One drill at the bolt circle, rotated to each station.
	drill := k.Translate(k.Cylinder(thickness+2*boreOverrun, rb), rbc, 0, length-thickness/2)
	for i := 0; i < bolts; i++ {
		angle := 360 * float64(i) / float64(bolts)
		body = k.Difference(body, k.Rotate(drill, 0, 0, angle))
	}
	return body
}

func exactMultiPort(cfg Config, k kernel.Kernel) kernel.Solid {
	body := exactTube(cfg, k)
	for _, aux := range auxList(cfg) {
		port := raisedTube(k, aux.InnerDiameterMM/2, aux.OuterDiameterMM/2, aux.ProtrusionMM)
		angle := aux.AngleDeg
		placed := k.Rotate(k.Translate(port, aux.OffsetMM, 0, 0), 0, 0, angle)
		body = k.Union(body, placed)
	}
	return body
}
