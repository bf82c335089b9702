// Package assembly builds the full vessel model: one revolved shell per
// material layer, a dome at each end, and a boss fitting at each apex.
// Build is a pure function of its options; nothing persists between
// calls.
package assembly

import (
	"fmt"
	"sync"

	"github.com/chazu/mandrel/pkg/boss"
	"github.com/chazu/mandrel/pkg/dome"
	"github.com/chazu/mandrel/pkg/kernel"
	"github.com/chazu/mandrel/pkg/lathe"
	"github.com/chazu/mandrel/pkg/mesh"
	"github.com/chazu/mandrel/pkg/vessel"
)

// Defaults used when the corresponding option is left zero.
const (
	DefaultSegments      = 64
	DefaultProfilePoints = 48
)

// Options selects everything about the assembled vessel. Zero values
// mean "use the default"; explicitly nonsensical values (negative
// radius, two revolution segments) surface as lathe errors.
type Options struct {
	Type             vessel.Type
	Dome             dome.Kind
	CylinderRadiusMM float64
	CylinderLengthMM float64

	// DomeOptions carries the family-specific shape parameters and the
	// profile sample count. CylinderRadius and BossRadius are filled in
	// by the assembler from the tank and boss dimensions.
	DomeOptions dome.Options

	Boss     boss.Config
	Segments int

	// LayerOpacity is the global multiplier applied on top of each
	// layer's base opacity. Zero means 1.
	LayerOpacity float64

	// ExactBoss routes the fittings through Kernel for true boolean
	// cuts. Without a kernel the lathe approximation is used.
	ExactBoss bool
	Kernel    kernel.Kernel

	// Parallel revolves the material layers concurrently.
	Parallel bool
}

// Model is the assembled output: layer shells innermost first, the two
// boss fittings, and the overall envelope scalars.
type Model struct {
	Layers     []*mesh.Mesh
	TopBoss    *mesh.Mesh
	BottomBoss *mesh.Mesh

	TotalLengthMM float64
	MaxRadiusMM   float64
}

// Metrics is the lightweight summary for readout panels that need the
// numbers without the meshes.
type Metrics struct {
	Type               vessel.Type
	Dome               dome.Kind
	DomeDepthMM        float64
	DomeVolumeMM3      float64
	DomeSurfaceAreaMM2 float64
	TotalLengthMM      float64
	MaxRadiusMM        float64
	MassKg             float64
}

// normalize fills defaulted fields and resolves the dome options the
// profile generator will see.
func normalize(opts Options) Options {
	if opts.Segments == 0 {
		opts.Segments = DefaultSegments
	}
	if opts.DomeOptions.NumPoints == 0 {
		opts.DomeOptions.NumPoints = DefaultProfilePoints
	}
	if opts.LayerOpacity <= 0 {
		opts.LayerOpacity = 1
	}
	if opts.LayerOpacity > 1 {
		opts.LayerOpacity = 1
	}
	if opts.CylinderLengthMM < 0 {
		opts.CylinderLengthMM = 0
	}
	if opts.CylinderRadiusMM < 0 {
		opts.CylinderRadiusMM = 0
	}
	opts.DomeOptions.CylinderRadius = opts.CylinderRadiusMM
	opts.DomeOptions.BossRadius = opts.Boss.Radius()
	return opts
}

// Build assembles the vessel model. The only error source is the lathe
// rejecting an explicitly degenerate revolution request; every other
// out-of-range input clamps or falls back.
func Build(opts Options) (*Model, error) {
	opts = normalize(opts)

	profile := dome.Generate(opts.Dome, opts.DomeOptions)
	meridian := buildMeridian(profile, opts.CylinderRadiusMM, opts.CylinderLengthMM)

	spec := vessel.SpecFor(opts.Type)
	layers := make([]*mesh.Mesh, len(spec.Layers))

	build := func(i int) error {
		layer := spec.Layers[i]
		var cumulative float64
		for _, l := range spec.Layers[:i+1] {
			cumulative += l.ThicknessMM
		}
		scaled := scaleRadius(meridian, opts.CylinderRadiusMM, cumulative)
		m, err := lathe.Revolve(scaled, opts.Segments)
		if err != nil {
			return fmt.Errorf("layer %q: %w", layer.Name, err)
		}
		m.Name = layer.Name
		m.Color = mesh.ParseHexColor(layer.Appearance)
		m.Opacity = float32(layer.Opacity * opts.LayerOpacity)
		layers[i] = m
		return nil
	}

	if opts.Parallel {
		var wg sync.WaitGroup
		errs := make([]error, len(spec.Layers))
		for i := range spec.Layers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = build(i)
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	} else {
		for i := range spec.Layers {
			if err := build(i); err != nil {
				return nil, err
			}
		}
	}

	top, bottom, err := bossPair(opts)
	if err != nil {
		return nil, err
	}
	halfLength := profile.Depth + opts.CylinderLengthMM/2
	top.Translate(0, 0, halfLength)
	bottom.MirrorZ()
	bottom.Translate(0, 0, -halfLength)

	return &Model{
		Layers:        layers,
		TopBoss:       top,
		BottomBoss:    bottom,
		TotalLengthMM: opts.CylinderLengthMM + 2*profile.Depth,
		MaxRadiusMM:   opts.CylinderRadiusMM + spec.TotalWallThickness(),
	}, nil
}

// ComputeMetrics evaluates the summary scalars without generating any
// meshes.
func ComputeMetrics(opts Options) Metrics {
	opts = normalize(opts)
	profile := dome.Generate(opts.Dome, opts.DomeOptions)
	spec := vessel.SpecFor(opts.Type)

	return Metrics{
		Type:               spec.Type,
		Dome:               profile.Kind,
		DomeDepthMM:        profile.Depth,
		DomeVolumeMM3:      profile.Volume,
		DomeSurfaceAreaMM2: profile.SurfaceArea,
		TotalLengthMM:      opts.CylinderLengthMM + 2*profile.Depth,
		MaxRadiusMM:        opts.CylinderRadiusMM + spec.TotalWallThickness(),
		MassKg: vessel.EstimateMass(spec.Type, opts.CylinderRadiusMM,
			opts.CylinderLengthMM, profile.Depth),
	}
}

// buildMeridian lays the full axial profile out along Z, centered on
// the origin: the dome ascending from the bottom apex, two cylinder
// samples, and the dome again reversed toward the top apex. The joint
// samples are duplicated on purpose; the zero-area stitch rows give the
// lathe a crisp normal break between dome and cylinder wall.
func buildMeridian(profile dome.Profile, radius, length float64) []lathe.Point {
	depth := profile.Depth
	half := depth + length/2

	pts := make([]lathe.Point, 0, 2*len(profile.Points)+2)
	for _, p := range profile.Points {
		pts = append(pts, lathe.Point{R: p.R, Z: p.Z - half})
	}
	pts = append(pts,
		lathe.Point{R: radius, Z: depth - half},
		lathe.Point{R: radius, Z: depth + length - half},
	)
	for i := len(profile.Points) - 1; i >= 0; i-- {
		p := profile.Points[i]
		pts = append(pts, lathe.Point{R: p.R, Z: 2*depth + length - p.Z - half})
	}
	return pts
}

// scaleRadius draws the meridian at a layer's outer surface by scaling
// the radius component by (baseRadius + cumulative) / baseRadius. Axial
// positions are untouched, so the dome shape grows proportionally with
// the wall instead of offsetting along local normals; that keeps layers
// from self-intersecting at any thickness.
func scaleRadius(meridian []lathe.Point, baseRadius, cumulative float64) []lathe.Point {
	if baseRadius <= 0 {
		return append([]lathe.Point(nil), meridian...)
	}
	scale := (baseRadius + cumulative) / baseRadius
	out := make([]lathe.Point, len(meridian))
	for i, p := range meridian {
		out[i] = lathe.Point{R: p.R * scale, Z: p.Z}
	}
	return out
}

// bossPair produces the two apex fittings. With ExactBoss and a kernel
// the fittings are cut as true solids; otherwise the lathe fittings are
// used. The bottom fitting is a clone so the mirror cannot touch the
// top one's buffers.
func bossPair(opts Options) (top, bottom *mesh.Mesh, err error) {
	if opts.ExactBoss && opts.Kernel != nil {
		top, err = boss.ExactMesh(opts.Boss, opts.Kernel)
		if err != nil {
			return nil, nil, fmt.Errorf("boss fitting: %w", err)
		}
		return top, top.Clone(), nil
	}
	top = boss.Generate(opts.Boss)
	return top, top.Clone(), nil
}
