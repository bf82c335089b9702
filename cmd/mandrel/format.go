package main

import (
	"fmt"

	"github.com/chazu/mandrel/pkg/assembly"
	"github.com/chazu/mandrel/pkg/request"
	"github.com/chazu/mandrel/pkg/vessel"
)

func printValidationResult(r request.ValidationResult) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			if e.Field != "" {
				fmt.Printf("  %s: %s\n", e.Field, e.Message)
			} else {
				fmt.Printf("  %s\n", e.Message)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			if w.Field != "" {
				fmt.Printf("  %s: %s\n", w.Field, w.Message)
			} else {
				fmt.Printf("  %s\n", w.Message)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  %s\n", i.Message)
		}
		fmt.Println()
	}

	summary := fmt.Sprintf("%d errors, %d warnings, %d info",
		len(r.Errors), len(r.Warnings), len(r.Info))
	if r.OK() {
		fmt.Printf("Result: VALID (%s)\n", summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", summary)
	}
}

func printMetrics(m assembly.Metrics) {
	fmt.Println("Tank Metrics")
	fmt.Println("============")
	fmt.Println()
	fmt.Printf("  Construction:    %s\n", m.Type)
	fmt.Printf("  Closure:         %s\n", m.Dome)
	fmt.Printf("  Dome depth:      %.1f mm\n", m.DomeDepthMM)
	fmt.Printf("  Dome volume:     %.2f L\n", m.DomeVolumeMM3/1e6)
	fmt.Printf("  Dome surface:    %.3f m2\n", m.DomeSurfaceAreaMM2/1e6)
	fmt.Printf("  Overall length:  %.1f mm\n", m.TotalLengthMM)
	fmt.Printf("  Max radius:      %.1f mm\n", m.MaxRadiusMM)
	fmt.Printf("  Dry mass:        %.2f kg\n", m.MassKg)
}

func printTypeCatalog() {
	fmt.Printf("%-10s %8s %14s  %s\n", "TYPE", "WALL", "PRESSURE", "DESCRIPTION")
	fmt.Printf("%-10s %8s %14s  %s\n", "----------", "--------", "--------------", "-----------")
	for _, t := range vessel.Types() {
		spec := vessel.SpecFor(t)
		fmt.Printf("%-10s %6.1fmm %6.0f-%.0f bar  %s\n",
			spec.Type, spec.TotalWallThickness(),
			spec.MinPressureBar, spec.MaxPressureBar, spec.Description)
	}
	fmt.Println()

	for _, t := range vessel.Types() {
		spec := vessel.SpecFor(t)
		fmt.Printf("%s layers (inner to outer):\n", spec.Type)
		for _, l := range spec.Layers {
			fmt.Printf("  %-26s %5.1fmm  %.2f g/cm3\n", l.Name, l.ThicknessMM, l.DensityGPerCm3)
		}
		fmt.Println()
	}
}
