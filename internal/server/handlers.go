package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/chazu/mandrel/pkg/assembly"
	"github.com/chazu/mandrel/pkg/engine"
	"github.com/chazu/mandrel/pkg/mesh"
	"github.com/chazu/mandrel/pkg/request"
	"github.com/chazu/mandrel/pkg/vessel"
)

// MeshData decorates one mesh with the derived counts a renderer
// sizes its buffers from.
type MeshData struct {
	*mesh.Mesh
	VertexCount   int `json:"vertex_count"`
	TriangleCount int `json:"triangle_count"`
}

// BuildResponse is the full model payload: layer shells innermost
// first, then the two port fittings, in one mesh list for a renderer.
type BuildResponse struct {
	Meshes        []MeshData `json:"meshes"`
	TotalLengthMM float64    `json:"total_length_mm"`
	MaxRadiusMM   float64    `json:"max_radius_mm"`
	CrossSection  bool       `json:"cross_section"`
	AutoRotate    bool       `json:"auto_rotate"`
}

// MetricsResponse carries the summary scalars without any meshes.
type MetricsResponse struct {
	Type               string  `json:"type"`
	Dome               string  `json:"dome"`
	DomeDepthMM        float64 `json:"dome_depth_mm"`
	DomeVolumeMM3      float64 `json:"dome_volume_mm3"`
	DomeSurfaceAreaMM2 float64 `json:"dome_surface_area_mm2"`
	TotalLengthMM      float64 `json:"total_length_mm"`
	MaxRadiusMM        float64 `json:"max_radius_mm"`
	MassKg             float64 `json:"mass_kg"`
}

// ValidateResponse reports all validation tiers for a request.
type ValidateResponse struct {
	Valid    bool                        `json:"valid"`
	Errors   []request.ValidationError   `json:"errors"`
	Warnings []request.ValidationWarning `json:"warnings"`
	Info     []request.ValidationWarning `json:"info"`
	Summary  string                      `json:"summary"`
}

// EvalRequest carries DSL source from an editor.
type EvalRequest struct {
	Source string `json:"source"`
}

// EvalResponse is the editor round-trip: the assembled model when the
// program declared a tank, and the eval errors when it did not parse.
type EvalResponse struct {
	Meshes        []MeshData         `json:"meshes"`
	Errors        []engine.EvalError `json:"errors"`
	TotalLengthMM float64            `json:"total_length_mm"`
	MaxRadiusMM   float64            `json:"max_radius_mm"`
}

// TypeResponse describes one catalog construction family.
type TypeResponse struct {
	Type           string          `json:"type"`
	Label          string          `json:"label"`
	Description    string          `json:"description"`
	Layers         []LayerResponse `json:"layers"`
	WallMM         float64         `json:"wall_mm"`
	MinPressureBar float64         `json:"min_pressure_bar"`
	MaxPressureBar float64         `json:"max_pressure_bar"`
	WeightRatio    float64         `json:"weight_ratio"`
	CostRatio      float64         `json:"cost_ratio"`
}

// LayerResponse describes one wall layer of a construction family.
type LayerResponse struct {
	Name           string  `json:"name"`
	ThicknessMM    float64 `json:"thickness_mm"`
	DensityGPerCm3 float64 `json:"density_g_per_cm3"`
	Appearance     string  `json:"appearance"`
	Opacity        float64 `json:"opacity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*request.TankRequest, bool) {
	var req request.TankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// buildOptions maps a request onto assembly options with the server's
// environment defaults and shared kernel applied.
func (s *Server) buildOptions(req request.TankRequest) assembly.Options {
	opts := req.ToAssemblyOptions()
	if req.Segments == 0 && s.cfg.DefaultSegments > 0 {
		opts.Segments = s.cfg.DefaultSegments
	}
	opts.Kernel = s.kernel
	return opts
}

func buildResponse(model *assembly.Model, req request.TankRequest) BuildResponse {
	parts := make([]*mesh.Mesh, 0, len(model.Layers)+2)
	parts = append(parts, model.Layers...)
	if model.TopBoss != nil {
		parts = append(parts, model.TopBoss)
	}
	if model.BottomBoss != nil {
		parts = append(parts, model.BottomBoss)
	}
	meshes := make([]MeshData, 0, len(parts))
	for _, m := range parts {
		meshes = append(meshes, MeshData{Mesh: m, VertexCount: m.VertexCount(), TriangleCount: m.TriangleCount()})
	}
	return BuildResponse{
		Meshes:        meshes,
		TotalLengthMM: model.TotalLengthMM,
		MaxRadiusMM:   model.MaxRadiusMM,
		CrossSection:  req.CrossSection,
		AutoRotate:    req.AutoRotate,
	}
}

func validateResponse(res request.ValidationResult) ValidateResponse {
	out := ValidateResponse{
		Valid:    res.OK(),
		Errors:   res.Errors,
		Warnings: res.Warnings,
		Info:     res.Info,
		Summary: fmt.Sprintf("%d errors, %d warnings, %d info",
			len(res.Errors), len(res.Warnings), len(res.Info)),
	}
	// Keep the arrays present in the JSON even when empty.
	if out.Errors == nil {
		out.Errors = []request.ValidationError{}
	}
	if out.Warnings == nil {
		out.Warnings = []request.ValidationWarning{}
	}
	if out.Info == nil {
		out.Info = []request.ValidationWarning{}
	}
	return out
}

func typeResponse(spec vessel.Spec) TypeResponse {
	layers := make([]LayerResponse, 0, len(spec.Layers))
	for _, l := range spec.Layers {
		layers = append(layers, LayerResponse{
			Name:           l.Name,
			ThicknessMM:    l.ThicknessMM,
			DensityGPerCm3: l.DensityGPerCm3,
			Appearance:     l.Appearance,
			Opacity:        l.Opacity,
		})
	}
	return TypeResponse{
		Type:           spec.Type.String(),
		Label:          spec.Label,
		Description:    spec.Description,
		Layers:         layers,
		WallMM:         spec.TotalWallThickness(),
		MinPressureBar: spec.MinPressureBar,
		MaxPressureBar: spec.MaxPressureBar,
		WeightRatio:    spec.WeightRatio,
		CostRatio:      spec.CostRatio,
	}
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if errs := request.Validate(*req); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse(request.ValidationResult{Errors: errs}))
		return
	}

	start := time.Now()
	model, err := assembly.Build(s.buildOptions(*req))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	s.log.WithFields(logrus.Fields{
		"type":     vessel.ParseType(req.Type).String(),
		"dome":     req.Dome,
		"layers":   len(model.Layers),
		"duration": time.Since(start),
	}).Info("tank assembled")

	writeJSON(w, http.StatusOK, buildResponse(model, *req))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if errs := request.Validate(*req); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse(request.ValidationResult{Errors: errs}))
		return
	}

	m := assembly.ComputeMetrics(s.buildOptions(*req))
	writeJSON(w, http.StatusOK, MetricsResponse{
		Type:               m.Type.String(),
		Dome:               m.Dome.String(),
		DomeDepthMM:        m.DomeDepthMM,
		DomeVolumeMM3:      m.DomeVolumeMM3,
		DomeSurfaceAreaMM2: m.DomeSurfaceAreaMM2,
		TotalLengthMM:      m.TotalLengthMM,
		MaxRadiusMM:        m.MaxRadiusMM,
		MassKg:             m.MassKg,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, validateResponse(request.ValidateAll(*req)))
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var body EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	result := EvalResponse{
		Meshes: []MeshData{},
		Errors: []engine.EvalError{},
	}

	req, evalErrs, err := s.engine.Evaluate(body.Source)
	if err != nil {
		// Fatal error (panic, timeout, superseded).
		s.log.WithField("error", err).Warn("evaluation failed")
		result.Errors = append(result.Errors, engine.EvalError{Message: err.Error()})
		writeJSON(w, http.StatusOK, result)
		return
	}
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		writeJSON(w, http.StatusOK, result)
		return
	}
	if req == nil {
		// The program evaluated but declared no tank.
		writeJSON(w, http.StatusOK, result)
		return
	}

	model, err := assembly.Build(s.buildOptions(*req))
	if err != nil {
		result.Errors = append(result.Errors, engine.EvalError{Message: "assembly failed: " + err.Error()})
		writeJSON(w, http.StatusOK, result)
		return
	}

	build := buildResponse(model, *req)
	result.Meshes = build.Meshes
	result.TotalLengthMM = build.TotalLengthMM
	result.MaxRadiusMM = build.MaxRadiusMM
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]TypeResponse, 0, len(vessel.Types()))
	for _, t := range vessel.Types() {
		types = append(types, typeResponse(vessel.SpecFor(t)))
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	t, ok := vessel.LookupType(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown construction type %q", name)})
		return
	}
	writeJSON(w, http.StatusOK, typeResponse(vessel.SpecFor(t)))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
