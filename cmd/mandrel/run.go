package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/chazu/mandrel/internal/server"
	"github.com/chazu/mandrel/pkg/assembly"
	"github.com/chazu/mandrel/pkg/engine"
	"github.com/chazu/mandrel/pkg/kernel/sdfx"
	"github.com/chazu/mandrel/pkg/mesh"
	"github.com/chazu/mandrel/pkg/request"
	"github.com/chazu/mandrel/pkg/vessel"
)

// loadRequest reads a request file and runs the blocking checks.
func loadRequest(path string) (*request.TankRequest, error) {
	req, err := request.Load(path)
	if err != nil {
		return nil, err
	}
	if errs := request.Validate(*req); len(errs) > 0 {
		printValidationResult(request.ValidationResult{Errors: errs})
		return nil, fmt.Errorf("request has validation errors")
	}
	return req, nil
}

// emitModel assembles the request and writes the model JSON to stdout.
func emitModel(req *request.TankRequest) error {
	opts := req.ToAssemblyOptions()
	if req.ExactBoss {
		opts.Kernel = sdfx.New()
	}

	start := time.Now()
	model, err := assembly.Build(opts)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"type":     vessel.ParseType(req.Type).String(),
		"dome":     opts.Dome.String(),
		"layers":   len(model.Layers),
		"duration": time.Since(start),
	}).Info("model assembled")

	meshes := make([]*mesh.Mesh, 0, len(model.Layers)+2)
	meshes = append(meshes, model.Layers...)
	if model.TopBoss != nil {
		meshes = append(meshes, model.TopBoss)
	}
	if model.BottomBoss != nil {
		meshes = append(meshes, model.BottomBoss)
	}

	output := map[string]any{
		"meshes":          meshes,
		"total_length_mm": model.TotalLengthMM,
		"max_radius_mm":   model.MaxRadiusMM,
		"cross_section":   req.CrossSection,
		"auto_rotate":     req.AutoRotate,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func runBuild(path string, segments int, parallel, exactBoss bool) error {
	req, err := loadRequest(path)
	if err != nil {
		return err
	}
	if segments > 0 {
		req.Segments = segments
	}
	if parallel {
		req.Parallel = true
	}
	if exactBoss {
		req.ExactBoss = true
	}
	return emitModel(req)
}

func runMetrics(path string) error {
	req, err := loadRequest(path)
	if err != nil {
		return err
	}
	printMetrics(assembly.ComputeMetrics(req.ToAssemblyOptions()))
	return nil
}

func runValidate(path string) error {
	req, err := request.Load(path)
	if err != nil {
		return err
	}

	result := request.ValidateAll(*req)
	printValidationResult(result)

	if !result.OK() {
		os.Exit(1)
	}
	return nil
}

func runTypes() error {
	printTypeCatalog()
	return nil
}

func runEval(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	eng := engine.NewEngine()
	req, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, e.Error())
		}
		return fmt.Errorf("script has %d errors", len(evalErrs))
	}
	if req == nil {
		return fmt.Errorf("script declared no tank")
	}
	return emitModel(req)
}

func runServe(port int) error {
	// .env is optional; a set environment always wins over the file.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(os.Getenv("MANDREL_LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	if port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			port = p
		} else {
			port = 8080
		}
	}

	var cfg server.Config
	if n, err := strconv.Atoi(os.Getenv("MANDREL_SEGMENTS")); err == nil {
		cfg.DefaultSegments = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(log, cfg).Run(ctx, fmt.Sprintf(":%d", port))
}
