package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"jsonmesh-renderer/internal/backend"
	"jsonmesh-renderer/internal/batch"
	"jsonmesh-renderer/internal/config"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	input := flag.String("input", "", "Mesh file or directory of mesh files")
	outputDir := flag.String("output", "", "Output directory (default: <input>/renders)")
	size := flag.Int("size", 0, "Output size in pixels (default: 400)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	backendName := flag.String("backend", "", "Rendering backend: raster or fauxgl (default: raster)")
	format := flag.String("format", "", "Output format: webp or png (default: webp)")
	frames := flag.Int("frames", 0, "Also write N spinning animation frames per mesh")
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (default: 75)")
	margin := flag.Float64("margin", 0, "Framing margin factor >= 1 (default: 1.05)")
	background := flag.String("background", "", "Background #rrggbb[aa] (default: transparent)")

	flag.Parse()
	if *input == "" && flag.NArg() > 0 {
		*input = flag.Arg(0)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Input:      *input,
		OutputDir:  *outputDir,
		Size:       *size,
		Workers:    *workers,
		Format:     *format,
		Backend:    *backendName,
		Frames:     *frames,
		FOV:        *fov,
		Margin:     *margin,
		Background: *background,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input. Use -input or config.json.")
		os.Exit(1)
	}

	jobs, err := batch.Discover(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("No meshes to render.")
		os.Exit(0)
	}

	newRenderer, err := backend.Factory(cfg.Backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	lights, _ := cfg.SceneLights()
	bg, _ := cfg.BackgroundColor()

	fmt.Printf("three.js JSON mesh renderer → %s (%s backend)\n", cfg.Format, cfg.Backend)
	fmt.Printf("Meshes: %d, Workers: %d, Size: %d (x%d supersample)\n", len(jobs), cfg.Workers, cfg.RenderSize, cfg.Supersample)
	fmt.Printf("Camera: fov %.1f, margin %.2f, direction %v\n", cfg.Camera.FOV, cfg.Camera.Margin, cfg.Camera.Direction)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		NewRenderer: newRenderer,
		Camera:      cfg.CameraConfig(),
		Frame:       cfg.FrameConfig(),
		Lights:      lights,
		Background:  bg,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Format:      cfg.Format,
		Frames:      cfg.Frames,
		Spin:        cfg.Spin,
	}

	results := batch.Run(ctx, batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed, fallback := 0, 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			if !r.Framed {
				fallback++
			}
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))
	if fallback > 0 {
		fmt.Printf("Default camera (could not frame): %d\n", fallback)
	}

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, batch.ManifestName)
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
