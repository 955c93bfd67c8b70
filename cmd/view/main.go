package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"jsonmesh-renderer/internal/backend"
	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/config"
	"jsonmesh-renderer/internal/controls"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
	"jsonmesh-renderer/internal/texture"
	"jsonmesh-renderer/internal/viewer"
	"jsonmesh-renderer/internal/watch"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	meshPath := flag.String("mesh", "", "Mesh file to show")
	backendName := flag.String("backend", "", "Rendering backend: raster or fauxgl (default: raster)")
	watchFile := flag.Bool("watch", false, "Reload the mesh when the file changes")
	spin := flag.Bool("spin", false, "Start with the model spinning")
	size := flag.Int("size", 0, "Window size in pixels (default: 400)")
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (default: 75)")
	margin := flag.Float64("margin", 0, "Framing margin factor >= 1 (default: 1.05)")
	flag.Parse()
	if *meshPath == "" && flag.NArg() > 0 {
		*meshPath = flag.Arg(0)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		Mesh:    *meshPath,
		Backend: *backendName,
		Size:    *size,
		FOV:     *fov,
		Margin:  *margin,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Mesh == "" {
		fmt.Fprintln(os.Stderr, "Error: no mesh. Use -mesh or config.json.")
		os.Exit(1)
	}

	model, err := mesh.Load(cfg.Mesh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	r, err := backend.New(cfg.Backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	lights, _ := cfg.SceneLights()
	bg, _ := cfg.BackgroundColor()
	textures := texture.NewCache(texture.BuildIndex(filepath.Dir(cfg.Mesh)))

	var tb *controls.Trackball
	b := &scene.Builder{
		Renderer: r,
		Controls: func(cam *camera.Perspective) scene.Controls {
			tb = controls.NewTrackball(cam)
			cfg.ApplyTrackball(tb)
			return tb
		},
		Textures:   textures,
		Camera:     cfg.CameraConfig(),
		Frame:      cfg.FrameConfig(),
		Lights:     lights,
		Background: bg,
	}
	view, err := b.Build(model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d vertices, %d faces\n", cfg.Mesh, len(model.Vertices), len(model.Faces))
	if view.Framed() {
		fmt.Printf("Camera: %.3f from (%.3f, %.3f, %.3f)\n",
			view.Placement.Distance, view.Sphere.Center[0], view.Sphere.Center[1], view.Sphere.Center[2])
	} else {
		fmt.Printf("Camera: default placement (%v)\n", view.FrameErr)
	}

	session := viewer.NewSession(view, tb, viewer.Options{
		Spin:     cfg.Spin,
		Spinning: *spin,
		Textures: textures,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watchFile {
		w, err := watch.New(cfg.Mesh)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		go w.Run(ctx, session.Reload)
		fmt.Printf("Watching %s\n", w.Path())
	}

	if err := viewer.Run(session, "jsonmesh viewer: "+filepath.Base(cfg.Mesh), cfg.RenderSize, cfg.RenderSize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
