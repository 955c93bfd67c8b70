package main

import (
	"flag"
	"fmt"
	"os"

	"jsonmesh-renderer/internal/autoframe"
	"jsonmesh-renderer/internal/config"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/scene"
)

func main() {
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (default: 75)")
	margin := flag.Float64("margin", 0, "Framing margin factor >= 1 (default: 1.05)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: inspect [-fov deg] [-margin f] model.json...")
		os.Exit(1)
	}

	var cfg config.Config
	cfg.Resolve(config.Flags{FOV: *fov, Margin: *margin})

	failed := false
	for _, path := range flag.Args() {
		if err := inspect(path, &cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(path string, cfg *config.Config) error {
	m, err := mesh.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  Format: %v, Vertices: %d, Faces: %d, Materials: %d\n",
		m.FormatVersion, len(m.Vertices), len(m.Faces), len(m.Materials))

	var uv, vnorm, vcol int
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.HasUV {
			uv++
		}
		if f.HasVertexNorm {
			vnorm++
		}
		if f.HasVertColor || f.HasColor {
			vcol++
		}
	}
	fmt.Printf("  Faces with UVs: %d, vertex normals: %d, colors: %d\n", uv, vnorm, vcol)

	for i, mat := range scene.ResolveMaterials(m.Materials, nil) {
		src := ""
		if i < len(m.Materials) {
			src = m.Materials[i].MapDiffuse
		}
		fmt.Printf("  Material[%d] %q: color %.2f, opacity %.2f, map %q\n", i, mat.Name, mat.Color, mat.Opacity, src)
	}

	box, err := m.BoundingBox()
	if err != nil {
		return err
	}
	size := box.Size()
	fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n",
		box.Min[0], box.Max[0], box.Min[1], box.Max[1], box.Min[2], box.Max[2])
	fmt.Printf("  Size: %.3f x %.3f x %.3f\n", size[0], size[1], size[2])

	sphere, err := m.BoundingSphere()
	if err != nil {
		return err
	}
	fmt.Printf("  Sphere: center (%.3f, %.3f, %.3f), radius %.3f\n",
		sphere.Center[0], sphere.Center[1], sphere.Center[2], sphere.Radius)

	p, err := autoframe.Frame(sphere, cfg.Camera.FOV, cfg.FrameConfig())
	if err != nil {
		fmt.Printf("  Autoframe: %v (default camera would be used)\n", err)
		return nil
	}
	fmt.Printf("  Autoframe (fov %.1f, margin %.2f): camera (%.3f, %.3f, %.3f), distance %.3f\n",
		cfg.Camera.FOV, cfg.Camera.Margin, p.Position[0], p.Position[1], p.Position[2], p.Distance)
	return nil
}
