// Package batch renders a set of mesh files to still images (and optional spin
// animations) with a worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"jsonmesh-renderer/internal/autoframe"
	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
	"jsonmesh-renderer/internal/postprocess"
	"jsonmesh-renderer/internal/scene"
	"jsonmesh-renderer/internal/texture"
)

// Output formats.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir string
	// NewRenderer is called once per worker.
	NewRenderer func() scene.Renderer
	Camera      scene.CameraConfig
	Frame       autoframe.Config
	Lights      []scene.Light
	Background  color.NRGBA
	RenderSize  int
	Supersample int
	Workers     int
	Format      string
	Frames      int     // >1 also writes <name>/<i>.<format> spinning the model
	Spin        float64 // radians about x and y per animation frame
}

// Job is one mesh file to render. Name is the output stem.
type Job struct {
	Name string
	Path string
}

// Result holds the outcome of processing one job.
type Result struct {
	Name      string
	Model     string
	Image     string
	Frames    []string
	Framed    bool
	Sphere    mathutil.Sphere
	Placement autoframe.Placement
	Coverage  postprocess.Coverage
	Success   bool
	Error     string
}

// ErrDuplicateName is returned by Discover when two files map to the same output name.
var ErrDuplicateName = errors.New("batch: duplicate job name")

// Discover lists the jobs under input: a single mesh file, or every *.json file below a
// directory except manifests. Names are slash-separated paths relative to the directory,
// without extension.
func Discover(input string) ([]Job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("batch: stat input: %w", err)
	}
	if !info.IsDir() {
		return []Job{{Name: stem(filepath.Base(input)), Path: input}}, nil
	}

	var jobs []Job
	err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") || strings.EqualFold(d.Name(), ManifestName) {
			return nil
		}
		rel, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{Name: filepath.ToSlash(stem(rel)), Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", input, err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	for i := 1; i < len(jobs); i++ {
		if jobs[i].Name == jobs[i-1].Name {
			return nil, fmt.Errorf("%w: %q from %s and %s", ErrDuplicateName, jobs[i].Name, jobs[i-1].Path, jobs[i].Path)
		}
	}
	return jobs, nil
}

func stem(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	// "model.3js.json" → "model"
	if i := strings.Index(filepath.Base(name), "."); i > 0 {
		name = name[:len(name)-len(filepath.Base(name))+i]
	}
	return name
}

// Run processes all jobs using a worker pool. Jobs not started before ctx is cancelled are
// reported as failed with the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	cfg = withDefaults(cfg)
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f meshes/sec\n", p, total, rate)
				}
			}
		}
	}()

	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := cfg.NewRenderer()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Name: jobs[idx].Name, Model: jobs[idx].Path, Error: err.Error()}
				} else {
					results[idx] = processJob(cfg, r, jobs[idx])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func withDefaults(cfg Config) Config {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.RenderSize < 1 {
		cfg.RenderSize = 400
	}
	if cfg.Supersample < 1 {
		cfg.Supersample = 1
	}
	if cfg.Format == "" {
		cfg.Format = FormatWebP
	}
	return cfg
}

func processJob(cfg Config, r scene.Renderer, job Job) Result {
	res := Result{Name: job.Name, Model: job.Path}

	model, err := mesh.Load(job.Path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	b := &scene.Builder{
		Renderer:   r,
		Textures:   texture.NewCache(texture.BuildIndex(filepath.Dir(job.Path))),
		Camera:     cfg.Camera,
		Frame:      cfg.Frame,
		Lights:     cfg.Lights,
		Background: cfg.Background,
	}
	view, err := b.Build(model)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Framed = view.Framed()
	res.Sphere = view.Sphere
	res.Placement = view.Placement

	img, err := renderFrame(cfg, view)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Coverage = postprocess.Measure(img)

	res.Image = job.Name + "." + cfg.Format
	if err := writeImage(filepath.Join(cfg.OutputDir, filepath.FromSlash(res.Image)), img, cfg.Format); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Frames > 1 {
		for i := 0; i < cfg.Frames; i++ {
			if i > 0 {
				view.Spin(cfg.Spin, cfg.Spin)
			}
			frame, err := renderFrame(cfg, view)
			if err != nil {
				res.Error = fmt.Sprintf("frame %d: %v", i, err)
				return res
			}
			name := fmt.Sprintf("%s/%d.%s", job.Name, i, cfg.Format)
			if err := writeImage(filepath.Join(cfg.OutputDir, filepath.FromSlash(name)), frame, cfg.Format); err != nil {
				res.Error = err.Error()
				return res
			}
			res.Frames = append(res.Frames, name)
		}
	}

	res.Success = true
	return res
}

func renderFrame(cfg Config, view *scene.View) (*image.NRGBA, error) {
	ss := cfg.Supersample
	img, err := view.Render(cfg.RenderSize*ss, cfg.RenderSize*ss)
	if err != nil {
		return nil, err
	}
	if ss > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize, cfg.RenderSize)
	}
	return img, nil
}

func writeImage(path string, img image.Image, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
		return nil
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("PNG encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("batch: unknown format %q", format)
	}
}
