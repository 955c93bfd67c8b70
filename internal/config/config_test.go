package config

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/controls"
	"jsonmesh-renderer/internal/scene"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"base_dir": "` + filepath.ToSlash(dir) + `",
		"input": "meshes",
		"render_size": 256,
		"format": "png",
		"camera": {"fov": 50, "margin": 1.2},
		"lights": [{"type": "ambient", "color": "#202020"}]
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Resolve(Flags{Size: 128, Backend: BackendFauxGL})

	if cfg.RenderSize != 128 {
		t.Errorf("RenderSize = %d, flag should win", cfg.RenderSize)
	}
	if cfg.Format != FormatPNG || cfg.Backend != BackendFauxGL {
		t.Errorf("format/backend = %s/%s", cfg.Format, cfg.Backend)
	}
	if want := filepath.Join(dir, "meshes"); cfg.Input != want {
		t.Errorf("Input = %s, want %s", cfg.Input, want)
	}
	if want := filepath.Join(dir, "renders"); cfg.OutputDir != want {
		t.Errorf("OutputDir = %s, want %s", cfg.OutputDir, want)
	}
	if cfg.Camera.FOV != 50 || cfg.Camera.Margin != 1.2 || cfg.Camera.Far != 1000 {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "absent.json")); err == nil {
		t.Fatal("missing file accepted")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("bad json accepted")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	if cfg.RenderSize != 400 || cfg.Supersample != 2 || cfg.Workers != runtime.NumCPU() {
		t.Errorf("render defaults = %d %d %d", cfg.RenderSize, cfg.Supersample, cfg.Workers)
	}
	if cfg.Format != FormatWebP || cfg.Backend != BackendRaster || cfg.Spin != 0.01 {
		t.Errorf("defaults = %s %s %v", cfg.Format, cfg.Backend, cfg.Spin)
	}
	want := Camera{FOV: camera.DefaultFOV, Near: camera.DefaultNear, Far: camera.DefaultFar, Margin: 1.05, Direction: [3]float64{1, 1, 1}}
	if cfg.Camera != want {
		t.Errorf("camera = %+v, want %+v", cfg.Camera, want)
	}
}

func TestResolveClampsFOV(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 75},
		{math.NaN(), 75},
		{-10, 1},
		{0.5, 1},
		{90, 90},
		{180, 179},
		{500, 179},
	}
	for _, tt := range tests {
		cfg := Config{Camera: Camera{FOV: tt.in}}
		cfg.Resolve(Flags{})
		if cfg.Camera.FOV != tt.want {
			t.Errorf("fov %v → %v, want %v", tt.in, cfg.Camera.FOV, tt.want)
		}
	}
}

func TestResolveClampsMargin(t *testing.T) {
	cfg := Config{Camera: Camera{Margin: 0.5}}
	cfg.Resolve(Flags{})
	if cfg.Camera.Margin != 1 {
		t.Fatalf("margin = %v, want 1", cfg.Camera.Margin)
	}
	if got := cfg.FrameConfig().MarginFactor; got != 1 {
		t.Fatalf("FrameConfig margin = %v", got)
	}
}

func TestResolveNonFiniteMargin(t *testing.T) {
	for _, m := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		var cfg Config
		cfg.Resolve(Flags{Margin: m})
		if cfg.Camera.Margin != 1.05 {
			t.Errorf("margin %v → %v, want 1.05", m, cfg.Camera.Margin)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "gif" }},
		{"backend", func(c *Config) { c.Backend = "webgl" }},
		{"background", func(c *Config) { c.Background = "#12" }},
		{"light type", func(c *Config) { c.Lights = []LightConfig{{Type: "spot", Color: "#ffffff"}} }},
		{"light color", func(c *Config) { c.Lights = []LightConfig{{Type: "point", Color: "red"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.Resolve(Flags{})
			tt.mod(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBackgroundColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"", color.NRGBA{}},
		{"#102030", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}},
		{"10203080", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
	}
	for _, tt := range tests {
		cfg := Config{Background: tt.in}
		got, err := cfg.BackgroundColor()
		if err != nil || got != tt.want {
			t.Errorf("BackgroundColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestSceneLights(t *testing.T) {
	var cfg Config
	lights, err := cfg.SceneLights()
	if err != nil || len(lights) != 2 {
		t.Fatalf("default lights = %v, %v", lights, err)
	}

	cfg.Lights = []LightConfig{{Type: "Point", Color: "0xff0000", Distance: 10, Position: [3]float64{1, 2, 3}}}
	lights, err = cfg.SceneLights()
	if err != nil {
		t.Fatal(err)
	}
	l := lights[0]
	if l.Kind != scene.Point || l.Color[0] != 1 || l.Color[1] != 0 || l.Intensity != 1 || l.Position[2] != 3 {
		t.Fatalf("light = %+v", l)
	}
}

func TestApplyTrackball(t *testing.T) {
	cfg := Config{Trackball: Trackball{RotateSpeed: 2, StaticMoving: true, MaxDistance: 50}}
	tb := controls.NewTrackball(camera.NewPerspective(75, 1, 0.1, 1000))
	cfg.ApplyTrackball(tb)
	if tb.RotateSpeed != 2 || tb.ZoomSpeed != 1.2 || !tb.StaticMoving || tb.MaxDistance != 50 {
		t.Fatalf("trackball = %+v", tb)
	}
}
