// Package config loads render settings from a JSON file and merges CLI overrides.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
)

// Backends and output formats accepted by Validate.
const (
	BackendRaster = "raster"
	BackendFauxGL = "fauxgl"

	FormatWebP = "webp"
	FormatPNG  = "png"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir"`
	Input     string `json:"input"`
	OutputDir string `json:"output_dir"`
	Mesh      string `json:"mesh"`

	// Render settings
	RenderSize  int     `json:"render_size"`
	Supersample int     `json:"supersample"`
	Workers     int     `json:"workers"`
	Format      string  `json:"format"`
	Backend     string  `json:"backend"`
	Frames      int     `json:"frames"`
	Spin        float64 `json:"spin"`
	Background  string  `json:"background"` // "#rrggbb" or "#rrggbbaa"; empty is transparent

	Camera    Camera        `json:"camera"`
	Trackball Trackball     `json:"trackball"`
	Lights    []LightConfig `json:"lights"`
}

// Camera holds the perspective camera and framing settings.
type Camera struct {
	FOV       float64    `json:"fov"`
	Near      float64    `json:"near"`
	Far       float64    `json:"far"`
	Margin    float64    `json:"margin"`
	Direction [3]float64 `json:"direction"`
}

// Trackball holds the interactive control tunables. Zero speeds mean defaults.
type Trackball struct {
	RotateSpeed   float64 `json:"rotate_speed"`
	ZoomSpeed     float64 `json:"zoom_speed"`
	PanSpeed      float64 `json:"pan_speed"`
	StaticMoving  bool    `json:"static_moving"`
	DampingFactor float64 `json:"damping_factor"`
	MinDistance   float64 `json:"min_distance"`
	MaxDistance   float64 `json:"max_distance"`
}

// LightConfig is one light. Type is "ambient" or "point"; Color is hex ("#707070" or
// "0x707070").
type LightConfig struct {
	Type      string     `json:"type"`
	Color     string     `json:"color"`
	Intensity float64    `json:"intensity"`
	Distance  float64    `json:"distance"`
	Position  [3]float64 `json:"position"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Input      string
	OutputDir  string
	Mesh       string
	Size       int
	Workers    int
	Format     string
	Backend    string
	Frames     int
	FOV        float64
	Margin     float64
	Spin       float64
	Background string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Mesh != "" {
		c.Mesh = flags.Mesh
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Backend != "" {
		c.Backend = flags.Backend
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.FOV != 0 {
		c.Camera.FOV = flags.FOV
	}
	if flags.Margin != 0 {
		c.Camera.Margin = flags.Margin
	}
	if flags.Spin != 0 {
		c.Spin = flags.Spin
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.Input = resolvePath(c.BaseDir, c.Input)
		c.OutputDir = resolvePath(c.BaseDir, c.OutputDir)
		c.Mesh = resolvePath(c.BaseDir, c.Mesh)
	}
	if c.OutputDir == "" && c.Input != "" {
		c.OutputDir = filepath.Join(inputDir(c.Input), "renders")
	}

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 400
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Format == "" {
		c.Format = FormatWebP
	}
	if c.Backend == "" {
		c.Backend = BackendRaster
	}
	if c.Spin == 0 {
		c.Spin = 0.01
	}
	c.Camera.resolve()
}

func (c *Camera) resolve() {
	// The framing needs a field of view strictly inside (0, 180).
	switch {
	case c.FOV == 0 || math.IsNaN(c.FOV):
		c.FOV = 75
	case c.FOV < 1:
		c.FOV = 1
	case c.FOV > 179:
		c.FOV = 179
	}
	if c.Near <= 0 {
		c.Near = 0.1
	}
	if c.Far <= c.Near {
		c.Far = 1000
		if c.Far <= c.Near {
			c.Far = c.Near * 10000
		}
	}
	if c.Margin == 0 || math.IsNaN(c.Margin) || math.IsInf(c.Margin, 0) {
		c.Margin = 1.05
	} else if c.Margin < 1 {
		c.Margin = 1
	}
	if c.Direction == ([3]float64{}) {
		c.Direction = [3]float64{1, 1, 1}
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatWebP, FormatPNG:
	default:
		return fmt.Errorf("config: unknown format %q (want %s or %s)", c.Format, FormatWebP, FormatPNG)
	}
	switch c.Backend {
	case BackendRaster, BackendFauxGL:
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendRaster, BackendFauxGL)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if _, err := c.SceneLights(); err != nil {
		return err
	}
	return nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func inputDir(input string) string {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return input
	}
	return filepath.Dir(input)
}
