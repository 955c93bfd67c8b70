package batch

import (
	"encoding/json"
	"os"
)

// ManifestName is the file WriteManifest is conventionally given, and Discover skips.
const ManifestName = "manifest.json"

// ManifestEntry represents one mesh in the output manifest.
type ManifestEntry struct {
	Name     string     `json:"name"`
	Model    string     `json:"model"`
	Image    string     `json:"image,omitempty"`
	Frames   []string   `json:"frames,omitempty"`
	Framed   bool       `json:"framed"`
	Center   [3]float64 `json:"center"`
	Radius   float64    `json:"radius"`
	Camera   [3]float64 `json:"camera"`
	Distance float64    `json:"distance"`
	Coverage float64    `json:"coverage"`
	Clipped  bool       `json:"clipped"`
	Error    string     `json:"error,omitempty"`
}

// NewManifest converts run results into manifest entries.
func NewManifest(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:     r.Name,
			Model:    r.Model,
			Image:    r.Image,
			Frames:   r.Frames,
			Framed:   r.Framed,
			Center:   r.Sphere.Center,
			Radius:   r.Sphere.Radius,
			Camera:   r.Placement.Position,
			Distance: r.Placement.Distance,
			Coverage: r.Coverage.Fraction,
			Clipped:  r.Coverage.Clipped,
			Error:    r.Error,
		}
	}
	return entries
}

// WriteManifest writes the manifest of results as indented JSON.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
