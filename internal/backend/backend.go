// Package backend selects a scene.Renderer by name.
package backend

import (
	"fmt"

	"jsonmesh-renderer/internal/config"
	"jsonmesh-renderer/internal/fauxglrender"
	"jsonmesh-renderer/internal/raster"
	"jsonmesh-renderer/internal/scene"
)

// New returns a fresh renderer for the named backend.
func New(name string) (scene.Renderer, error) {
	switch name {
	case config.BackendRaster, "":
		return raster.New(), nil
	case config.BackendFauxGL:
		return fauxglrender.New(), nil
	default:
		return nil, fmt.Errorf("backend: unknown backend %q", name)
	}
}

// Factory returns a constructor for the named backend, for callers that need one
// renderer per goroutine.
func Factory(name string) (func() scene.Renderer, error) {
	if _, err := New(name); err != nil {
		return nil, err
	}
	return func() scene.Renderer {
		r, _ := New(name)
		return r
	}, nil
}
