// Package texture finds, decodes and caches the image files referenced by model
// materials.
package texture

import (
	"image"
	"log"
	"sync"
)

// Cache is a concurrency-safe texture cache. It satisfies scene.TextureResolver.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA // path → image, nil when decoding failed
	index *Index
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found or undecodable;
// failures are cached too.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		log.Printf("[texture] %q not found", texName)
		return nil
	}

	c.mu.RLock()
	if img, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return img
	}
	c.mu.RUnlock()

	img, err := LoadTexture(path)
	if err != nil {
		log.Printf("[texture] %v", err)
	}

	// Double-check: another goroutine may have loaded it meanwhile.
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, exists := c.items[path]; exists {
		return cached
	}
	c.items[path] = img
	return img
}
