package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extRank orders image formats for the same stem; higher wins. Formats that can carry
// alpha beat the ones that cannot.
var extRank = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".bmp":  2,
	".gif":  3,
	".tga":  4,
	".webp": 5,
	".png":  6,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // lower(stem) → full path
}

// BuildIndex scans dir and its texture/, textures/ and maps/ subdirectories (any case)
// for image files a material may reference.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}

	searchDirs := []string{dir}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		switch strings.ToLower(e.Name()) {
		case "texture", "textures", "maps":
			searchDirs = append(searchDirs, filepath.Join(dir, e.Name()))
		}
	}

	for i, d := range searchDirs {
		// The mesh directory itself is not walked recursively.
		shallow := i == 0
		filepath.WalkDir(d, func(path string, de os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if de.IsDir() {
				if shallow && path != d {
					return filepath.SkipDir
				}
				return nil
			}
			idx.add(path)
			return nil
		})
	}

	return idx
}

func (idx *Index) add(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	rank, ok := extRank[ext]
	if !ok {
		return
	}
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	existing, exists := idx.entries[stem]
	if !exists || rank > extRank[strings.ToLower(filepath.Ext(existing))] {
		idx.entries[stem] = path
	}
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Directory prefixes and the extension of the name are ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
