package imageio

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// imageExtensions are the photo formats picked up when scanning an image folder.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImage reports whether path has a supported photo extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListTemplates returns every non-directory entry directly inside dir, sorted by name.
func ListTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template folder: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// ListImages walks root recursively and returns all photos in lexical order.
// onFound is called for every photo as it is discovered and may be nil.
func ListImages(root string, onFound func(path string)) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImage(path) {
			return nil
		}
		if onFound != nil {
			onFound(path)
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading image folder: %w", err)
	}
	return out, nil
}
