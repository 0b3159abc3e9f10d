package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Info describes one installed extension for listings.
type Info struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Manifest *Manifest `json:"manifest,omitempty"`
}

// ListDirs returns the directory leaves under the extensions root, sorted.
// Plain files in the root are not extensions and are skipped.
func ListDirs(extensionsRoot string) ([]string, error) {
	entries, err := os.ReadDir(extensionsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read extensions root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// List returns every installed extension with its manifest when one can be
// read. A directory without a readable manifest is still listed; scaffolding
// is not the only way extensions end up on disk.
func List(extensionsRoot string) ([]Info, error) {
	names, err := ListDirs(extensionsRoot)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		path := filepath.Join(extensionsRoot, name)

		manifest, err := LoadManifest(path)
		if err != nil {
			zap.L().Debug("Extension has no readable manifest",
				zap.String("extension", name),
				zap.Error(err))
			manifest = nil
		}

		infos = append(infos, Info{Name: name, Path: path, Manifest: manifest})
	}

	return infos, nil
}
