package core

import (
	"fmt"
	"io/fs"
	"os"
)

// ReadFileUnder reads a file addressed relative to dir using os.Root.
// os.Root rejects any path that escapes dir, which prevents path traversal.
func ReadFileUnder(dir, name string) ([]byte, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	defer LogDeferredError(root.Close)

	data, err := root.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// WriteFileUnder writes a file addressed relative to dir using os.Root,
// with the same traversal protection as ReadFileUnder.
func WriteFileUnder(dir, name string, data []byte, perm fs.FileMode) error {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	defer LogDeferredError(root.Close)

	if err := root.WriteFile(name, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// StatUnder stats a file addressed relative to dir using os.Root.
func StatUnder(dir, name string) (fs.FileInfo, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	defer LogDeferredError(root.Close)

	info, err := root.Stat(name)
	if err != nil {
		return nil, err
	}
	return info, nil
}
