package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines document access to one directory tree
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator for the given document directory. The directory does
// not have to exist yet.
func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("document directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute document directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns a user supplied path into an absolute path inside the document directory.
// Relative paths are taken relative to the directory. Symlinks are followed before the
// containment check.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	abs = filepath.Clean(abs)

	if !v.contains(abs) {
		return "", fmt.Errorf("path is outside document directory: %s", path)
	}

	// the real location must be inside as well
	if real, err := filepath.EvalSymlinks(abs); err == nil && !v.contains(real) {
		return "", fmt.Errorf("path is outside document directory: %s", path)
	}

	return abs, nil
}

func (v *PathValidator) contains(path string) bool {
	roots := []string{v.root}
	if real, err := filepath.EvalSymlinks(v.root); err == nil && real != v.root {
		roots = append(roots, real)
	}

	for _, root := range roots {
		if path == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ValidateDirectory checks that the document directory exists and is a directory
func (v *PathValidator) ValidateDirectory() error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("cannot access document directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("document path is not a directory: %s", v.root)
	}
	return nil
}
