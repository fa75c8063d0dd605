// Package security confines file access requested by MCP clients to the
// configured directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdferrors "github.com/a3tai/mcp-pdf-counter/internal/pdf/errors"
)

// PathValidator checks that requested paths stay inside one directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does
// not have to exist yet; until it does, every path is accepted.
func NewPathValidator(dir string) (*PathValidator, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{root: dir}, nil
}

// Root returns the configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns a client path into an absolute path inside the configured
// directory. Relative paths are taken relative to that directory.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", restricted(path, "path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	within, err := v.Contains(abs)
	if err != nil {
		return "", err
	}
	if !within {
		return "", restricted(abs, "path is outside configured directory")
	}
	return abs, nil
}

// ResolveDirectory is Resolve for paths that must name a directory
func (v *PathValidator) ResolveDirectory(path string) (string, error) {
	abs, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

// Contains reports whether an absolute path lies inside the configured
// directory. Symlinks are followed on both sides so a link cannot escape.
func (v *PathValidator) Contains(abs string) (bool, error) {
	if _, err := os.Stat(v.root); os.IsNotExist(err) {
		return true, nil
	}

	rootAbs, err := filepath.Abs(v.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	roots := []string{filepath.Clean(rootAbs)}
	if real, err := filepath.EvalSymlinks(rootAbs); err == nil && real != roots[0] {
		roots = append(roots, real)
	}

	target := filepath.Clean(abs)
	real := target
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		real = resolved
	}

	return under(target, roots) && under(real, roots), nil
}

func under(path string, roots []string) bool {
	for _, root := range roots {
		if path == root {
			return true
		}
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func restricted(path, message string) error {
	return pdferrors.New(pdferrors.ErrorTypeSecurityRestriction, message).InFile(path)
}
