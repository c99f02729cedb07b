package security

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// systemRoots are refused on every platform. Platform-specific roots and
// user-configured ones are layered on top by the caller.
var systemRoots = []string{
	"/", "/bin", "/boot", "/dev", "/etc", "/lib", "/lib64", "/proc",
	"/root", "/sbin", "/sys", "/usr", "/var",
	"/System", "/Applications", "/Library/System",
}

// PathValidator decides whether a duplicate may be removed from disk
type PathValidator struct {
	roots []string
}

// NewPathValidator protects systemRoots plus extra.
func NewPathValidator(extra ...string) *PathValidator {
	pv := &PathValidator{roots: append([]string(nil), systemRoots...)}
	for _, p := range extra {
		pv.AddProtectedPath(p)
	}
	return pv
}

// AddProtectedPath protects path and its direct children.
func (pv *PathValidator) AddProtectedPath(path string) {
	if path != "" {
		pv.roots = append(pv.roots, filepath.Clean(path))
	}
}

// ValidatePathForDeletion refuses anything that is not a clean absolute
// path, and anything that resolves to a protected root or one of its
// direct children. Deeper descendants are allowed, so /home/me/a.jpg is
// deletable while /home/me is not.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains control characters: %q", path)
	}
	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	// A symlink inside the scan must not steer deletion at a system file.
	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case os.IsNotExist(err):
		resolved = path
	case err != nil:
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}
	resolved = filepath.Clean(resolved)

	// Exact roots first: /usr is itself protected, not merely a child of /
	if slices.Contains(pv.roots, resolved) {
		return fmt.Errorf("refusing to delete protected path: %s", resolved)
	}
	for _, root := range pv.roots {
		if pv.depthBelow(root, resolved) == 1 {
			return fmt.Errorf("refusing to delete critical system path: %s", resolved)
		}
	}
	return nil
}

// depthBelow returns how many path elements path sits under root, or -1
// when path is outside root.
func (pv *PathValidator) depthBelow(root, path string) int {
	if path == root {
		return 0
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return -1
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// ValidateGlobPattern rejects exclude patterns that are malformed or try to
// climb out of the scan root.
func ValidateGlobPattern(pattern string) error {
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}
	if _, err := filepath.Match(pattern, "x"); err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}
	return nil
}
