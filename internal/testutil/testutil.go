// Package testutil builds throwaway directory trees for scanner, cleaner and
// engine tests. Everything lives under t.TempDir().
package testutil

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TestFixture is a scratch directory tree owned by one test.
type TestFixture struct {
	T       *testing.T
	RootDir string
}

// NewFixture returns a fixture rooted in a fresh temp directory.
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()
	return &TestFixture{T: t, RootDir: t.TempDir()}
}

// Path joins relPath onto the fixture root.
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// RelPath is the inverse of Path.
func (f *TestFixture) RelPath(fullPath string) string {
	rel, _ := filepath.Rel(f.RootDir, fullPath)
	return rel
}

func (f *TestFixture) mkdirFor(fullPath string) {
	f.T.Helper()
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		f.T.Fatalf("mkdir for %s: %v", fullPath, err)
	}
}

// CreateFile writes content at relPath, creating parents, and returns the
// absolute path.
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()
	full := f.Path(relPath)
	f.mkdirFor(full)
	if err := os.WriteFile(full, content, 0644); err != nil {
		f.T.Fatalf("write %s: %v", full, err)
	}
	return full
}

// CreateRandomFile writes size random bytes, which will not collide with
// any other file in the fixture.
func (f *TestFixture) CreateRandomFile(relPath string, size int) string {
	f.T.Helper()
	content := make([]byte, size)
	rand.Read(content)
	return f.CreateFile(relPath, content)
}

// CreateDuplicates writes the same content to every relative path. Paths
// come back in argument order.
func (f *TestFixture) CreateDuplicates(content []byte, relPaths ...string) []string {
	f.T.Helper()
	paths := make([]string, len(relPaths))
	for i, rel := range relPaths {
		paths[i] = f.CreateFile(rel, content)
	}
	return paths
}

// CreateDir makes an empty directory.
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()
	full := f.Path(relPath)
	if err := os.MkdirAll(full, 0755); err != nil {
		f.T.Fatalf("mkdir %s: %v", full, err)
	}
	return full
}

// CreateUnreadableDir makes a directory holding one file and strips every
// permission bit from it. Permissions come back at cleanup so TempDir can
// remove it.
func (f *TestFixture) CreateUnreadableDir(relPath string) string {
	f.T.Helper()
	dir := f.CreateDir(relPath)
	f.CreateFile(filepath.Join(relPath, "hidden.txt"), []byte("hidden"))
	if err := os.Chmod(dir, 0000); err != nil {
		f.T.Fatalf("chmod %s: %v", dir, err)
	}
	f.T.Cleanup(func() { os.Chmod(dir, 0755) })
	return dir
}

// CreateNoPermissionFile writes a file with mode 000.
func (f *TestFixture) CreateNoPermissionFile(relPath string, content []byte) string {
	f.T.Helper()
	full := f.CreateFile(relPath, content)
	if err := os.Chmod(full, 0000); err != nil {
		f.T.Fatalf("chmod %s: %v", full, err)
	}
	return full
}

// CreateSymlink links linkPath (relative to the root) to target.
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()
	full := f.Path(linkPath)
	f.mkdirFor(full)
	if err := os.Symlink(target, full); err != nil {
		f.T.Fatalf("symlink %s -> %s: %v", full, target, err)
	}
	return full
}

// CreateBrokenSymlink links linkPath to a target that does not exist.
func (f *TestFixture) CreateBrokenSymlink(linkPath string) string {
	f.T.Helper()
	return f.CreateSymlink(f.Path("nonexistent/target"), linkPath)
}

// AssertFileExists reports an error unless path is present. Symlinks are
// not followed.
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if _, err := os.Lstat(path); err != nil {
		f.T.Errorf("expected %s to exist: %v", path, err)
	}
}

// AssertFileNotExists reports an error if path is present.
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if _, err := os.Lstat(path); err == nil {
		f.T.Errorf("expected %s to be gone", path)
	}
}

// SkipIfRoot skips permission tests, which root bypasses.
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("skipping test when running as root")
	}
}

// SkipOnWindows skips tests that rely on POSIX permissions or symlinks.
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on windows")
	}
}
