package scanner

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fenilsonani/dupliremover/internal/security"
)

// Entry is one item produced by the walker. Exactly one of Info and Err is set.
type Entry struct {
	Seq  int64
	Path string
	Info fs.FileInfo
	Err  error
}

// Walker enumerates regular files below a root directory
type Walker struct {
	excludePatterns []string
}

// NewWalker creates a Walker that skips entries whose base name matches any
// of the glob patterns
func NewWalker(excludePatterns []string) *Walker {
	return &Walker{excludePatterns: excludePatterns}
}

// Walk validates root and returns a sequence over every regular file reachable
// from it. Symlinks are never followed. Entries that cannot be read are yielded
// with Err set and the walk continues. The walk stops after yielding an
// ErrStorageUnavailable error, or an *security.InputError for the root
// itself; IsFatalWalkError reports both. Each call to the returned sequence
// performs a fresh traversal with Seq numbering starting at 1.
func (w *Walker) Walk(ctx context.Context, root string) (iter.Seq[Entry], error) {
	// Validate before Abs, which turns "" into the working directory
	if err := security.ValidateDirectory(root); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, &security.InputError{Path: root, Reason: security.ErrNotReadable, Err: err}
	}

	// WalkDir does not descend into a root that is itself a symlink
	if info, err := os.Lstat(root); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			root = resolved
		}
	}

	return func(yield func(Entry) bool) {
		var seq int64
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if err != nil {
				switch {
				case IsStorageFailure(err):
					yield(Entry{Path: path, Err: storageError(path, err)})
					return filepath.SkipAll
				case path == root:
					// lost access between validation and the walk
					yield(Entry{Path: path, Err: &security.InputError{Path: path, Reason: security.ErrNotReadable, Err: err}})
					return filepath.SkipAll
				}
				if !yield(Entry{Path: path, Err: err}) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && w.excluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || w.excluded(d.Name()) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				// Removed between listing and stat
				if !yield(Entry{Path: path, Err: err}) {
					return filepath.SkipAll
				}
				return nil
			}

			seq++
			if !yield(Entry{Seq: seq, Path: path, Info: info}) {
				return filepath.SkipAll
			}
			return nil
		})
	}, nil
}

func (w *Walker) excluded(name string) bool {
	for _, pattern := range w.excludePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
