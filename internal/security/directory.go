package security

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reasons a directory is rejected as a scan root
var (
	ErrEmptyPath    = errors.New("directory path is required")
	ErrNotExist     = errors.New("directory does not exist")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNotReadable  = errors.New("directory is not readable")
)

// InputError reports a scan root that cannot be scanned
type InputError struct {
	Path   string
	Reason error
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *InputError) Unwrap() error {
	return e.Reason
}

// ValidateDirectory checks that path exists, is a directory and can be listed.
// Symlinks to directories are accepted.
func ValidateDirectory(path string) error {
	if strings.TrimSpace(path) == "" {
		return &InputError{Path: path, Reason: ErrEmptyPath}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &InputError{Path: path, Reason: ErrNotExist}
		}
		return &InputError{Path: path, Reason: ErrNotReadable, Err: err}
	}

	if !info.IsDir() {
		return &InputError{Path: path, Reason: ErrNotDirectory}
	}

	dir, err := os.Open(path)
	if err != nil {
		return &InputError{Path: path, Reason: ErrNotReadable, Err: err}
	}
	defer dir.Close()

	if _, err := dir.Readdirnames(1); err != nil && err != io.EOF {
		return &InputError{Path: path, Reason: ErrNotReadable, Err: err}
	}

	return nil
}
