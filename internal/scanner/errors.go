package scanner

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/fenilsonani/dupliremover/internal/security"
)

// ErrStorageUnavailable marks a failure of the filesystem itself rather than
// of a single entry. A scan that hits it fails and keeps its partial result.
var ErrStorageUnavailable = errors.New("storage unavailable")

// IsStorageFailure reports whether err signals that the underlying device is gone
func IsStorageFailure(err error) bool {
	if errors.Is(err, ErrStorageUnavailable) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EIO, syscall.ENXIO, syscall.ENODEV, syscall.ESTALE:
			return true
		}
	}
	return false
}

func storageError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, path, err)
}

// IsFatalWalkError reports whether a walker entry error ends the scan rather
// than becoming a warning
func IsFatalWalkError(err error) bool {
	var inputErr *security.InputError
	return errors.Is(err, ErrStorageUnavailable) || errors.As(err, &inputErr)
}
