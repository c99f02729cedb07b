package cleaner

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// specialFileKind names the kind of non-regular file mode describes, or
// returns "" for regular files and directories.
func specialFileKind(mode os.FileMode) string {
	switch {
	case mode&os.ModeCharDevice != 0:
		return "character device"
	case mode&os.ModeDevice != 0:
		return "device file"
	case mode&os.ModeSocket != 0:
		return "socket"
	case mode&os.ModeNamedPipe != 0:
		return "named pipe"
	}
	return ""
}

// IsSafeToDelete re-checks a duplicate right before removal: it must still
// be a regular file, and symlinks are not followed. A path that vanished
// since the scan returns the raw Lstat error so os.IsNotExist holds.
func IsSafeToDelete(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		return info, &DeletionError{Path: path, Reason: ErrorIsDirectory, Original: syscall.EISDIR}
	case mode&os.ModeSymlink != 0:
		// swapped for a link since the scan; the target could be anywhere
		return info, &DeletionError{Path: path, Reason: ErrorInvalidPath, Original: errors.New("path is a symlink")}
	}
	if kind := specialFileKind(mode); kind != "" {
		return info, &DeletionError{
			Path:     path,
			Reason:   ErrorInvalidPath,
			Original: fmt.Errorf("refusing to delete %s", kind),
		}
	}
	return info, nil
}
