package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/fenilsonani/dupliremover/internal/security"
)

func TestIsStorageFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"EIO", syscall.EIO, true},
		{"ENXIO", syscall.ENXIO, true},
		{"ENODEV", syscall.ENODEV, true},
		{"ESTALE", syscall.ESTALE, true},
		{"EACCES", syscall.EACCES, false},
		{"ENOENT", syscall.ENOENT, false},
		{"plain error", errors.New("short read"), false},
		{"nil", nil, false},
		{"already classified", storageError("/data", syscall.EIO), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStorageFailure(tt.err); got != tt.want {
				t.Errorf("IsStorageFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if tt.err == nil {
				return
			}

			// The walker and hasher see errno values inside *fs.PathError
			wrapped := fmt.Errorf("hash: %w", &fs.PathError{Op: "read", Path: "/data/a.jpg", Err: tt.err})
			if got := IsStorageFailure(wrapped); got != tt.want {
				t.Errorf("IsStorageFailure(path error %v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsFatalWalkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"storage", storageError("/data", syscall.EIO), true},
		{"root unreadable", &security.InputError{Path: "/data", Reason: security.ErrNotReadable}, true},
		{"entry permission", &fs.PathError{Op: "open", Path: "/data/x", Err: syscall.EACCES}, false},
	}
	for _, tt := range tests {
		if got := IsFatalWalkError(tt.err); got != tt.want {
			t.Errorf("%s: IsFatalWalkError = %v, want %v", tt.name, got, tt.want)
		}
	}
}
