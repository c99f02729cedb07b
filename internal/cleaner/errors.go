package cleaner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// ErrorReason categorizes why a path was not deleted
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorIsDirectory
	ErrorInvalidPath
	ErrorNotInScan
	ErrorNotDuplicate
	ErrorCanonicalMissing
	ErrorContentChanged
	ErrorUnknown
)

type reasonInfo struct {
	label string
	code  string
	// format for UserMessage; receives the path
	message    string
	validation bool
}

var reasons = map[ErrorReason]reasonInfo{
	ErrorPermissionDenied: {"Permission denied", "PERMISSION_DENIED", "⚠️  Permission denied: %s", false},
	ErrorFileInUse:        {"File is in use", "FILE_IN_USE", "⚠️  File is being used: %s (close the application and try again)", false},
	ErrorFileNotFound:     {"File not found", "FILE_NOT_FOUND", "ℹ️  Already deleted: %s", false},
	ErrorIsDirectory:      {"Is a directory", "IS_DIRECTORY", "⚠️  Cannot delete directory: %s", false},
	ErrorInvalidPath:      {"Invalid path", "INVALID_PATH", "❌ Invalid or unsafe path: %s", true},
	ErrorNotInScan:        {"Not part of scan", "NOT_IN_SCAN", "❌ Not found in this scan: %s", true},
	ErrorNotDuplicate:     {"Not a duplicate", "NOT_DUPLICATE", "❌ Refusing to delete the kept copy: %s", true},
	ErrorCanonicalMissing: {"Kept copy missing", "CANONICAL_MISSING", "⚠️  Kept copy no longer exists, refusing to delete: %s", true},
	ErrorContentChanged:   {"Content changed", "CONTENT_CHANGED", "⚠️  File changed since the scan: %s (rescan and try again)", true},
	ErrorUnknown:          {"Unknown error", "UNKNOWN", "", false},
}

func (e ErrorReason) String() string {
	if info, ok := reasons[e]; ok {
		return info.label
	}
	return "Unspecified error"
}

// Code is the stable identifier surfaced by the API and machine reports.
func (e ErrorReason) Code() string {
	if info, ok := reasons[e]; ok {
		return info.code
	}
	return "UNKNOWN"
}

// IsValidation reports whether the path was refused before touching the filesystem
func (e ErrorReason) IsValidation() bool {
	return reasons[e].validation
}

// DeletionError is the per-path failure recorded in a Result
type DeletionError struct {
	Path      string
	Reason    ErrorReason
	Original  error
	Retryable bool
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage renders the failure for a terminal
func (e *DeletionError) UserMessage() string {
	if format := reasons[e.Reason].message; format != "" {
		return fmt.Sprintf(format, e.Path)
	}
	return fmt.Sprintf("❌ Error deleting %s: %v", e.Path, e.Original)
}

func newValidationError(path string, reason ErrorReason, format string, args ...any) *DeletionError {
	return &DeletionError{Path: path, Reason: reason, Original: fmt.Errorf(format, args...)}
}

// CategorizeError maps a filesystem error onto a DeletionError. Errors that
// already are DeletionErrors pass through unchanged.
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	var existing *DeletionError
	if errors.As(err, &existing) {
		return existing
	}

	delErr := &DeletionError{Path: path, Original: err, Reason: ErrorUnknown}

	var errno syscall.Errno
	switch {
	case os.IsNotExist(err):
		delErr.Reason = ErrorFileNotFound
	case os.IsPermission(err):
		delErr.Reason = ErrorPermissionDenied
	case errors.As(err, &errno):
		switch errno {
		case syscall.EACCES, syscall.EPERM, syscall.EROFS:
			delErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ErrorFileInUse
			delErr.Retryable = true
		case syscall.EISDIR:
			delErr.Reason = ErrorIsDirectory
		}
	}
	return delErr
}

// GroupErrors buckets failures by reason
func GroupErrors(failures []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, f := range failures {
		grouped[f.Reason] = append(grouped[f.Reason], f)
	}
	return grouped
}

// summaryOrder is the order reasons appear in FormatErrorSummary, with an
// optional hint line.
var summaryOrder = []struct {
	reason ErrorReason
	hint   string
}{
	{ErrorNotInScan, ""},
	{ErrorNotDuplicate, ""},
	{ErrorCanonicalMissing, ""},
	{ErrorContentChanged, "Rescan the directory before deleting"},
	{ErrorInvalidPath, ""},
	{ErrorPermissionDenied, "Check ownership of the containing directory"},
	{ErrorFileInUse, "Close applications and retry"},
	{ErrorIsDirectory, ""},
	{ErrorUnknown, ""},
}

// FormatErrorSummary counts failures per reason for the text report
func FormatErrorSummary(failures []*DeletionError) string {
	if len(failures) == 0 {
		return ""
	}

	grouped := GroupErrors(failures)
	var sb strings.Builder
	sb.WriteString("\n⚠️  Issues encountered:\n")
	for _, entry := range summaryOrder {
		n := len(grouped[entry.reason])
		if n == 0 {
			continue
		}
		fmt.Fprintf(&sb, "   ├─ %s: %d files\n", entry.reason, n)
		if entry.hint != "" {
			fmt.Fprintf(&sb, "   │  └─ Tip: %s\n", entry.hint)
		}
	}
	return sb.String()
}
