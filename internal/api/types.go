package api

import (
	"github.com/fenilsonani/dupliremover/internal/cleaner"
)

// ScanRequest is the body of POST /api/scan
type ScanRequest struct {
	Directory string `json:"directory"`
}

// ScanStartedResponse is returned once a scan has been registered
type ScanStartedResponse struct {
	ScanID string `json:"scanId"`
	Status string `json:"status"`
}

// DeleteRequest is the body of DELETE /api/duplicates/{scanId}
type DeleteRequest struct {
	FilePaths []string `json:"filePaths"`
}

// DeleteFailure describes one path that was not deleted
type DeleteFailure struct {
	FilePath string `json:"filePath"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
}

// DeleteResponse reports the outcome of a deletion request
type DeleteResponse struct {
	DeletedCount   int             `json:"deletedCount"`
	Deleted        []string        `json:"deleted"`
	AlreadyDeleted []string        `json:"alreadyDeleted"`
	Failures       []DeleteFailure `json:"failures"`
	FreedBytes     int64           `json:"freedBytes"`
	DryRun         bool            `json:"dryRun"`
}

// ValidateRequest is the body of POST /api/validate-directory
type ValidateRequest struct {
	Directory string `json:"directory"`
}

// ValidateResponse reports whether a directory can be scanned
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// RecentResponse lists recently scanned directories
type RecentResponse struct {
	Directories []string `json:"directories"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func newDeleteResponse(r *cleaner.Result) DeleteResponse {
	resp := DeleteResponse{
		DeletedCount:   r.DeletedCount(),
		Deleted:        nonNil(r.Deleted),
		AlreadyDeleted: nonNil(r.AlreadyDeleted),
		Failures:       make([]DeleteFailure, 0, len(r.Failures)),
		FreedBytes:     r.DeletedSize,
		DryRun:         r.DryRun,
	}
	for _, f := range r.Failures {
		msg := f.Reason.String()
		if f.Original != nil {
			msg = f.Original.Error()
		}
		resp.Failures = append(resp.Failures, DeleteFailure{
			FilePath: f.Path,
			Reason:   f.Reason.Code(),
			Message:  msg,
		})
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
