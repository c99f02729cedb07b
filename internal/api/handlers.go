package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fenilsonani/dupliremover/internal/job"
	"github.com/fenilsonani/dupliremover/internal/security"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (r *Router) handleStartScan(w http.ResponseWriter, req *http.Request) {
	var body ScanRequest
	if !decodeBody(w, req, &body) {
		return
	}
	if strings.TrimSpace(body.Directory) == "" {
		writeError(w, http.StatusBadRequest, "Directory path is required")
		return
	}

	id, err := r.service.StartScan(req.Context(), body.Directory)
	if err != nil {
		var inputErr *security.InputError
		switch {
		case errors.As(err, &inputErr):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, job.ErrScanInProgress):
			writeError(w, http.StatusConflict, err.Error())
		default:
			r.logger.Error("failed to start scan", "directory", body.Directory, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start scan")
		}
		return
	}

	writeJSON(w, http.StatusOK, ScanStartedResponse{ScanID: id, Status: "STARTED"})
}

func (r *Router) handleGetScan(w http.ResponseWriter, req *http.Request) {
	result, err := r.service.GetScanResult(req.PathValue("scanId"))
	if err != nil {
		r.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleListScans(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.service.ListScanResults())
}

func (r *Router) handleDeleteDuplicates(w http.ResponseWriter, req *http.Request) {
	var body DeleteRequest
	if !decodeBody(w, req, &body) {
		return
	}
	if len(body.FilePaths) == 0 {
		writeError(w, http.StatusBadRequest, "No file paths provided")
		return
	}

	result, err := r.service.DeleteDuplicates(req.Context(), req.PathValue("scanId"), body.FilePaths)
	if err != nil && result == nil {
		r.writeLookupError(w, err)
		return
	}
	if err != nil {
		r.logger.Warn("deletion interrupted", "scan_id", req.PathValue("scanId"), "error", err)
	}

	writeJSON(w, http.StatusOK, newDeleteResponse(result))
}

func (r *Router) handleValidateDirectory(w http.ResponseWriter, req *http.Request) {
	var body ValidateRequest
	if !decodeBody(w, req, &body) {
		return
	}
	if strings.TrimSpace(body.Directory) == "" {
		writeJSON(w, http.StatusBadRequest, ValidateResponse{Message: "Directory path is required"})
		return
	}

	err := r.service.ValidateDirectory(body.Directory)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Message: "Directory is valid and accessible"})
	case errors.Is(err, security.ErrNotExist):
		writeJSON(w, http.StatusOK, ValidateResponse{Message: "Directory does not exist"})
	case errors.Is(err, security.ErrNotDirectory):
		writeJSON(w, http.StatusOK, ValidateResponse{Message: "Path is not a directory"})
	case errors.Is(err, security.ErrNotReadable):
		writeJSON(w, http.StatusOK, ValidateResponse{Message: "Directory is not readable"})
	default:
		writeJSON(w, http.StatusOK, ValidateResponse{Message: "Error validating directory: " + err.Error()})
	}
}

func (r *Router) handleRecentDirectories(w http.ResponseWriter, req *http.Request) {
	dirs := r.service.RecentDirectories()
	if dirs == nil {
		dirs = []string{}
	}
	writeJSON(w, http.StatusOK, RecentResponse{Directories: dirs})
}

func (r *Router) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, job.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	r.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeBody reads a JSON body into v, writing a 400 and returning false
// when it is malformed
func decodeBody(w http.ResponseWriter, req *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
