// Package api serves the scan engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fenilsonani/dupliremover/internal/api/middleware"
	"github.com/fenilsonani/dupliremover/internal/cleaner"
	"github.com/fenilsonani/dupliremover/internal/scanner"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// Service is the engine surface the HTTP API needs
type Service interface {
	StartScan(ctx context.Context, dir string) (string, error)
	GetScanResult(id string) (scanner.ScanResult, error)
	ListScanResults() []scanner.ScanResult
	DeleteDuplicates(ctx context.Context, id string, paths []string) (*cleaner.Result, error)
	ValidateDirectory(dir string) error
	RecentDirectories() []string
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Service        Service
	Logger         *slog.Logger
	AllowedOrigins []string
	// ScanLimiter throttles POST /api/scan; nil disables the limit
	ScanLimiter *middleware.RateLimiter
}

// Router sets up all HTTP routes for the application.
type Router struct {
	service        Service
	logger         *slog.Logger
	allowedOrigins []string
	scanLimiter    *middleware.RateLimiter
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		service:        deps.Service,
		logger:         logger,
		allowedOrigins: deps.AllowedOrigins,
		scanLimiter:    deps.ScanLimiter,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	var startScan http.Handler = http.HandlerFunc(r.handleStartScan)
	if r.scanLimiter != nil {
		startScan = r.scanLimiter.Middleware(startScan)
	}

	mux.HandleFunc("GET /api/health", r.handleHealth)
	mux.Handle("POST /api/scan", startScan)
	mux.HandleFunc("GET /api/scan/{scanId}", r.handleGetScan)
	mux.HandleFunc("GET /api/scans", r.handleListScans)
	mux.HandleFunc("DELETE /api/duplicates/{scanId}", r.handleDeleteDuplicates)
	mux.HandleFunc("POST /api/validate-directory", r.handleValidateDirectory)
	mux.HandleFunc("GET /api/recent-directories", r.handleRecentDirectories)

	return middleware.Logging(r.logger)(middleware.CORS(r.allowedOrigins)(mux))
}
