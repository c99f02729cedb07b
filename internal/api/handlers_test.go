package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/dupliremover/internal/api/middleware"
	"github.com/fenilsonani/dupliremover/internal/cleaner"
	"github.com/fenilsonani/dupliremover/internal/config"
	"github.com/fenilsonani/dupliremover/internal/engine"
	"github.com/fenilsonani/dupliremover/internal/job"
	"github.com/fenilsonani/dupliremover/internal/logging"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/testutil"
)

type testServer struct {
	*httptest.Server
	engine *engine.Engine
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()

	cfg := config.GetDefault()
	cfg.Scan.ExcludePatterns = nil
	cfg.Deletion.ManifestPath = filepath.Join(t.TempDir(), "deletions.jsonl")

	e, err := engine.New(cfg, logging.Discard(), nil)
	require.NoError(t, err)

	router := NewRouter(RouterDeps{
		Service:        e,
		Logger:         logging.Discard(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ScanLimiter:    limiter,
	})
	srv := httptest.NewServer(router.Handler())

	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return &testServer{Server: srv, engine: e}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *testServer) startAndWait(t *testing.T, dir string) scanner.ScanResult {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/api/scan", ScanRequest{Directory: dir})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	started := decode[ScanStartedResponse](t, resp)
	assert.Equal(t, "STARTED", started.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.engine.Wait(ctx, started.ScanID)
	require.NoError(t, err)

	resp = s.do(t, http.MethodGet, "/api/scan/"+started.ScanID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[scanner.ScanResult](t, resp)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, "OK", buf.String())
}

func TestScanLifecycle(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateFile("a.txt", []byte("hello"))
	b := f.CreateFile("sub/b.txt", []byte("hello"))
	f.CreateFile("c.txt", []byte("world"))

	s := newTestServer(t, nil)
	result := s.startAndWait(t, f.RootDir)

	assert.Equal(t, scanner.StatusCompleted, result.Status)
	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, 1, result.DuplicateCount)

	// Canonical copy is refused, the duplicate is removed
	resp := s.do(t, http.MethodDelete, "/api/duplicates/"+result.ID, DeleteRequest{FilePaths: []string{a, b}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decode[DeleteResponse](t, resp)

	assert.Equal(t, 1, deleted.DeletedCount)
	assert.Equal(t, []string{b}, deleted.Deleted)
	require.Len(t, deleted.Failures, 1)
	assert.Equal(t, a, deleted.Failures[0].FilePath)
	assert.Equal(t, cleaner.ErrorNotDuplicate.Code(), deleted.Failures[0].Reason)
	f.AssertFileExists(a)
	f.AssertFileNotExists(b)

	resp = s.do(t, http.MethodGet, "/api/scans", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]scanner.ScanResult](t, resp)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].TotalFiles)

	resp = s.do(t, http.MethodGet, "/api/recent-directories", nil)
	recent := decode[RecentResponse](t, resp)
	assert.Equal(t, []string{f.RootDir}, recent.Directories)
}

func TestStartScanErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"missing directory", ScanRequest{Directory: filepath.Join(t.TempDir(), "gone")}, http.StatusBadRequest},
		{"empty directory", ScanRequest{}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/scan", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decode[ErrorResponse](t, resp).Error)
		})
	}
}

func TestUnknownScan(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/scan/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/duplicates/unknown", DeleteRequest{FilePaths: []string{"/tmp/x"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteRequiresPaths(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodDelete, "/api/duplicates/any", DeleteRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file paths provided", decode[ErrorResponse](t, resp).Error)
}

func TestValidateDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	file := f.CreateFile("file.txt", []byte("x"))
	s := newTestServer(t, nil)

	tests := []struct {
		name    string
		dir     string
		valid   bool
		message string
	}{
		{"valid", f.RootDir, true, "Directory is valid and accessible"},
		{"missing", f.Path("missing"), false, "Directory does not exist"},
		{"file", file, false, "Path is not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/validate-directory", ValidateRequest{Directory: tt.dir})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			got := decode[ValidateResponse](t, resp)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.message, got.Message)
		})
	}

	resp := s.do(t, http.MethodPost, "/api/validate-directory", ValidateRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestServer(t, middleware.NewRateLimiter(ctx, 1, 1))
	dir := t.TempDir()

	resp := s.do(t, http.MethodPost, "/api/scan", ScanRequest{Directory: dir})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/scan", ScanRequest{Directory: dir})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Other endpoints are not limited
	resp = s.do(t, http.MethodGet, "/api/scans", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type failingService struct {
	Service
	err error
}

func (f failingService) StartScan(ctx context.Context, dir string) (string, error) {
	return "", f.err
}

func (f failingService) GetScanResult(id string) (scanner.ScanResult, error) {
	return scanner.ScanResult{}, f.err
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"in progress", job.ErrScanInProgress, http.StatusConflict},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterDeps{Service: failingService{err: tt.err}, Logger: logging.Discard()})

			body, _ := json.Marshal(ScanRequest{Directory: "/data"})
			req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewReader(body))
			w := httptest.NewRecorder()
			router.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}

	router := NewRouter(RouterDeps{Service: failingService{err: errors.New("boom")}, Logger: logging.Discard()})
	w := httptest.NewRecorder()
	router.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scan/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
