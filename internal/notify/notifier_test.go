package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/dupliremover/internal/config"
	"github.com/fenilsonani/dupliremover/internal/event"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enabledConfig(url string) config.NotificationConfig {
	cfg := config.GetDefault().Notifications
	cfg.Enabled = true
	cfg.Webhook.URL = url
	cfg.Webhook.Timeout = 2 * time.Second
	return cfg
}

type recorder struct {
	mu       sync.Mutex
	messages []Message
	headers  []http.Header
	status   int
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var msg Message
	_ = json.NewDecoder(req.Body).Decode(&msg)

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.headers = append(r.headers, req.Header.Clone())
	status := r.status
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func TestBuildScanCompleted(t *testing.T) {
	n := New(enabledConfig("http://example.invalid"), discardLogger())

	msg := n.Build(event.Event{
		Type:   event.ScanCompleted,
		ScanID: "scan-1",
		Data: map[string]any{
			"directory":   "/data",
			"files":       3,
			"duplicates":  1,
			"reclaimable": int64(2048),
		},
	})

	require.NotNil(t, msg)
	assert.Equal(t, TypeScanSuccess, msg.Type)
	assert.Equal(t, "scan-1", msg.ScanID)
	assert.Contains(t, msg.Title, "/data")
	assert.Contains(t, msg.Message, "1 duplicate files in 3 files")
	assert.False(t, msg.Timestamp.IsZero())
}

func TestBuildRespectsFilters(t *testing.T) {
	cfg := enabledConfig("http://example.invalid")
	cfg.OnSuccess = false
	n := New(cfg, discardLogger())

	assert.Nil(t, n.Build(event.Event{Type: event.ScanCompleted}))
	assert.Nil(t, n.Build(event.Event{Type: event.DuplicatesDeleted, Data: map[string]any{"deleted": 2}}))

	failure := n.Build(event.Event{Type: event.DuplicatesDeleted, Data: map[string]any{"deleted": 1, "failed": 1}})
	require.NotNil(t, failure)
	assert.Equal(t, TypeDeleteFailure, failure.Type)

	cfg.OnSuccess = true
	cfg.OnFailure = false
	n = New(cfg, discardLogger())
	assert.Nil(t, n.Build(event.Event{Type: event.ScanFailed, Data: map[string]any{"error": "boom"}}))
}

func TestBuildIgnoresUnreportedEvents(t *testing.T) {
	n := New(enabledConfig("http://example.invalid"), discardLogger())
	assert.Nil(t, n.Build(event.Event{Type: event.ScanStarted}))

	disabled := New(config.GetDefault().Notifications, discardLogger())
	assert.Nil(t, disabled.Build(event.Event{Type: event.ScanCompleted}))
}

func TestBuildDryRunTitle(t *testing.T) {
	n := New(enabledConfig("http://example.invalid"), discardLogger())

	msg := n.Build(event.Event{
		Type: event.DuplicatesDeleted,
		Data: map[string]any{"deleted": 2, "freed": int64(10), "dry_run": true},
	})

	require.NotNil(t, msg)
	assert.Equal(t, TypeDeleteSuccess, msg.Type)
	assert.Contains(t, msg.Title, "(dry run)")
}

func TestSendWebhook(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	cfg := enabledConfig(srv.URL)
	cfg.Webhook.Headers = map[string]string{"X-Token": "secret"}
	n := New(cfg, discardLogger())

	msg := &Message{Title: "hello", Type: TypeScanSuccess, Timestamp: time.Now()}
	require.NoError(t, n.Send(t.Context(), msg))

	require.Equal(t, 1, rec.count())
	assert.Equal(t, "hello", rec.messages[0].Title)
	assert.Equal(t, "secret", rec.headers[0].Get("X-Token"))
	assert.Equal(t, "application/json", rec.headers[0].Get("Content-Type"))
}

func TestSendWebhookErrorStatus(t *testing.T) {
	rec := &recorder{status: http.StatusInternalServerError}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	n := New(enabledConfig(srv.URL), discardLogger())
	err := n.Send(t.Context(), &Message{Title: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRegisterDeliversThroughBus(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	bus := event.NewBus(discardLogger(), 8)
	New(enabledConfig(srv.URL), discardLogger()).Register(bus)
	go bus.Start()

	bus.Publish(event.Event{Type: event.ScanStarted, ScanID: "a"})
	bus.Publish(event.Event{Type: event.ScanFailed, ScanID: "a", Data: map[string]any{"error": "gone"}})
	bus.Stop()
	<-bus.Finished()

	require.Equal(t, 1, rec.count())
	assert.Equal(t, TypeScanFailure, rec.messages[0].Type)
	assert.Equal(t, "a", rec.messages[0].ScanID)
}
