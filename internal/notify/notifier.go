package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fenilsonani/dupliremover/internal/config"
	"github.com/fenilsonani/dupliremover/internal/event"
	"github.com/fenilsonani/dupliremover/pkg/utils"
)

const defaultTimeout = 30 * time.Second

// Message types sent to the webhook
const (
	TypeScanSuccess   = "scan_success"
	TypeScanFailure   = "scan_failure"
	TypeDeleteSuccess = "delete_success"
	TypeDeleteFailure = "delete_failure"
)

// Notifier forwards engine events to a webhook
type Notifier struct {
	config config.NotificationConfig
	client *http.Client
	logger *slog.Logger
}

// New creates a new notifier
func New(cfg config.NotificationConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Webhook.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Notifier{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Message represents a notification
type Message struct {
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	ScanID    string         `json:"scanId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Register subscribes the notifier to the events it reports on
func (n *Notifier) Register(bus *event.Bus) {
	if !n.config.Enabled || n.config.Webhook.URL == "" {
		return
	}
	bus.Subscribe(event.ScanCompleted, n.Handle)
	bus.Subscribe(event.ScanFailed, n.Handle)
	bus.Subscribe(event.DuplicatesDeleted, n.Handle)
}

// Handle converts an event into a message and sends it when the
// success/failure filters allow it
func (n *Notifier) Handle(e event.Event) {
	msg := n.Build(e)
	if msg == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.client.Timeout)
	defer cancel()

	if err := n.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send webhook notification", "type", msg.Type, "scan_id", msg.ScanID, "error", err)
		return
	}
	n.logger.Info("webhook notification sent", "title", msg.Title)
}

// Build returns the message for e, or nil when e should not be reported
func (n *Notifier) Build(e event.Event) *Message {
	if !n.config.Enabled {
		return nil
	}

	msg := &Message{
		Timestamp: e.Timestamp,
		ScanID:    e.ScanID,
		Data:      e.Data,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	dir, _ := e.Data["directory"].(string)

	switch e.Type {
	case event.ScanCompleted:
		if !n.config.OnSuccess {
			return nil
		}
		msg.Type = TypeScanSuccess
		msg.Title = fmt.Sprintf("Scan Completed: %s", dir)
		msg.Message = fmt.Sprintf("Found %d duplicate files in %d files, %s reclaimable",
			toInt64(e.Data["duplicates"]), toInt64(e.Data["files"]), utils.FormatBytes(toInt64(e.Data["reclaimable"])))

	case event.ScanFailed:
		if !n.config.OnFailure {
			return nil
		}
		msg.Type = TypeScanFailure
		msg.Title = fmt.Sprintf("Scan Failed: %s", dir)
		msg.Message = fmt.Sprintf("Scan failed: %v", e.Data["error"])

	case event.DuplicatesDeleted:
		failed := toInt64(e.Data["failed"])
		deleted := toInt64(e.Data["deleted"])
		freed := utils.FormatBytes(toInt64(e.Data["freed"]))

		if failed > 0 {
			if !n.config.OnFailure {
				return nil
			}
			msg.Type = TypeDeleteFailure
			msg.Title = "Duplicate Removal Finished With Errors"
			msg.Message = fmt.Sprintf("Deleted %d files, freed %s, %d failed", deleted, freed, failed)
		} else {
			if !n.config.OnSuccess {
				return nil
			}
			msg.Type = TypeDeleteSuccess
			msg.Title = "Duplicate Removal Completed"
			msg.Message = fmt.Sprintf("Successfully deleted %d files, freed %s", deleted, freed)
		}
		if dryRun, _ := e.Data["dry_run"].(bool); dryRun {
			msg.Title += " (dry run)"
		}

	default:
		return nil
	}

	return msg
}

// Send posts msg to the configured webhook
func (n *Notifier) Send(ctx context.Context, msg *Message) error {
	cfg := n.config.Webhook

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	method := cfg.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
