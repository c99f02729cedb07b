package config

import (
	"path/filepath"
	"time"

	"github.com/fenilsonani/dupliremover/internal/logging"
	"github.com/fenilsonani/dupliremover/internal/platform"
	"github.com/fenilsonani/dupliremover/internal/recent"
	"github.com/fenilsonani/dupliremover/internal/scanner"
)

// DefaultAllowedOrigin is the development frontend allowed by CORS
const DefaultAllowedOrigin = "http://localhost:5173"

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:8080",
			AllowedOrigins:    []string{DefaultAllowedOrigin},
			ScanRatePerMinute: 30,
			ScanBurst:         5,
			ShutdownTimeout:   10 * time.Second,
		},
		Scan: ScanConfig{
			Workers:       0, // One per CPU
			ChunkSize:     "64KiB",
			BatchSize:     scanner.DefaultBatchSize,
			FlushInterval: scanner.DefaultFlushInterval,
			ExcludePatterns: []string{
				".git",
				".DS_Store",
				"Thumbs.db",
			},
		},
		Deletion: DeletionConfig{
			DryRun:         false,
			MaxRetries:     3,
			RetryDelay:     100 * time.Millisecond,
			VerifyContent:  true, // Re-hash before removing so edited files survive
			ManifestPath:   defaultManifestPath(),
			ProtectedPaths: []string{},
		},
		Recent: RecentConfig{
			Capacity: recent.DefaultCapacity,
		},
		Logging: logging.DefaultConfig(),
		Notifications: NotificationConfig{
			Enabled:   false,
			OnSuccess: true,
			OnFailure: true,
			Webhook: WebhookConfig{
				Method:  "POST",
				Headers: map[string]string{},
				Timeout: 30 * time.Second,
			},
		},
	}
}

func defaultManifestPath() string {
	configDir, err := platform.GetUserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "dupliremover", "deletions.jsonl")
}
