package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/dupliremover/internal/logging"
	"github.com/fenilsonani/dupliremover/internal/platform"
	"github.com/fenilsonani/dupliremover/internal/security"
	"github.com/fenilsonani/dupliremover/pkg/utils"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "DUPLI_"

// Config represents the application configuration
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Scan          ScanConfig         `yaml:"scan"`
	Deletion      DeletionConfig     `yaml:"deletion"`
	Recent        RecentConfig       `yaml:"recent"`
	Logging       logging.Config     `yaml:"logging"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	ScanRatePerMinute int           `yaml:"scan_rate_per_minute"` // 0 disables the limit
	ScanBurst         int           `yaml:"scan_burst"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// ScanConfig holds pipeline settings
type ScanConfig struct {
	Workers         int           `yaml:"workers"`    // 0 means one per CPU
	ChunkSize       string        `yaml:"chunk_size"` // e.g., "64KiB"
	BatchSize       int           `yaml:"batch_size"`
	FlushInterval   time.Duration `yaml:"flush_interval"`
	ExcludePatterns []string      `yaml:"exclude_patterns"`
}

// DeletionConfig holds duplicate removal settings
type DeletionConfig struct {
	DryRun         bool          `yaml:"dry_run"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	VerifyContent  bool          `yaml:"verify_content"`
	ManifestPath   string        `yaml:"manifest_path"` // empty disables the manifest
	ProtectedPaths []string      `yaml:"protected_paths"`
}

// RecentConfig holds the recent directories list settings
type RecentConfig struct {
	Capacity int `yaml:"capacity"`
}

// NotificationConfig holds notification settings
type NotificationConfig struct {
	Enabled   bool          `yaml:"enabled"`
	OnSuccess bool          `yaml:"on_success"`
	OnFailure bool          `yaml:"on_failure"`
	Webhook   WebhookConfig `yaml:"webhook"`
}

// WebhookConfig holds webhook notification settings
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// Load loads configuration from a file, falling back to the defaults when the
// file does not exist. Environment overrides are applied before validation.
func Load(configPath string) (*Config, error) {
	config := GetDefault()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields from DUPLI_* variables resolved through lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("ADDR", &c.Server.Addr)
	str("CHUNK_SIZE", &c.Scan.ChunkSize)
	str("MANIFEST_PATH", &c.Deletion.ManifestPath)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("LOG_FILE", &c.Logging.FilePath)
	str("WEBHOOK_URL", &c.Notifications.Webhook.URL)

	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "EXCLUDE"); ok {
		c.Scan.ExcludePatterns = splitList(v)
	}

	if err := num("WORKERS", &c.Scan.Workers); err != nil {
		return err
	}
	if err := num("RECENT_CAPACITY", &c.Recent.Capacity); err != nil {
		return err
	}
	if err := flag("DRY_RUN", &c.Deletion.DryRun); err != nil {
		return err
	}
	if err := flag("VERIFY_CONTENT", &c.Deletion.VerifyContent); err != nil {
		return err
	}
	return flag("NOTIFICATIONS", &c.Notifications.Enabled)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.ScanRatePerMinute < 0 {
		return fmt.Errorf("scan rate must be >= 0")
	}
	if c.Server.ScanBurst < 0 {
		return fmt.Errorf("scan burst must be >= 0")
	}

	if c.Scan.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if _, err := c.ChunkSizeBytes(); err != nil {
		return err
	}
	if c.Scan.BatchSize < 0 {
		return fmt.Errorf("batch size must be >= 0")
	}
	if c.Scan.FlushInterval < 0 {
		return fmt.Errorf("flush interval must be >= 0")
	}

	// Validate exclude patterns (glob syntax)
	for _, pattern := range c.Scan.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	if c.Deletion.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0")
	}
	if c.Deletion.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be >= 0")
	}

	// Validate protected paths are absolute
	for _, path := range c.Deletion.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	if c.Recent.Capacity < 0 {
		return fmt.Errorf("recent capacity must be >= 0")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}

	if c.Notifications.Enabled && c.Notifications.Webhook.URL != "" {
		u, err := url.Parse(c.Notifications.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook url must be an absolute http(s) URL: %s", c.Notifications.Webhook.URL)
		}
	}

	return nil
}

// ChunkSizeBytes returns the parsed hashing chunk size
func (c *Config) ChunkSizeBytes() (int, error) {
	if c.Scan.ChunkSize == "" {
		return utils.DefaultChunkSize, nil
	}

	n, err := utils.ParseSize(c.Scan.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk size: %w", err)
	}
	if n <= 0 || n > 64*utils.MB {
		return 0, fmt.Errorf("chunk size must be between 1B and 64MiB: %s", c.Scan.ChunkSize)
	}
	return int(n), nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	configDir, err := platform.GetUserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "dupliremover", "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config
		defaultConfig := GetDefault()
		if err := Save(defaultConfig, configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
