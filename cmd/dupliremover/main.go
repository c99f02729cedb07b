package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/dupliremover/internal/config"
	"github.com/fenilsonani/dupliremover/internal/event"
	"github.com/fenilsonani/dupliremover/internal/logging"
	"github.com/fenilsonani/dupliremover/internal/notify"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dupliremover",
	Short: "Find and remove duplicate files",
	Long: `dupliremover scans a directory tree, fingerprints every file with SHA-256,
groups byte-identical files and removes the duplicates you select while
always keeping the first copy found.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}

// setupLogging builds the process logger. Logs always go to stderr so that
// reports written to stdout stay machine readable.
func setupLogging(cfg *config.Config) (*logging.Manager, *slog.Logger) {
	mgr, logger := logging.NewManager(cfg.Logging, os.Stderr)
	if verbose {
		mgr.SetLevel("debug")
	}
	slog.SetDefault(logger)
	return mgr, logger
}

// startBus starts the event bus with the webhook notifier attached. The
// returned func drains and stops it.
func startBus(cfg *config.Config, logger *slog.Logger) (*event.Bus, func()) {
	bus := event.NewBus(logger.With("component", "events"), 0)
	notify.New(cfg.Notifications, logger.With("component", "notify")).Register(bus)
	go bus.Start()

	return bus, func() {
		bus.Stop()
		<-bus.Finished()
	}
}
