package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/dupliremover/internal/api"
	"github.com/fenilsonani/dupliremover/internal/config"
	"github.com/fenilsonani/dupliremover/internal/security"
)

var (
	serverURL  string
	initConfig bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <directory>",
	Short: "Check that a directory can be scanned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := security.ValidateDirectory(args[0]); err != nil {
			var inputErr *security.InputError
			if errors.As(err, &inputErr) {
				fmt.Printf("❌ %s\n", inputErr.Error())
				os.Exit(2)
			}
			return err
		}
		fmt.Printf("✅ %s is valid and accessible\n", args[0])
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List directories recently scanned by a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := serverURL
		if url == "" {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			addr := cfg.Server.Addr
			if strings.HasPrefix(addr, ":") {
				addr = "localhost" + addr
			}
			url = "http://" + addr
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(url, "/")+"/api/recent-directories", nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach server: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}

		var body api.RecentResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		if len(body.Directories) == 0 {
			fmt.Println("No directories scanned yet.")
			return nil
		}
		for i, dir := range body.Directories {
			fmt.Printf("%2d. %s\n", i+1, dir)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows the configuration file location and the effective configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath := configPath
		if cfgPath == "" {
			var err error
			if cfgPath, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		if initConfig {
			if configPath != "" {
				if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
					if err := config.Save(config.GetDefault(), cfgPath); err != nil {
						return err
					}
				}
			} else if _, err := config.EnsureConfigExists(); err != nil {
				return err
			}
		}

		fmt.Printf("Config file: %s\n", cfgPath)

		// Check if config exists
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("Config file does not exist. Using default configuration.")
			fmt.Println("Run 'dupliremover config --init' to create it.")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		fmt.Println()
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	recentCmd.Flags().StringVar(&serverURL, "server", "", "server base URL (default from server.addr)")
	configCmd.Flags().BoolVar(&initConfig, "init", false, "write the default configuration if none exists")
}
