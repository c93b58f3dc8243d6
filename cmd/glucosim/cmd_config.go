package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/glucosim/internal/config"
	"github.com/nvandessel/glucosim/internal/logging"
	"github.com/nvandessel/glucosim/internal/resource"
	"github.com/nvandessel/glucosim/internal/scenario"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage glucosim configuration",
		Long: `View and modify glucosim configuration settings.

Configuration is stored in ~/.glucosim/config.yaml. Environment variables
(GLUCOSIM_SCENARIO, GLUCOSIM_FIXTURES_DRIVER, ...) override the file.

Examples:
  glucosim config list                          # Show all settings
  glucosim config get fixtures.driver           # Get a specific setting
  glucosim config set scenario high_and_stable  # Set a setting
  glucosim config set fixtures.postgres_dsn '${DATABASE_URL}'`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				redacted := *cfg
				redacted.Fixtures.PostgresDSN = cfg.Fixtures.RedactedDSN()
				return json.NewEncoder(out).Encode(redacted)
			}

			fmt.Fprintln(out, "Configuration (~/.glucosim/config.yaml):")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  scenario:              %s\n", cfg.Scenario)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Fixture Settings:")
			fmt.Fprintf(out, "  fixtures.driver:       %s\n", valueOrDefault(cfg.Fixtures.Driver, "embedded"))
			fmt.Fprintf(out, "  fixtures.dir:          %s\n", valueOrDefault(cfg.Fixtures.Dir, "(not set)"))
			fmt.Fprintf(out, "  fixtures.sqlite_path:  %s\n", valueOrDefault(cfg.Fixtures.SQLitePath, "(default)"))
			fmt.Fprintf(out, "  fixtures.s3.bucket:    %s\n", valueOrDefault(cfg.Fixtures.S3.Bucket, "(not set)"))
			fmt.Fprintf(out, "  fixtures.s3.prefix:    %s\n", valueOrDefault(cfg.Fixtures.S3.Prefix, "(none)"))
			fmt.Fprintf(out, "  fixtures.s3.region:    %s\n", cfg.Fixtures.S3.Region)
			fmt.Fprintf(out, "  fixtures.s3.endpoint:  %s\n", valueOrDefault(cfg.Fixtures.S3.Endpoint, "(aws)"))
			fmt.Fprintf(out, "  fixtures.postgres_dsn: %s\n", valueOrDefault(cfg.Fixtures.RedactedDSN(), "(not set)"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Observability:")
			fmt.Fprintf(out, "  logging.level:         %s\n", valueOrDefault(cfg.Logging.Level, "info"))
			fmt.Fprintf(out, "  metrics.enabled:       %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(out, "  metrics.addr:          %s\n", cfg.Metrics.Addr)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOutput(cmd) {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				}
				fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				return nil
			}

			if jsonOutput(cmd) {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(out, "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			cfg, err := readConfigFile()
			if err != nil {
				return err
			}
			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// readConfigFile loads ~/.glucosim/config.yaml without environment
// overrides, so set does not persist transient env values.
func readConfigFile() (*config.GlucosimConfig, error) {
	path := filepath.Join(config.Dir(), "config.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.GlucosimConfig, key string) (interface{}, bool) {
	switch key {
	case "scenario":
		return cfg.Scenario, true
	case "fixtures.driver":
		return cfg.Fixtures.Driver, true
	case "fixtures.dir":
		return cfg.Fixtures.Dir, true
	case "fixtures.sqlite_path":
		return cfg.Fixtures.SQLitePath, true
	case "fixtures.s3.bucket":
		return cfg.Fixtures.S3.Bucket, true
	case "fixtures.s3.prefix":
		return cfg.Fixtures.S3.Prefix, true
	case "fixtures.s3.region":
		return cfg.Fixtures.S3.Region, true
	case "fixtures.s3.endpoint":
		return cfg.Fixtures.S3.Endpoint, true
	case "fixtures.s3.path_style":
		return cfg.Fixtures.S3.PathStyle, true
	case "fixtures.postgres_dsn":
		return cfg.Fixtures.RedactedDSN(), true
	case "logging.level":
		return cfg.Logging.Level, true
	case "metrics.enabled":
		return cfg.Metrics.Enabled, true
	case "metrics.addr":
		return cfg.Metrics.Addr, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.GlucosimConfig, key, value string) error {
	switch key {
	case "scenario":
		scn, err := scenario.Parse(value)
		if err != nil {
			return err
		}
		cfg.Scenario = scn.String()
	case "fixtures.driver":
		switch resource.Driver(value) {
		case resource.DriverEmbedded, resource.DriverDir, resource.DriverSQLite, resource.DriverS3, resource.DriverPostgres:
		default:
			return fmt.Errorf("invalid driver: %s (valid: embedded, dir, sqlite, s3, postgres)", value)
		}
		cfg.Fixtures.Driver = value
	case "fixtures.dir":
		cfg.Fixtures.Dir = value
	case "fixtures.sqlite_path":
		cfg.Fixtures.SQLitePath = value
	case "fixtures.s3.bucket":
		cfg.Fixtures.S3.Bucket = value
	case "fixtures.s3.prefix":
		cfg.Fixtures.S3.Prefix = value
	case "fixtures.s3.region":
		cfg.Fixtures.S3.Region = value
	case "fixtures.s3.endpoint":
		cfg.Fixtures.S3.Endpoint = value
	case "fixtures.s3.path_style":
		cfg.Fixtures.S3.PathStyle = value == "true" || value == "1"
	case "fixtures.postgres_dsn":
		cfg.Fixtures.PostgresDSN = value
	case "logging.level":
		if !logging.ValidLevel(value) {
			return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace)", value)
		}
		cfg.Logging.Level = value
	case "metrics.enabled":
		cfg.Metrics.Enabled = value == "true" || value == "1"
	case "metrics.addr":
		cfg.Metrics.Addr = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// saveConfig writes the configuration to ~/.glucosim/config.yaml.
func saveConfig(cfg *config.GlucosimConfig) error {
	dir := config.Dir()
	if dir == "" {
		return fmt.Errorf("failed to get home directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
