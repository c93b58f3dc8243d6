// Package config provides unified configuration loading for glucosim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/glucosim/internal/logging"
	"github.com/nvandessel/glucosim/internal/resource"
	"github.com/nvandessel/glucosim/internal/scenario"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory holding config, the fixture database
// and resolution traces.
const DirName = ".glucosim"

// GlucosimConfig contains all glucosim configuration settings.
type GlucosimConfig struct {
	// Scenario is the default scenario key for CLI and MCP calls.
	Scenario string `json:"scenario" yaml:"scenario"`

	// Fixtures selects where fixture resources are loaded from.
	Fixtures FixturesConfig `json:"fixtures" yaml:"fixtures"`

	// Logging contains settings for operational and resolution logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics controls the prometheus endpoint.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// FixturesConfig configures the fixture resource backend.
type FixturesConfig struct {
	// Driver is one of "embedded" (default), "dir", "sqlite", "s3", "postgres".
	Driver string `json:"driver" yaml:"driver"`

	// Dir is the fixture directory for the dir driver.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// SQLitePath is the database file for the sqlite driver.
	// Defaults to ~/.glucosim/fixtures.db.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// S3 configures the s3 driver.
	S3 S3Config `json:"s3" yaml:"s3"`

	// PostgresDSN is the connection string for the postgres driver.
	// Supports ${VAR} syntax for env vars.
	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`
}

// S3Config configures an S3 or MinIO bucket holding fixtures.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// LoggingConfig configures glucosim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default), "debug" or "trace".
	// "debug" enables resolution tracing to ~/.glucosim/resolutions.jsonl.
	Level string `json:"level" yaml:"level"`
}

// MetricsConfig configures the prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Addr is the listen address for /metrics, e.g. ":9464".
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// RedactedDSN returns the Postgres DSN with any password masked.
func (c FixturesConfig) RedactedDSN() string {
	if c.PostgresDSN == "" {
		return ""
	}
	u, err := url.Parse(c.PostgresDSN)
	if err != nil || u.User == nil {
		if strings.Contains(c.PostgresDSN, "password=") {
			return "(set)"
		}
		return c.PostgresDSN
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// String implements fmt.Stringer to prevent accidental DSN password logging.
func (c FixturesConfig) String() string {
	return fmt.Sprintf("FixturesConfig{Driver:%s, Dir:%s, SQLitePath:%s, S3Bucket:%s, PostgresDSN:%s}",
		c.Driver, c.Dir, c.SQLitePath, c.S3.Bucket, c.RedactedDSN())
}

// Default returns a GlucosimConfig with sensible defaults.
func Default() *GlucosimConfig {
	return &GlucosimConfig{
		Scenario: scenario.FlatAndStable.String(),
		Fixtures: FixturesConfig{
			Driver: string(resource.DriverEmbedded),
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}

// Dir returns ~/.glucosim, or "" if the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DirName)
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.glucosim/config.yaml -> environment variables
func Load() (*GlucosimConfig, error) {
	config := Default()

	if dir := Dir(); dir != "" {
		configPath := filepath.Join(dir, "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*GlucosimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Fixtures.PostgresDSN = expandEnvVars(config.Fixtures.PostgresDSN)
	config.Fixtures.Dir = expandEnvVars(config.Fixtures.Dir)
	config.Fixtures.SQLitePath = expandEnvVars(config.Fixtures.SQLitePath)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *GlucosimConfig) Validate() error {
	if c.Scenario != "" {
		if _, err := scenario.Parse(c.Scenario); err != nil {
			return err
		}
	}

	switch resource.Driver(c.Fixtures.Driver) {
	case "", resource.DriverEmbedded, resource.DriverSQLite:
	case resource.DriverDir:
		if c.Fixtures.Dir == "" {
			return fmt.Errorf("fixtures.dir is required for the dir driver")
		}
	case resource.DriverS3:
		if c.Fixtures.S3.Bucket == "" {
			return fmt.Errorf("fixtures.s3.bucket is required for the s3 driver")
		}
	case resource.DriverPostgres:
		if c.Fixtures.PostgresDSN == "" {
			return fmt.Errorf("fixtures.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid fixtures driver: %s (valid: embedded, dir, sqlite, s3, postgres)", c.Fixtures.Driver)
	}

	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}

	return nil
}

// ResourceOptions converts the fixtures section into resource.Open options.
func (c *GlucosimConfig) ResourceOptions() resource.Options {
	sqlitePath := c.Fixtures.SQLitePath
	if sqlitePath == "" {
		if dir := Dir(); dir != "" {
			sqlitePath = filepath.Join(dir, "fixtures.db")
		}
	}
	return resource.Options{
		Driver:     resource.Driver(c.Fixtures.Driver),
		Dir:        c.Fixtures.Dir,
		SQLitePath: sqlitePath,
		S3: resource.S3Config{
			Bucket:    c.Fixtures.S3.Bucket,
			Prefix:    c.Fixtures.S3.Prefix,
			Region:    c.Fixtures.S3.Region,
			Endpoint:  c.Fixtures.S3.Endpoint,
			PathStyle: c.Fixtures.S3.PathStyle,
		},
		PostgresDSN: c.Fixtures.PostgresDSN,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *GlucosimConfig) {
	if v := os.Getenv("GLUCOSIM_SCENARIO"); v != "" {
		config.Scenario = v
	}

	if v := os.Getenv("GLUCOSIM_FIXTURES_DRIVER"); v != "" {
		config.Fixtures.Driver = v
	}
	if v := os.Getenv("GLUCOSIM_FIXTURES_DIR"); v != "" {
		config.Fixtures.Dir = v
	}
	if v := os.Getenv("GLUCOSIM_FIXTURES_SQLITE_PATH"); v != "" {
		config.Fixtures.SQLitePath = v
	}
	if v := os.Getenv("GLUCOSIM_FIXTURES_POSTGRES_DSN"); v != "" {
		config.Fixtures.PostgresDSN = v
	}

	// S3 settings share the GLUCOSIM_FIXTURES_S3_* names the resource package reads.
	env := resource.S3ConfigFromEnv()
	if env.Bucket != "" {
		config.Fixtures.S3.Bucket = env.Bucket
	}
	if env.Prefix != "" {
		config.Fixtures.S3.Prefix = env.Prefix
	}
	if env.Region != "" {
		config.Fixtures.S3.Region = env.Region
	}
	if env.Endpoint != "" {
		config.Fixtures.S3.Endpoint = env.Endpoint
	}
	if env.PathStyle {
		config.Fixtures.S3.PathStyle = true
	}

	if v := os.Getenv("GLUCOSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("GLUCOSIM_METRICS_ENABLED"); v != "" {
		config.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GLUCOSIM_METRICS_ADDR"); v != "" {
		config.Metrics.Addr = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
