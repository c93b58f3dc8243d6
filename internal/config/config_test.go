package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/glucosim/internal/resource"
)

// isolateHome points HOME at a temp dir so Load never sees a real config.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestDefault(t *testing.T) {
	config := Default()

	if config.Scenario != "flat_and_stable" {
		t.Errorf("expected Scenario 'flat_and_stable', got '%s'", config.Scenario)
	}
	if config.Fixtures.Driver != "embedded" {
		t.Errorf("expected Fixtures.Driver 'embedded', got '%s'", config.Fixtures.Driver)
	}
	if config.Fixtures.S3.Region != "us-east-1" {
		t.Errorf("expected S3 region 'us-east-1', got '%s'", config.Fixtures.S3.Region)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if config.Metrics.Enabled {
		t.Error("expected metrics disabled by default")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
scenario: high_and_falling
fixtures:
  driver: s3
  s3:
    bucket: loop-fixtures
    prefix: v2/
    endpoint: http://localhost:9000
    path_style: true
logging:
  level: debug
metrics:
  enabled: true
  addr: ":9100"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Scenario != "high_and_falling" {
		t.Errorf("Scenario = %q", config.Scenario)
	}
	if config.Fixtures.Driver != "s3" || config.Fixtures.S3.Bucket != "loop-fixtures" || !config.Fixtures.S3.PathStyle {
		t.Errorf("Fixtures = %+v", config.Fixtures)
	}
	// Unset keys keep their defaults.
	if config.Fixtures.S3.Region != "us-east-1" {
		t.Errorf("S3.Region = %q, want default", config.Fixtures.S3.Region)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", config.Logging.Level)
	}
	if !config.Metrics.Enabled || config.Metrics.Addr != ":9100" {
		t.Errorf("Metrics = %+v", config.Metrics)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "s3cret")
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
fixtures:
  driver: postgres
  postgres_dsn: postgres://loop:${TEST_PG_PASSWORD}@db:5432/fixtures
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Fixtures.PostgresDSN != "postgres://loop:s3cret@db:5432/fixtures" {
		t.Errorf("PostgresDSN = %q", config.Fixtures.PostgresDSN)
	}
}

func TestLoad_HomeConfig(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("scenario: low_and_falling\n"), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Scenario != "low_and_falling" {
		t.Errorf("Scenario = %q", config.Scenario)
	}
}

func TestLoad_NoFile(t *testing.T) {
	isolateHome(t)
	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Fixtures.Driver != "embedded" {
		t.Errorf("Driver = %q, want default", config.Fixtures.Driver)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("GLUCOSIM_SCENARIO", "live_capture")
	t.Setenv("GLUCOSIM_FIXTURES_DRIVER", "dir")
	t.Setenv("GLUCOSIM_FIXTURES_DIR", "/srv/fixtures")
	t.Setenv("GLUCOSIM_FIXTURES_S3_BUCKET", "env-bucket")
	t.Setenv("GLUCOSIM_FIXTURES_S3_PATH_STYLE", "true")
	t.Setenv("GLUCOSIM_LOG_LEVEL", "trace")
	t.Setenv("GLUCOSIM_METRICS_ENABLED", "1")
	t.Setenv("GLUCOSIM_METRICS_ADDR", ":9999")

	config, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if config.Scenario != "live_capture" {
		t.Errorf("Scenario = %q", config.Scenario)
	}
	if config.Fixtures.Driver != "dir" || config.Fixtures.Dir != "/srv/fixtures" {
		t.Errorf("Fixtures = %+v", config.Fixtures)
	}
	if config.Fixtures.S3.Bucket != "env-bucket" || !config.Fixtures.S3.PathStyle {
		t.Errorf("S3 = %+v", config.Fixtures.S3)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("Logging.Level = %q", config.Logging.Level)
	}
	if !config.Metrics.Enabled || config.Metrics.Addr != ":9999" {
		t.Errorf("Metrics = %+v", config.Metrics)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GlucosimConfig)
		wantErr string
	}{
		{"default", func(*GlucosimConfig) {}, ""},
		{"hyphenated scenario", func(c *GlucosimConfig) { c.Scenario = "high-and-stable" }, ""},
		{"unknown scenario", func(c *GlucosimConfig) { c.Scenario = "sideways" }, "unknown scenario"},
		{"unknown driver", func(c *GlucosimConfig) { c.Fixtures.Driver = "ftp" }, "invalid fixtures driver"},
		{"dir without path", func(c *GlucosimConfig) { c.Fixtures.Driver = "dir" }, "fixtures.dir"},
		{"s3 without bucket", func(c *GlucosimConfig) { c.Fixtures.Driver = "s3" }, "fixtures.s3.bucket"},
		{"postgres without dsn", func(c *GlucosimConfig) { c.Fixtures.Driver = "postgres" }, "postgres_dsn"},
		{"sqlite default path", func(c *GlucosimConfig) { c.Fixtures.Driver = "sqlite" }, ""},
		{"bad level", func(c *GlucosimConfig) { c.Logging.Level = "loud" }, "invalid log level"},
		{"empty level", func(c *GlucosimConfig) { c.Logging.Level = "" }, ""},
		{"metrics without addr", func(c *GlucosimConfig) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }, "metrics.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRedactedDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"", ""},
		{"postgres://loop:s3cret@db:5432/fixtures", "postgres://loop:xxxxx@db:5432/fixtures"},
		{"postgres://loop@db/fixtures", "postgres://loop@db/fixtures"},
		{"host=db user=loop password=s3cret", "(set)"},
	}
	for _, tt := range tests {
		c := FixturesConfig{PostgresDSN: tt.dsn}
		if got := c.RedactedDSN(); got != tt.want {
			t.Errorf("RedactedDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
		if strings.Contains(c.String(), "s3cret") {
			t.Errorf("String() leaks password: %s", c.String())
		}
	}
}

func TestResourceOptions(t *testing.T) {
	home := isolateHome(t)
	config := Default()
	config.Fixtures.Driver = "sqlite"
	config.Fixtures.S3.Bucket = "b"

	opts := config.ResourceOptions()
	if opts.Driver != resource.DriverSQLite {
		t.Errorf("Driver = %q", opts.Driver)
	}
	if want := filepath.Join(home, DirName, "fixtures.db"); opts.SQLitePath != want {
		t.Errorf("SQLitePath = %q, want %q", opts.SQLitePath, want)
	}
	if opts.S3.Bucket != "b" || opts.S3.Region != "us-east-1" {
		t.Errorf("S3 = %+v", opts.S3)
	}

	config.Fixtures.SQLitePath = "/tmp/x.db"
	if got := config.ResourceOptions().SQLitePath; got != "/tmp/x.db" {
		t.Errorf("explicit SQLitePath = %q", got)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scenario: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
