package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no config.yaml or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
	return tempDir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.OCR.Provider != "tesseract" {
			t.Errorf("OCR.Provider = %s, want tesseract", cfg.OCR.Provider)
		}
		if cfg.OCR.Language != "eng" {
			t.Errorf("OCR.Language = %s, want eng", cfg.OCR.Language)
		}
		if cfg.OCR.MaxConcurrent != 4 {
			t.Errorf("OCR.MaxConcurrent = %d, want 4", cfg.OCR.MaxConcurrent)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Cache.MaxEntries != 50000 {
			t.Errorf("Cache.MaxEntries = %d, want 50000", cfg.Cache.MaxEntries)
		}
		if cfg.Cache.SweepInterval != 10*time.Minute {
			t.Errorf("Cache.SweepInterval = %v, want 10m", cfg.Cache.SweepInterval)
		}
		if cfg.RateLimit.PerIP != 10 {
			t.Errorf("RateLimit.PerIP = %d, want 10", cfg.RateLimit.PerIP)
		}
		if cfg.Logging.Format != "json" {
			t.Errorf("Logging.Format = %s, want json", cfg.Logging.Format)
		}
		if cfg.Classifier.MinSimilarity != 45 {
			t.Errorf("Classifier.MinSimilarity = %v, want 45", cfg.Classifier.MinSimilarity)
		}
		if cfg.Limits.MaxScreenshotBytes != DefaultMaxScreenshotBytes {
			t.Errorf("Limits.MaxScreenshotBytes = %d, want %d", cfg.Limits.MaxScreenshotBytes, DefaultMaxScreenshotBytes)
		}
		if len(cfg.Trust.WhitelistedDomains) != 0 {
			t.Errorf("Trust.WhitelistedDomains = %v, want empty", cfg.Trust.WhitelistedDomains)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("DEALICIOUS_SERVER_PORT", "9090")
		t.Setenv("DEALICIOUS_SERVER_ENVIRONMENT", "production")
		t.Setenv("DEALICIOUS_OCR_PROVIDER", "http")
		t.Setenv("DEALICIOUS_OCR_ENDPOINT", "https://ocr.internal/v1/recognize")
		t.Setenv("DEALICIOUS_CACHE_TTL", "12h")
		t.Setenv("DEALICIOUS_RATELIMIT_PER_IP", "200")
		t.Setenv("DEALICIOUS_LOGGING_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.OCR.Provider != "http" {
			t.Errorf("OCR.Provider = %s, want http", cfg.OCR.Provider)
		}
		if cfg.OCR.Endpoint != "https://ocr.internal/v1/recognize" {
			t.Errorf("OCR.Endpoint = %s, want https://ocr.internal/v1/recognize", cfg.OCR.Endpoint)
		}
		if cfg.Cache.TTL != 12*time.Hour {
			t.Errorf("Cache.TTL = %v, want 12h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
		}
	})

	t.Run("loads values from an explicit config file", func(t *testing.T) {
		dir := chdirTemp(t)
		path := filepath.Join(dir, "dealicious.yaml")
		content := `
server:
  port: "7070"
trust:
  whitelisted_domains: ["amazon.in", "zepto.com"]
classifier:
  corpus_path: /etc/dealicious/categories.yaml
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if len(cfg.Trust.WhitelistedDomains) != 2 || cfg.Trust.WhitelistedDomains[1] != "zepto.com" {
			t.Errorf("Trust.WhitelistedDomains = %v, want [amazon.in zepto.com]", cfg.Trust.WhitelistedDomains)
		}
		if cfg.Classifier.CorpusPath != "/etc/dealicious/categories.yaml" {
			t.Errorf("Classifier.CorpusPath = %s", cfg.Classifier.CorpusPath)
		}
	})

	t.Run("fails when an explicit config file is missing", func(t *testing.T) {
		dir := chdirTemp(t)
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		if err == nil {
			t.Error("LoadFile() error = nil, want error for missing file")
		}
	})

	t.Run("fails validation when http OCR has no endpoint", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("DEALICIOUS_OCR_PROVIDER", "http")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing OCR endpoint")
		}
		if !strings.Contains(err.Error(), "OCR endpoint is required") {
			t.Errorf("Load() error = %v, want 'OCR endpoint is required'", err)
		}
	})

	t.Run("fails validation for invalid OCR provider", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("DEALICIOUS_OCR_PROVIDER", "invalid")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid OCR provider")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		chdirTemp(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		chdirTemp(t)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2="value2"

# Another comment
TEST_VAR_3='value3'
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		for _, key := range []string{"TEST_VAR_1", "TEST_VAR_2", "TEST_VAR_3"} {
			os.Unsetenv(key)
			defer os.Unsetenv(key)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OCR:     OCRConfig{Provider: "tesseract", MaxConcurrent: 2},
			Cache:   CacheConfig{TTL: 24 * time.Hour, MaxEntries: 10},
			Logging: LoggingConfig{Format: "json"},
			Limits:  LimitsConfig{MaxScreenshotBytes: 1024},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("accepts disabled OCR", func(t *testing.T) {
		cfg := valid()
		cfg.OCR.Provider = "disabled"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fails for unknown OCR provider", func(c *Config) { c.OCR.Provider = "easyocr" }},
		{"fails for http OCR without endpoint", func(c *Config) { c.OCR.Provider = "http" }},
		{"fails for non-positive OCR concurrency", func(c *Config) { c.OCR.MaxConcurrent = 0 }},
		{"fails for non-positive cache TTL", func(c *Config) { c.Cache.TTL = 0 }},
		{"fails for non-positive cache size", func(c *Config) { c.Cache.MaxEntries = -1 }},
		{"fails for unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"fails for non-positive screenshot limit", func(c *Config) { c.Limits.MaxScreenshotBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("validate() error = nil, want error")
			}
		})
	}
}
