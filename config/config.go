package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Trust      TrustConfig      `mapstructure:"trust"`
	Limits     LimitsConfig     `mapstructure:"limits"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// OCRConfig selects and tunes the screenshot text recognizer
type OCRConfig struct {
	Provider          string        `mapstructure:"provider"` // "tesseract", "http" or "disabled"
	BinaryPath        string        `mapstructure:"binary_path"`
	Endpoint          string        `mapstructure:"endpoint"`
	APIKey            string        `mapstructure:"api_key"`
	Language          string        `mapstructure:"language"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// CacheConfig holds price history cache configuration
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per second
	Burst int `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"` // "json" or "console"
	NoColor bool   `mapstructure:"no_color"`
}

// TelemetryConfig holds OpenTelemetry tracing configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// ClassifierConfig holds the optional similarity classifier settings
type ClassifierConfig struct {
	CorpusPath    string  `mapstructure:"corpus_path"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

// TrustConfig overrides the built-in marketplace trust table
type TrustConfig struct {
	WhitelistedDomains []string `mapstructure:"whitelisted_domains"`
	TrustedPlatforms   []string `mapstructure:"trusted_platforms"`
	ModeratePlatforms  []string `mapstructure:"moderate_platforms"`
}

// DefaultMaxScreenshotBytes is the screenshot size limit when none is configured
const DefaultMaxScreenshotBytes int64 = 10 << 20

// LimitsConfig holds request size limits
type LimitsConfig struct {
	MaxScreenshotBytes int64 `mapstructure:"max_screenshot_bytes"`
}

// Load loads configuration from environment variables and the default config file locations
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from the given file (or the default locations when empty),
// environment variables and defaults
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/dealicious/")
	}

	// .env is optional; values never override variables already set
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	// Environment variable settings (DEALICIOUS_SERVER_PORT -> server.port)
	v.SetEnvPrefix("DEALICIOUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads KEY=VALUE pairs from ./.env into the process environment.
// A missing file is not an error.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	// OCR defaults
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.binary_path", "tesseract")
	v.SetDefault("ocr.endpoint", "")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.timeout", 30*time.Second)
	v.SetDefault("ocr.max_concurrent", 4)
	v.SetDefault("ocr.requests_per_second", 5.0)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.max_entries", 50000)
	v.SetDefault("cache.sweep_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 10)
	v.SetDefault("ratelimit.burst", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")

	// Classifier defaults
	v.SetDefault("classifier.corpus_path", "")
	v.SetDefault("classifier.min_similarity", 45.0)

	// Trust table defaults (empty = built-in table)
	v.SetDefault("trust.whitelisted_domains", []string{})
	v.SetDefault("trust.trusted_platforms", []string{})
	v.SetDefault("trust.moderate_platforms", []string{})

	// Limits defaults
	v.SetDefault("limits.max_screenshot_bytes", DefaultMaxScreenshotBytes)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.OCR.Provider {
	case "tesseract", "http", "disabled":
	default:
		return fmt.Errorf("ocr provider must be 'tesseract', 'http' or 'disabled', got: %s", config.OCR.Provider)
	}

	if config.OCR.Provider == "http" && config.OCR.Endpoint == "" {
		return fmt.Errorf("OCR endpoint is required when ocr provider is 'http' (set DEALICIOUS_OCR_ENDPOINT)")
	}

	if config.OCR.MaxConcurrent <= 0 {
		return fmt.Errorf("ocr max_concurrent must be positive, got: %d", config.OCR.MaxConcurrent)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got: %s", config.Cache.TTL)
	}

	if config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive, got: %d", config.Cache.MaxEntries)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got: %s", config.Logging.Format)
	}

	if config.Limits.MaxScreenshotBytes <= 0 {
		return fmt.Errorf("limits max_screenshot_bytes must be positive, got: %d", config.Limits.MaxScreenshotBytes)
	}

	return nil
}
