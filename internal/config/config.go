// Package config provides configuration loading for the voxreader server.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. Values come from an
// optional YAML file, overridden by environment variables, with defaults
// for everything else.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Library storage
	DatabasePath string `yaml:"database_path"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Chunking
	MaxChunkChars int `yaml:"max_chunk_chars"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// Metadata enrichment
	MetadataLookup bool   `yaml:"metadata_lookup"`
	OpenLibraryURL string `yaml:"open_library_url"`
}

// Load reads the YAML file at path (skipped when path is empty), then
// applies environment overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Host = envOr("VOXREADER_HOST", cfg.Host)
	cfg.Port = envOr("VOXREADER_PORT", cfg.Port)
	cfg.APIKey = envOr("VOXREADER_API_KEY", cfg.APIKey)
	cfg.DatabasePath = envOr("VOXREADER_DB_PATH", cfg.DatabasePath)
	cfg.WorkerCount = envInt("VOXREADER_WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("VOXREADER_MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("VOXREADER_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.MaxChunkChars = envInt("VOXREADER_MAX_CHUNK_CHARS", cfg.MaxChunkChars)
	cfg.JobTTL = envDuration("VOXREADER_JOB_TTL", cfg.JobTTL)
	cfg.OpenLibraryURL = envOr("VOXREADER_OPENLIBRARY_URL", cfg.OpenLibraryURL)
	if v := os.Getenv("VOXREADER_METADATA_LOOKUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MetadataLookup = b
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8091"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "voxreader.db"
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 50
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 104857600 // 100MB
	}
	if c.MaxChunkChars <= 0 {
		c.MaxChunkChars = 1000
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate checks required settings.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("VOXREADER_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
