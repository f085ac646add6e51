// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps environment variables onto [Config] with caarlos0/env.

In development, .env and .env.local are read first with godotenv. Variables
already set in the process environment always win. Load fails on a missing
required variable and on combinations that would otherwise only surface at
request time, such as the s3 backend without a bucket.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
)

const (
	AssetBackendDisk = "disk"
	AssetBackendS3   = "s3"
)

// Config is read once at startup and passed to constructors. It is not
// mutated afterwards.
type Config struct {
	ServerPort  string `env:"SERVER_PORT"  envDefault:"4000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"`

	// PublicBaseURL prefixes every cover URL handed to clients. A trailing
	// slash is removed.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:4000"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath overrides the migrations compiled into the binary.
	MigrationPath string `env:"MIGRATION_PATH"`

	RedisURL         string        `env:"REDIS_URL,required"`
	TopRatedCacheTTL time.Duration `env:"TOP_RATED_CACHE_TTL" envDefault:"30s"`

	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	AssetBackend string        `env:"ASSET_BACKEND" envDefault:"disk"`
	AssetDir     string        `env:"ASSET_DIR"     envDefault:"./images"`
	StagingDir   string        `env:"STAGING_DIR"`
	AssetTimeout time.Duration `env:"ASSET_TIMEOUT" envDefault:"15s"`

	// S3-compatible object storage. An empty endpoint means AWS itself.
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	ImageMaxWidth  int   `env:"IMAGE_MAX_WIDTH"  envDefault:"1200"`
	ImageMaxHeight int   `env:"IMAGE_MAX_HEIGHT" envDefault:"1800"`
	ImageQuality   int   `env:"IMAGE_QUALITY"    envDefault:"80"`
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES"`

	// ExtraOrigins is the CORS allow-list outside development.
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// Load reads the environment. See the package documentation for precedence.
func Load() (*Config, error) {
	// Missing files are fine; Load never overrides variables already set.
	for _, file := range []string{".env", ".env.local"} {
		_ = godotenv.Load(file)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = constants.DefaultMaxUploadBytes
	}
	return cfg, nil
}

// validate reports every problem at once.
func (c *Config) validate() error {
	var problems []error

	switch c.AssetBackend {
	case AssetBackendDisk:
		if c.AssetDir == "" {
			problems = append(problems, errors.New("ASSET_DIR is required for the disk backend"))
		}
	case AssetBackendS3:
		if c.S3Bucket == "" {
			problems = append(problems, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown ASSET_BACKEND %q", c.AssetBackend))
	}

	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		problems = append(problems, fmt.Errorf("IMAGE_QUALITY must be between 1 and 100, got %d", c.ImageQuality))
	}
	if c.ImageMaxWidth <= 0 || c.ImageMaxHeight <= 0 {
		problems = append(problems, errors.New("IMAGE_MAX_WIDTH and IMAGE_MAX_HEIGHT must be positive"))
	}
	if c.AssetTimeout <= 0 {
		problems = append(problems, errors.New("ASSET_TIMEOUT must be positive"))
	}

	return errors.Join(problems...)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowedOrigins returns EXTRA_ORIGINS with blanks dropped.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.ExtraOrigins))
	for _, origin := range c.ExtraOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
