// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and REELRANK_ env vars.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// MoviesFile and RatingsFile are loaded at startup when set.
	MoviesFile  string `koanf:"movies_file"`
	RatingsFile string `koanf:"ratings_file"`

	// DataDir is the only directory POST /reload may read named files
	// from. Empty limits the endpoint to the configured files.
	DataDir string `koanf:"data_dir"`

	// Delimiter separates fields in both record files.
	Delimiter string `koanf:"delimiter" validate:"required,len=1"`

	// MaxLimit caps the limit query parameter on ranking endpoints.
	MaxLimit int `koanf:"max_limit" validate:"min=1,max=10000"`

	// RecommendationCount is how many movies a recommendation returns at most.
	RecommendationCount int `koanf:"recommendation_count" validate:"min=1,max=100"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Delimiter:           "|",
		MaxLimit:            100,
		RecommendationCount: 3,
	}
}
