// Package config loads build/environment configuration for the client and
// the protectctl CLI. Variables carry the PROTECT_ prefix, e.g.
// PROTECT_API_URL, PROTECT_ENVIRONMENT.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment names the deployment environment of the backend.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the build-time configuration for the API client.
type Config struct {
	// APIURL is the base URL of the backend API, e.g. https://api.example.net/v1.
	APIURL string `envconfig:"API_URL" default:"http://localhost:8080"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// BuildVersion is reported in metric events.
	BuildVersion string `envconfig:"BUILD_VERSION" default:"dev"`

	// Platform is reported in metric events (android, ios, test).
	Platform string `envconfig:"PLATFORM" default:"test"`

	// TestToken is a fixed device-verification token the backend accepts
	// outside production. Ignored when Environment is production.
	TestToken string `envconfig:"TEST_TOKEN" default:""`

	// PinnedCertFingerprints are hex-encoded SHA-256 certificate
	// fingerprints; when non-empty the client rejects TLS chains that
	// contain no matching certificate. Deployment-specific, never baked in.
	PinnedCertFingerprints []string `envconfig:"PINNED_CERT_FINGERPRINTS" default:""`

	// StorePath is where the SQLite state store lives for standalone use.
	StorePath string `envconfig:"STORE_PATH" default:""`
}

// New parses PROTECT_-prefixed environment variables into a Config.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PROTECT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("api_url", cfg.APIURL).
		Str("environment", string(cfg.Environment)).
		Str("build_version", cfg.BuildVersion).
		Str("platform", cfg.Platform).
		Int("pinned_certs", len(cfg.PinnedCertFingerprints)).
		Msg("configuration loaded")

	return &cfg, nil
}

// Validate rejects configurations that would silently weaken production.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported environment: %s", c.Environment)
	}
	if c.IsProduction() && c.TestToken != "" {
		return fmt.Errorf("test token must not be set in production")
	}
	return nil
}

// IsProduction reports whether the production environment is configured.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
