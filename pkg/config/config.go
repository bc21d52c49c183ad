// Package config loads server configuration from a YAML file with
// environment fallbacks for secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MeetLink configures the join-link provider function.
type MeetLink struct {
	// Endpoint is the HTTPS URL of the link-creation function. Empty
	// disables join-link creation.
	Endpoint string `yaml:"endpoint"`
	// Token is sent as a bearer token; prefer MEETLINK_TOKEN in the
	// environment over the config file.
	Token string `yaml:"token"`
}

// Config is the server configuration.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`
	// DatabaseURL is the PostgreSQL connection string; DATABASE_URL in the
	// environment takes precedence.
	DatabaseURL string   `yaml:"database_url"`
	MeetLink    MeetLink `yaml:"meetlink"`
	// PermissionTTLMinutes is how long the page-permission cache stays
	// fresh.
	PermissionTTLMinutes int `yaml:"permission_ttl_minutes"`
	// RateLimitPerMinute caps API requests per client IP.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	// RetentionDays is how long security events are kept before the
	// maintenance job purges them.
	RetentionDays int `yaml:"retention_days"`
	// MaintenanceCron is a cron expression for the maintenance job.
	MaintenanceCron string `yaml:"maintenance_cron"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:               ":8080",
		PermissionTTLMinutes: 5,
		RateLimitPerMinute:   60,
		RetentionDays:        90,
		MaintenanceCron:      "*/30 * * * *",
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. Environment variables override file values for secrets.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Running without a config file is fine; env + flags cover it.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("MEETLINK_TOKEN"); v != "" {
		cfg.MeetLink.Token = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.PermissionTTLMinutes <= 0 {
		return errors.New("permission_ttl_minutes must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("rate_limit_per_minute must be positive")
	}
	if c.RetentionDays <= 0 {
		return errors.New("retention_days must be positive")
	}
	return nil
}

// PermissionTTL returns the permission cache TTL as a duration.
func (c *Config) PermissionTTL() time.Duration {
	return time.Duration(c.PermissionTTLMinutes) * time.Minute
}
