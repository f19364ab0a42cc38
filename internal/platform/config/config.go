// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Upstream, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the account portal.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"local"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Remote account API consumed by the portal (e.g. https://api.novagate.studio)
	UpstreamBaseURL string `env:"UPSTREAM_BASE_URL,required"`

	// PaymentSiteURL is surfaced to the frontend through /config.
	PaymentSiteURL string `env:"PAYMENT_SITE_URL"`

	// CookieDomain scopes the credential cookie in non-local deployments.
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:".novagate.studio"`

	// Key-Value Cache (Redis). Optional: when empty, all volatile state
	// (profile cache, verification flows) is held in process memory.
	RedisURL string `env:"REDIS_URL"`

	// Cross-Origin Resource Sharing: comma-separated exact origins allowed
	// in addition to the cookie-domain suffix match (e.g. a staging frontend
	// on a different apex).
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if !strings.HasPrefix(cfg.UpstreamBaseURL, "http") {
		return nil, fmt.Errorf("config: UPSTREAM_BASE_URL must be an absolute http(s) URL")
	}

	return cfg, nil
}

// IsLocal reports whether the portal runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

// SessionCookieDomain returns the domain attribute for the credential cookie.
//
// Local deployments pin the cookie to localhost; everything else shares the
// configured apex domain so sibling sites (e.g. the payment site) see the
// same session.
func (c *Config) SessionCookieDomain() string {
	if c.IsLocal() {
		return "localhost"
	}
	return c.CookieDomain
}

// HasRedis reports whether a Redis URL was configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// CORSExtraOrigins returns the additional exact origins allowed by CORS,
// parsed from the comma-separated EXTRA_ORIGINS value.
func (c *Config) CORSExtraOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}

	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
