// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package config loads and validates the Moodshare server configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, /etc/moodshare/config.yaml,
//     or the path in CONFIG_PATH)
//  3. Environment variables (HTTP_PORT, DATA_DIR, ADMIN_SECRET, ...)
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Sweep    SweepConfig    `koanf:"sweep"`
	Hub      HubConfig      `koanf:"hub"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// StorageConfig holds durable store settings.
type StorageConfig struct {
	// Path is the BadgerDB directory. Empty selects an in-memory store,
	// which degrades persistence to process lifetime only.
	Path string `koanf:"path"`

	// GCInterval is how often the badger value log garbage collector runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SweepConfig holds expiry sweeper settings.
type SweepConfig struct {
	// Interval bounds how long an expired entity may stay visible.
	Interval time.Duration `koanf:"interval"`
}

// HubConfig holds event broadcast hub settings.
type HubConfig struct {
	// SubscriberBuffer is the per-subscriber broadcast buffer capacity;
	// the connect handshake gets reserved headroom on top of it. A
	// subscriber whose buffer fills is treated as broken and dropped.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// SecurityConfig holds the admin secret and rate limit settings.
//
// AdminSecret gates the moderation endpoints the same way the admin panel's
// shared secret does; it is deliberately not a full auth system — the core
// only sees an isAdmin predicate.
type SecurityConfig struct {
	AdminSecret     string        `koanf:"admin_secret"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// ReportsPerMinute throttles report submissions per reporter.
	ReportsPerMinute int `koanf:"reports_per_minute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Path:       "/data/moodshare",
			GCInterval: 10 * time.Minute,
		},
		Sweep: SweepConfig{
			Interval: 30 * time.Second,
		},
		Hub: HubConfig{
			SubscriberBuffer: 256,
		},
		Security: SecurityConfig{
			AdminSecret:      "",
			RateLimitReqs:    200,
			RateLimitWindow:  15 * time.Minute,
			ReportsPerMinute: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that would misbehave at
// runtime. It is called by Load after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Sweep.Interval <= 0 {
		return fmt.Errorf("sweep.interval must be positive, got %s", c.Sweep.Interval)
	}
	if c.Hub.SubscriberBuffer < 1 {
		return fmt.Errorf("hub.subscriber_buffer must be at least 1, got %d", c.Hub.SubscriberBuffer)
	}
	if c.Storage.GCInterval <= 0 {
		return fmt.Errorf("storage.gc_interval must be positive, got %s", c.Storage.GCInterval)
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	return nil
}
