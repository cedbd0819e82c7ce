// SPDX-License-Identifier: MIT

// Package config loads gabiad configuration with precedence
// ENV > file > defaults.
package config

import (
	"path/filepath"
	"time"
)

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	// Upstream credentials. All three are required; the daemon refuses to
	// start without them.
	APIID  string
	APIKey string
	Sender string
	APIURL string

	// HTTP surface
	Listen   string
	APIToken string

	// Storage
	DataDir string
	DBPath  string

	// Logging
	LogLevel string
	Version  string

	// Upstream tuning
	UpstreamTimeout  time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
	SendRate         float64 // outbound upstream calls per second, 0 disables
	SendBurst        int

	// Result poller
	PollInterval    time.Duration
	PollGrace       time.Duration
	PollConcurrency int

	// HTTP rate limits (requests per minute per IP)
	SendLimitPerMin int
	APILimitPerMin  int
}

// FileConfig mirrors AppConfig for YAML decoding. Pointer fields distinguish
// "absent" from zero values during the merge.
type FileConfig struct {
	APIID  *string `yaml:"api_id"`
	APIKey *string `yaml:"api_key"`
	Sender *string `yaml:"sender"`
	APIURL *string `yaml:"api_url"`

	Listen   *string `yaml:"listen"`
	APIToken *string `yaml:"api_token"`

	DataDir *string `yaml:"data_dir"`
	DBPath  *string `yaml:"db_path"`

	LogLevel *string `yaml:"log_level"`

	UpstreamTimeout  *time.Duration `yaml:"upstream_timeout"`
	BreakerThreshold *int           `yaml:"breaker_threshold"`
	BreakerReset     *time.Duration `yaml:"breaker_reset"`
	SendRate         *float64       `yaml:"send_rate"`
	SendBurst        *int           `yaml:"send_burst"`

	PollInterval    *time.Duration `yaml:"poll_interval"`
	PollGrace       *time.Duration `yaml:"poll_grace"`
	PollConcurrency *int           `yaml:"poll_concurrency"`

	SendLimitPerMin *int `yaml:"send_limit_per_min"`
	APILimitPerMin  *int `yaml:"api_limit_per_min"`
}

func defaults(version string) AppConfig {
	dataDir := "/var/lib/gabiad"
	return AppConfig{
		APIURL:  "http://sms.gabia.com/api",
		Listen:  ":8080",
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "messages.db"),

		LogLevel: "info",
		Version:  version,

		UpstreamTimeout:  10 * time.Second,
		BreakerThreshold: 5,
		BreakerReset:     30 * time.Second,

		SendBurst: 1,

		PollInterval:    time.Minute,
		PollGrace:       15 * time.Second,
		PollConcurrency: 4,

		SendLimitPerMin: 60,
		APILimitPerMin:  600,
	}
}
