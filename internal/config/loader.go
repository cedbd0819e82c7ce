// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader. configPath may be empty, in
// which case only environment and defaults apply.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
	}
}

// Load resolves the configuration: defaults first, then the YAML file (if
// any), then environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults(l.version)

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFile(&cfg, fileCfg)
	}

	l.applyEnv(&cfg)

	// DBPath follows DataDir unless set explicitly.
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "messages.db")
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fileCfg, nil
}

func mergeFile(cfg *AppConfig, f *FileConfig) {
	if f == nil {
		return
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&cfg.APIID, f.APIID)
	setString(&cfg.APIKey, f.APIKey)
	setString(&cfg.Sender, f.Sender)
	setString(&cfg.APIURL, f.APIURL)
	setString(&cfg.Listen, f.Listen)
	setString(&cfg.APIToken, f.APIToken)
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.LogLevel, f.LogLevel)
	if f.DBPath != nil {
		cfg.DBPath = *f.DBPath
	} else if f.DataDir != nil {
		// DataDir moved without an explicit DBPath: recompute below.
		cfg.DBPath = ""
	}

	if f.UpstreamTimeout != nil {
		cfg.UpstreamTimeout = *f.UpstreamTimeout
	}
	if f.BreakerThreshold != nil {
		cfg.BreakerThreshold = *f.BreakerThreshold
	}
	if f.BreakerReset != nil {
		cfg.BreakerReset = *f.BreakerReset
	}
	if f.SendRate != nil {
		cfg.SendRate = *f.SendRate
	}
	if f.SendBurst != nil {
		cfg.SendBurst = *f.SendBurst
	}
	if f.PollInterval != nil {
		cfg.PollInterval = *f.PollInterval
	}
	if f.PollGrace != nil {
		cfg.PollGrace = *f.PollGrace
	}
	if f.PollConcurrency != nil {
		cfg.PollConcurrency = *f.PollConcurrency
	}
	if f.SendLimitPerMin != nil {
		cfg.SendLimitPerMin = *f.SendLimitPerMin
	}
	if f.APILimitPerMin != nil {
		cfg.APILimitPerMin = *f.APILimitPerMin
	}
}

func (l *Loader) applyEnv(cfg *AppConfig) {
	cfg.APIID = ParseString("GABIAD_API_ID", cfg.APIID)
	cfg.APIKey = ParseString("GABIAD_API_KEY", cfg.APIKey)
	cfg.Sender = ParseString("GABIAD_SENDER", cfg.Sender)
	cfg.APIURL = ParseString("GABIAD_API_URL", cfg.APIURL)

	cfg.Listen = ParseString("GABIAD_LISTEN", cfg.Listen)
	cfg.APIToken = ParseString("GABIAD_API_TOKEN", cfg.APIToken)

	dataDirBefore := cfg.DataDir
	cfg.DataDir = ParseString("GABIAD_DATA_DIR", cfg.DataDir)
	if cfg.DataDir != dataDirBefore {
		cfg.DBPath = ""
	}
	cfg.DBPath = ParseString("GABIAD_DB_PATH", cfg.DBPath)

	cfg.LogLevel = ParseString("GABIAD_LOG_LEVEL", cfg.LogLevel)

	cfg.UpstreamTimeout = ParseDuration("GABIAD_UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.BreakerThreshold = ParseInt("GABIAD_BREAKER_THRESHOLD", cfg.BreakerThreshold)
	cfg.BreakerReset = ParseDuration("GABIAD_BREAKER_RESET", cfg.BreakerReset)
	cfg.SendRate = ParseFloat("GABIAD_SEND_RATE", cfg.SendRate)
	cfg.SendBurst = ParseInt("GABIAD_SEND_BURST", cfg.SendBurst)

	cfg.PollInterval = ParseDuration("GABIAD_POLL_INTERVAL", cfg.PollInterval)
	cfg.PollGrace = ParseDuration("GABIAD_POLL_GRACE", cfg.PollGrace)
	cfg.PollConcurrency = ParseInt("GABIAD_POLL_CONCURRENCY", cfg.PollConcurrency)

	cfg.SendLimitPerMin = ParseInt("GABIAD_SEND_LIMIT_PER_MIN", cfg.SendLimitPerMin)
	cfg.APILimitPerMin = ParseInt("GABIAD_API_LIMIT_PER_MIN", cfg.APILimitPerMin)
}
