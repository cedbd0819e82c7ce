// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/yunseo/gabiad/internal/metrics"
)

// ErrMissingSetting marks a required credential that was not provided.
var ErrMissingSetting = errors.New("config: required setting missing")

// MissingSettingError names the setting so operators see exactly which
// environment variable to set.
type MissingSettingError struct {
	Key string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("config: %s is required", e.Key)
}

func (e *MissingSettingError) Unwrap() error {
	return ErrMissingSetting
}

// Validate checks the resolved configuration. Credential checks mirror the
// upstream contract: API ID, API key and sender must all be present.
func Validate(cfg AppConfig) error {
	required := []struct {
		key   string
		value string
	}{
		{"GABIAD_API_ID", cfg.APIID},
		{"GABIAD_API_KEY", cfg.APIKey},
		{"GABIAD_SENDER", cfg.Sender},
	}
	for _, r := range required {
		if r.value == "" {
			metrics.IncConfigValidationError()
			return &MissingSettingError{Key: r.key}
		}
	}

	if cfg.Listen == "" {
		metrics.IncConfigValidationError()
		return errors.New("config: listen address is required")
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		metrics.IncConfigValidationError()
		return fmt.Errorf("config: invalid api_url %q", cfg.APIURL)
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		metrics.IncConfigValidationError()
		return fmt.Errorf("config: invalid log_level %q", cfg.LogLevel)
	}

	if cfg.UpstreamTimeout <= 0 {
		metrics.IncConfigValidationError()
		return errors.New("config: upstream_timeout must be positive")
	}
	if cfg.PollInterval <= 0 {
		metrics.IncConfigValidationError()
		return errors.New("config: poll_interval must be positive")
	}
	if cfg.PollConcurrency <= 0 {
		metrics.IncConfigValidationError()
		return errors.New("config: poll_concurrency must be positive")
	}
	if cfg.SendRate < 0 {
		metrics.IncConfigValidationError()
		return errors.New("config: send_rate must not be negative")
	}

	return nil
}
