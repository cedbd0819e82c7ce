// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GABIAD_API_ID", "someid")
	t.Setenv("GABIAD_API_KEY", "secret-key")
	t.Setenv("GABIAD_SENDER", "0212345678")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := defaults("v1.2.3")
	want.APIID = "someid"
	want.APIKey = "secret-key"
	want.Sender = "0212345678"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GABIAD_LISTEN", ":9090")
	t.Setenv("GABIAD_UPSTREAM_TIMEOUT", "3s")
	t.Setenv("GABIAD_SEND_RATE", "2.5")
	t.Setenv("GABIAD_LOG_LEVEL", "debug")
	t.Setenv("GABIAD_POLL_CONCURRENCY", "8")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2.5, cfg.SendRate)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.PollConcurrency)
}

func TestLoadDataDirMovesDBPath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GABIAD_DATA_DIR", "/tmp/gabiad-test")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gabiad-test", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/gabiad-test", "messages.db"), cfg.DBPath)
}

func TestLoadExplicitDBPathWins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GABIAD_DATA_DIR", "/tmp/gabiad-test")
	t.Setenv("GABIAD_DB_PATH", "/elsewhere/journal.db")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)

	assert.Equal(t, "/elsewhere/journal.db", cfg.DBPath)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `
listen: ":7070"
log_level: warn
upstream_timeout: 5s
send_rate: 1.5
data_dir: /srv/gabiad
`)

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 1.5, cfg.SendRate)
	assert.Equal(t, "/srv/gabiad", cfg.DataDir)
	// DBPath follows the relocated data dir.
	assert.Equal(t, filepath.Join("/srv/gabiad", "messages.db"), cfg.DBPath)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GABIAD_LISTEN", ":9999")
	path := writeConfigFile(t, `listen: ":7070"`)

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
}

func TestLoadFileUnknownFieldRejected(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `listne: ":7070"`)

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestLoadFileMissing(t *testing.T) {
	setRequiredEnv(t)
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "test").Load()
	require.Error(t, err)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, "")

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}

func TestLoadMissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		skip string
		want string
	}{
		{"api id", "GABIAD_API_ID", "GABIAD_API_ID"},
		{"api key", "GABIAD_API_KEY", "GABIAD_API_KEY"},
		{"sender", "GABIAD_SENDER", "GABIAD_SENDER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.skip, "")

			_, err := NewLoader("", "test").Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingSetting)

			var missing *MissingSettingError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.want, missing.Key)
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() AppConfig {
		cfg := defaults("test")
		cfg.APIID = "someid"
		cfg.APIKey = "secret"
		cfg.Sender = "0212345678"
		return cfg
	}

	t.Run("bad api url", func(t *testing.T) {
		cfg := base()
		cfg.APIURL = "not a url"
		assert.Error(t, Validate(cfg))
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := base()
		cfg.LogLevel = "chatty"
		assert.Error(t, Validate(cfg))
	})

	t.Run("zero timeout", func(t *testing.T) {
		cfg := base()
		cfg.UpstreamTimeout = 0
		assert.Error(t, Validate(cfg))
	})

	t.Run("negative send rate", func(t *testing.T) {
		cfg := base()
		cfg.SendRate = -1
		assert.Error(t, Validate(cfg))
	})

	t.Run("zero poll concurrency", func(t *testing.T) {
		cfg := base()
		cfg.PollConcurrency = 0
		assert.Error(t, Validate(cfg))
	})

	t.Run("valid passes", func(t *testing.T) {
		assert.NoError(t, Validate(base()))
	})
}
