// SPDX-License-Identifier: MIT

package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo/gabiad/internal/config"
)

func TestPerformStartupChecksCreatesDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.AppConfig{
		DataDir: filepath.Join(base, "data"),
		DBPath:  filepath.Join(base, "data", "messages.db"),
	}

	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPerformStartupChecksSeparateDBDir(t *testing.T) {
	base := t.TempDir()
	cfg := config.AppConfig{
		DataDir: filepath.Join(base, "data"),
		DBPath:  filepath.Join(base, "db", "messages.db"),
	}

	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	info, err := os.Stat(filepath.Join(base, "db"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPerformStartupChecksUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	base := t.TempDir()
	locked := filepath.Join(base, "locked")
	require.NoError(t, os.Mkdir(locked, 0o500))

	cfg := config.AppConfig{
		DataDir: locked,
		DBPath:  filepath.Join(locked, "messages.db"),
	}
	assert.Error(t, PerformStartupChecks(context.Background(), cfg))
}
