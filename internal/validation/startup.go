// SPDX-License-Identifier: MIT

// Package validation performs fail-fast startup checks so misconfiguration
// surfaces before the daemon accepts traffic.
package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yunseo/gabiad/internal/config"
	"github.com/yunseo/gabiad/internal/log"
)

// PerformStartupChecks verifies the environment the configuration points at.
// Config value validation already happened in the loader; this covers what
// only the running host can answer.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup")

	if err := ensureWritableDir(cfg.DataDir); err != nil {
		return fmt.Errorf("data dir %s: %w", cfg.DataDir, err)
	}

	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != cfg.DataDir {
		if err := ensureWritableDir(dbDir); err != nil {
			return fmt.Errorf("db dir %s: %w", dbDir, err)
		}
	}

	logger.Info().
		Str(log.FieldEvent, "startup.checks_passed").
		Str("data_dir", cfg.DataDir).
		Str("db_path", cfg.DBPath).
		Msg("startup checks passed")
	return nil
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
