// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of the gateway.
package api

import (
	"context"

	"github.com/yunseo/gabiad/internal/config"
	"github.com/yunseo/gabiad/internal/gabia"
	"github.com/yunseo/gabiad/internal/health"
	"github.com/yunseo/gabiad/internal/sms"
	"github.com/yunseo/gabiad/internal/store"
)

// Upstream is the slice of the Gabia client the handlers need. Tests stub it.
type Upstream interface {
	Send(ctx context.Context, m *sms.Message) (gabia.Result, error)
	Result(ctx context.Context, key string) (gabia.Result, error)
}

// Journal is the slice of the message store the handlers need.
type Journal interface {
	Insert(ctx context.Context, rec store.Record) error
	SetStatus(ctx context.Context, key, status, resultCode string) error
	Get(ctx context.Context, key string) (store.Record, error)
}

// Server wires handlers, upstream client and journal together.
type Server struct {
	cfg      config.AppConfig
	upstream Upstream
	journal  Journal
	health   *health.Manager
}

// New creates the API server.
func New(cfg config.AppConfig, upstream Upstream, journal Journal, healthMgr *health.Manager) *Server {
	return &Server{
		cfg:      cfg,
		upstream: upstream,
		journal:  journal,
		health:   healthMgr,
	}
}
