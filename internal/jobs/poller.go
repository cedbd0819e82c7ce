// SPDX-License-Identifier: MIT

// Package jobs hosts the background workers of the daemon. The only worker
// today is the result poller, which turns "sent" journal entries into
// "delivered" or "failed" by asking the upstream API for their outcome.
package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yunseo/gabiad/internal/gabia"
	"github.com/yunseo/gabiad/internal/log"
	"github.com/yunseo/gabiad/internal/metrics"
	"github.com/yunseo/gabiad/internal/store"
)

// batchLimit caps how many messages one poll cycle picks up.
const batchLimit = 100

// ResultLookup is the slice of the Gabia client the poller needs.
type ResultLookup interface {
	Result(ctx context.Context, key string) (gabia.Result, error)
}

// Journal is the slice of the message store the poller needs.
type Journal interface {
	ListByStatus(ctx context.Context, status string, cutoff time.Time, limit int) ([]store.Record, error)
	SetStatus(ctx context.Context, key, status, resultCode string) error
}

// Poller periodically resolves delivery results for sent messages.
type Poller struct {
	upstream    ResultLookup
	journal     Journal
	interval    time.Duration
	grace       time.Duration
	concurrency int
	reportPath  string // atomic JSON snapshot per cycle, "" disables
}

// Config wires a Poller.
type Config struct {
	Upstream    ResultLookup
	Journal     Journal
	Interval    time.Duration
	Grace       time.Duration // minimum age of a sent message before polling
	Concurrency int
	ReportPath  string
}

// New creates a result poller.
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Poller{
		upstream:    cfg.Upstream,
		journal:     cfg.Journal,
		interval:    cfg.Interval,
		grace:       cfg.Grace,
		concurrency: cfg.Concurrency,
		reportPath:  cfg.ReportPath,
	}
}

// Report is the per-cycle delivery snapshot written to the data dir.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Polled    int       `json:"polled"`
	Delivered int       `json:"delivered"`
	Failed    int       `json:"failed"`
	Errors    int       `json:"errors"`
}

// Run blocks until ctx is cancelled, polling once per interval.
func (p *Poller) Run(ctx context.Context) error {
	logger := log.WithComponent("jobs.poller")
	logger.Info().
		Str(log.FieldEvent, "poller.started").
		Dur("interval", p.interval).
		Msg("result poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str(log.FieldEvent, "poller.stopped").Msg("result poller stopped")
			return ctx.Err()
		case <-ticker.C:
			report := p.RunOnce(ctx)
			if p.reportPath != "" {
				p.writeReport(report, logger)
			}
		}
	}
}

// RunOnce performs a single poll cycle.
func (p *Poller) RunOnce(ctx context.Context) Report {
	logger := log.WithComponent("jobs.poller")
	report := Report{Timestamp: time.Now().UTC()}

	cutoff := time.Now().Add(-p.grace)
	recs, err := p.journal.ListByStatus(ctx, store.StatusSent, cutoff, batchLimit)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "poller.list_failed").Msg("failed to list sent messages")
		return report
	}

	report.Polled = len(recs)
	metrics.RecordPendingMessages(len(recs))
	if len(recs) == 0 {
		return report
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, rec := range recs {
		g.Go(func() error {
			pctx := log.ContextWithMessageKey(gctx, rec.Key)

			res, err := p.upstream.Result(pctx, rec.Key)
			if err != nil {
				metrics.IncResultPoll("error")
				logger := log.WithComponentFromContext(pctx, "jobs.poller")
				logger.Warn().
					Err(err).
					Str(log.FieldEvent, "poller.lookup_failed").
					Msg("result lookup failed, will retry next cycle")
				mu.Lock()
				report.Errors++
				mu.Unlock()
				return nil
			}

			status := store.StatusFailed
			outcome := "failed"
			if res.Success() {
				status = store.StatusDelivered
				outcome = "delivered"
			}
			if err := p.journal.SetStatus(pctx, rec.Key, status, res.Code); err != nil {
				logger := log.WithComponentFromContext(pctx, "jobs.poller")
				logger.Error().
					Err(err).
					Str(log.FieldEvent, "poller.journal_failed").
					Msg("failed to update journal")
				return nil
			}

			metrics.IncResultPoll(outcome)
			mu.Lock()
			if res.Success() {
				report.Delivered++
			} else {
				report.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return report
}

// writeReport atomically replaces the delivery report snapshot so readers
// never observe a partial file.
func (p *Poller) writeReport(report Report, logger zerolog.Logger) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "poller.report_failed").Msg("failed to encode report")
		return
	}
	if err := renameio.WriteFile(p.reportPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "poller.report_failed").Msg("failed to write report")
	}
}
