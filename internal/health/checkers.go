// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"time"
)

// Pinger is satisfied by the message journal.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker verifies the message journal answers within a short deadline.
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker creates a checker for the message journal.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string { return "store" }

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "journal reachable",
	}
}

// UpstreamChecker reports the circuit breaker view of the Gabia API. An open
// breaker degrades readiness but does not fail it: queued messages are still
// accepted and retried once the upstream recovers.
type UpstreamChecker struct {
	breakerOpen func() bool
}

// NewUpstreamChecker creates a checker backed by the client's breaker state.
func NewUpstreamChecker(breakerOpen func() bool) *UpstreamChecker {
	return &UpstreamChecker{breakerOpen: breakerOpen}
}

func (c *UpstreamChecker) Name() string { return "upstream" }

func (c *UpstreamChecker) Check(ctx context.Context) CheckResult {
	if c.breakerOpen() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "circuit breaker open, upstream failing",
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "circuit breaker closed",
	}
}
