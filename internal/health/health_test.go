// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name   string
	result CheckResult
}

func (c staticChecker) Name() string                           { return c.name }
func (c staticChecker) Check(ctx context.Context) CheckResult { return c.result }

func TestHealthWithoutCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	resp := m.Health(context.Background(), false)

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Nil(t, resp.Checks)
}

func TestHealthVerboseIncludesChecks(t *testing.T) {
	m := NewManager("test")
	m.RegisterChecker(staticChecker{name: "store", result: CheckResult{Status: StatusHealthy}})
	m.RegisterChecker(staticChecker{name: "upstream", result: CheckResult{Status: StatusDegraded}})

	resp := m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadyAggregation(t *testing.T) {
	tests := []struct {
		name       string
		results    []CheckResult
		wantReady  bool
		wantStatus Status
	}{
		{"all healthy", []CheckResult{{Status: StatusHealthy}}, true, StatusHealthy},
		{"degraded stays ready", []CheckResult{{Status: StatusHealthy}, {Status: StatusDegraded}}, true, StatusDegraded},
		{"unhealthy not ready", []CheckResult{{Status: StatusHealthy}, {Status: StatusUnhealthy}}, false, StatusUnhealthy},
		{"unhealthy beats degraded", []CheckResult{{Status: StatusUnhealthy}, {Status: StatusDegraded}}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("test")
			for i, res := range tt.results {
				m.RegisterChecker(staticChecker{name: string(rune('a' + i)), result: res})
			}

			resp := m.Ready(context.Background())
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestServeHealthAlways200(t *testing.T) {
	m := NewManager("test")
	m.RegisterChecker(staticChecker{name: "store", result: CheckResult{Status: StatusUnhealthy, Error: "down"}})

	rr := httptest.NewRecorder()
	m.ServeHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady503WhenUnhealthy(t *testing.T) {
	m := NewManager("test")
	m.RegisterChecker(staticChecker{name: "store", result: CheckResult{Status: StatusUnhealthy, Error: "down"}})

	rr := httptest.NewRecorder()
	m.ServeReady(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestStoreChecker(t *testing.T) {
	healthy := NewStoreChecker(fakePinger{})
	assert.Equal(t, StatusHealthy, healthy.Check(context.Background()).Status)

	broken := NewStoreChecker(fakePinger{err: errors.New("locked")})
	res := broken.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "locked", res.Error)
}

func TestUpstreamChecker(t *testing.T) {
	open := false
	c := NewUpstreamChecker(func() bool { return open })

	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	open = true
	assert.Equal(t, StatusDegraded, c.Check(context.Background()).Status)
}
