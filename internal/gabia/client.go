// SPDX-License-Identifier: MIT

// Package gabia implements the client side of the Gabia SMS XML-RPC API.
// Every operation is a call to the single "gabiasms" method carrying a
// request document authenticated with a per-request access token.
package gabia

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yunseo/gabiad/internal/log"
	"github.com/yunseo/gabiad/internal/metrics"
	"github.com/yunseo/gabiad/internal/sms"
)

// DefaultAPIURL is the production endpoint of the Gabia SMS API.
const DefaultAPIURL = "http://sms.gabia.com/api"

const maxResponseBytes = 1 << 20

// BeforeSendHook runs just before a message goes upstream.
type BeforeSendHook func(ctx context.Context, m *sms.Message)

// AfterSendHook runs after the upstream call, successful or not, with the
// upstream result when one was received.
type AfterSendHook func(ctx context.Context, m *sms.Message, res Result)

// Config carries the credentials and tuning knobs for the client.
type Config struct {
	APIURL string
	APIID  string
	APIKey string
	Sender string

	Timeout          time.Duration // per-request timeout, default 10s
	BreakerThreshold int           // failures before the circuit opens, default 5
	BreakerReset     time.Duration // open-state hold time, default 30s
	SendRate         rate.Limit    // outbound calls per second, 0 disables
	SendBurst        int
}

// Client talks to the Gabia SMS API.
type Client struct {
	apiURL  string
	apiID   string
	apiKey  string
	sender  string
	http    *http.Client
	breaker *CircuitBreaker
	limiter *rate.Limiter
	nonce   func() string

	beforeSend []BeforeSendHook
	afterSend  []AfterSendHook
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBeforeSend registers a hook that runs before every send.
func WithBeforeSend(h BeforeSendHook) Option {
	return func(c *Client) { c.beforeSend = append(c.beforeSend, h) }
}

// WithAfterSend registers a hook that runs after every send.
func WithAfterSend(h AfterSendHook) Option {
	return func(c *Client) { c.afterSend = append(c.afterSend, h) }
}

// WithNonceFunc overrides nonce generation, used by token tests.
func WithNonceFunc(fn func() string) Option {
	return func(c *Client) { c.nonce = fn }
}

// New creates a Gabia API client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerReset <= 0 {
		cfg.BreakerReset = 30 * time.Second
	}

	c := &Client{
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		apiID:   cfg.APIID,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerReset),
		nonce:   sms.Nonce,
	}
	if cfg.SendRate > 0 {
		burst := cfg.SendBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.SendRate, burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sender returns the configured sender number.
func (c *Client) Sender() string {
	return c.sender
}

// BreakerOpen reports whether the circuit breaker is currently open, used by
// the upstream health checker.
func (c *Client) BreakerOpen() bool {
	return c.breaker.State() == StateOpen
}

// accessToken derives the per-request token: nonce + md5hex(nonce + apiKey).
func (c *Client) accessToken() string {
	nonce := c.nonce()
	sum := md5.Sum([]byte(nonce + c.apiKey))
	return nonce + hex.EncodeToString(sum[:])
}

// Send submits a validated message and returns the upstream result. A
// non-success result code is returned alongside an ErrRejected-wrapping
// error so callers can both branch on errors.Is and journal the code.
func (c *Client) Send(ctx context.Context, m *sms.Message) (Result, error) {
	logger := log.WithComponentFromContext(ctx, "gabia")

	for _, h := range c.beforeSend {
		h(ctx, m)
	}

	doc := sendDocument(c.apiID, c.accessToken(), sendParams{
		smsType:   string(m.Type.Wire()),
		key:       m.Key,
		title:     sms.EscapeXML(m.Title),
		message:   sms.EscapeXML(m.Body),
		sender:    c.sender,
		receiver:  strings.Join(m.Receivers, ","),
		scheduled: m.Scheduled,
	})

	res, err := c.call(ctx, "send", doc)

	for _, h := range c.afterSend {
		h(ctx, m, res)
	}

	if err != nil {
		metrics.IncSend(string(m.Type), "error")
		return res, err
	}
	if !res.Success() {
		metrics.IncSend(string(m.Type), "rejected")
		logger.Warn().
			Str(log.FieldEvent, "send.rejected").
			Str(log.FieldMessageKey, m.Key).
			Str(log.FieldCode, res.Code).
			Msg("upstream rejected message")
		return res, &APIError{
			Sentinel:  ErrRejected,
			Operation: "send",
			Code:      res.Code,
			Body:      res.Message,
		}
	}

	metrics.IncSend(string(m.Type), "success")
	logger.Debug().
		Str(log.FieldEvent, "send.accepted").
		Str(log.FieldMessageKey, m.Key).
		Str(log.FieldSMSType, string(m.Type)).
		Msg("message accepted by upstream")
	return res, nil
}

// Result looks up the delivery result for a previously sent key.
func (c *Client) Result(ctx context.Context, key string) (Result, error) {
	doc := resultDocument(c.apiID, c.accessToken(), key)
	return c.call(ctx, "result", doc)
}

// call performs one throttled, breaker-guarded XML-RPC round trip and
// parses the inner response document.
func (c *Client) call(ctx context.Context, operation, document string) (Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{}, &APIError{Sentinel: ErrTimeout, Operation: operation, Err: err}
		}
	}

	var res Result
	err := c.breaker.Execute(func() error {
		start := time.Now()
		r, err := c.roundTrip(ctx, operation, document)
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.ObserveUpstream(operation, outcome, time.Since(start).Seconds())
		res = r
		return err
	})
	if errors.Is(err, ErrCircuitOpen) {
		return Result{}, &APIError{Sentinel: ErrCircuitOpen, Operation: operation}
	}
	return res, err
}

func (c *Client) roundTrip(ctx context.Context, operation, document string) (Result, error) {
	payload, err := encodeCall(document)
	if err != nil {
		return Result{}, &APIError{Sentinel: ErrBadResponse, Operation: operation, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, &APIError{Sentinel: ErrUnavailable, Operation: operation, Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &APIError{Sentinel: classifyTransport(err), Operation: operation, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &APIError{Sentinel: ErrUnavailable, Operation: operation, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, &APIError{
			Sentinel:  ErrUnavailable,
			Operation: operation,
			Body:      truncate(string(body), 256),
			Err:       errors.New(resp.Status),
		}
	}

	inner, err := decodeResponse(body)
	if err != nil {
		return Result{}, &APIError{
			Sentinel:  ErrBadResponse,
			Operation: operation,
			Body:      truncate(string(body), 256),
			Err:       err,
		}
	}

	res, err := parseResult(inner)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return Result{}, err
		}
		return Result{}, &APIError{
			Sentinel:  ErrBadResponse,
			Operation: operation,
			Body:      truncate(inner, 256),
			Err:       err,
		}
	}
	return res, nil
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrUnavailable
}
