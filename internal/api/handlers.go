// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yunseo/gabiad/internal/gabia"
	"github.com/yunseo/gabiad/internal/log"
	"github.com/yunseo/gabiad/internal/sms"
	"github.com/yunseo/gabiad/internal/store"
)

// SendRequest is the JSON body of POST /api/v1/messages.
type SendRequest struct {
	Type      string   `json:"type"`
	Title     string   `json:"title,omitempty"`
	Message   string   `json:"message"`
	Receivers []string `json:"receivers"`
	Scheduled string   `json:"scheduled_time,omitempty"`
}

// SendResponse is returned once the upstream accepted the message.
type SendResponse struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Code   string `json:"code"`
}

// MessageResponse mirrors one journal record.
type MessageResponse struct {
	Key        string    `json:"key"`
	Type       string    `json:"type"`
	Sender     string    `json:"sender"`
	Receivers  []string  `json:"receivers"`
	Title      string    `json:"title,omitempty"`
	Scheduled  string    `json:"scheduled_time"`
	Status     string    `json:"status"`
	ResultCode string    `json:"result_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func messageResponse(rec store.Record) MessageResponse {
	return MessageResponse{
		Key:        rec.Key,
		Type:       rec.Type,
		Sender:     rec.Sender,
		Receivers:  rec.Receivers,
		Title:      rec.Title,
		Scheduled:  rec.Scheduled,
		Status:     rec.Status,
		ResultCode: rec.ResultCode,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

// handleSend implements POST /api/v1/messages.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, errInvalidRequest, "malformed JSON body")
		return
	}

	msg := &sms.Message{
		Key:       sms.NewKey(),
		Type:      sms.Type(req.Type),
		Title:     req.Title,
		Body:      req.Message,
		Receivers: req.Receivers,
		Scheduled: req.Scheduled,
	}
	if err := msg.Validate(); err != nil {
		respondError(w, r, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}

	ctx := log.ContextWithMessageKey(r.Context(), msg.Key)

	rec := store.Record{
		Key:       msg.Key,
		Type:      string(msg.Type),
		Sender:    s.cfg.Sender,
		Receivers: msg.Receivers,
		Title:     msg.Title,
		Body:      msg.Body,
		Scheduled: msg.Scheduled,
	}
	if err := s.journal.Insert(ctx, rec); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "send.journal_failed").Msg("failed to journal message")
		respondError(w, r, http.StatusInternalServerError, errInternal, "failed to journal message")
		return
	}

	res, err := s.upstream.Send(ctx, msg)
	if err != nil {
		s.failSend(ctx, w, r, msg.Key, res, err)
		return
	}

	if err := s.journal.SetStatus(ctx, msg.Key, store.StatusSent, res.Code); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "send.journal_failed").Msg("failed to update journal")
	}

	respondJSON(w, r, http.StatusAccepted, SendResponse{
		Key:    msg.Key,
		Status: store.StatusSent,
		Code:   res.Code,
	})
}

// failSend journals the failure and maps the upstream error to a status code.
func (s *Server) failSend(ctx context.Context, w http.ResponseWriter, r *http.Request, key string, res gabia.Result, err error) {
	logger := log.WithComponentFromContext(ctx, "api")

	if jerr := s.journal.SetStatus(ctx, key, store.StatusFailed, res.Code); jerr != nil {
		logger.Error().Err(jerr).Str(log.FieldEvent, "send.journal_failed").Msg("failed to update journal")
	}

	switch {
	case errors.Is(err, gabia.ErrRejected):
		respondErrorCode(w, r, http.StatusBadGateway, errUpstreamRejected, "upstream rejected message", res.Code)
	case errors.Is(err, gabia.ErrCircuitOpen):
		respondError(w, r, http.StatusServiceUnavailable, errUpstreamUnavailable, "upstream temporarily unavailable")
	case errors.Is(err, gabia.ErrTimeout), errors.Is(err, gabia.ErrUnavailable):
		respondError(w, r, http.StatusBadGateway, errUpstreamUnavailable, "upstream unreachable")
	default:
		logger.Error().Err(err).Str(log.FieldEvent, "send.failed").Msg("send failed")
		respondError(w, r, http.StatusInternalServerError, errInternal, "send failed")
	}
}

// handleGet implements GET /api/v1/messages/{key}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	rec, err := s.journal.Get(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, errNotFound, "unknown message key")
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, errInternal, "journal lookup failed")
		return
	}

	respondJSON(w, r, http.StatusOK, messageResponse(rec))
}

// handleResult implements POST /api/v1/messages/{key}/result: an immediate
// upstream result lookup, bypassing the poller.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	ctx := log.ContextWithMessageKey(r.Context(), key)
	logger := log.WithComponentFromContext(ctx, "api")

	if _, err := s.journal.Get(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, errNotFound, "unknown message key")
			return
		}
		respondError(w, r, http.StatusInternalServerError, errInternal, "journal lookup failed")
		return
	}

	res, err := s.upstream.Result(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, gabia.ErrCircuitOpen):
			respondError(w, r, http.StatusServiceUnavailable, errUpstreamUnavailable, "upstream temporarily unavailable")
		case errors.Is(err, gabia.ErrTimeout), errors.Is(err, gabia.ErrUnavailable), errors.Is(err, gabia.ErrBadResponse):
			respondError(w, r, http.StatusBadGateway, errUpstreamUnavailable, "result lookup failed")
		default:
			logger.Error().Err(err).Str(log.FieldEvent, "result.failed").Msg("result lookup failed")
			respondError(w, r, http.StatusInternalServerError, errInternal, "result lookup failed")
		}
		return
	}

	status := store.StatusFailed
	if res.Success() {
		status = store.StatusDelivered
	}
	if err := s.journal.SetStatus(ctx, key, status, res.Code); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "result.journal_failed").Msg("failed to update journal")
	}

	respondJSON(w, r, http.StatusOK, SendResponse{
		Key:    key,
		Status: status,
		Code:   res.Code,
	})
}
