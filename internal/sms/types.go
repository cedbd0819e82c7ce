// SPDX-License-Identifier: MIT

// Package sms defines the message domain for the Gabia gateway: message
// types, receiver validation and the byte accounting rules that decide
// whether a body fits a short or long message.
package sms

import (
	"strconv"
	"sync"
	"time"
)

// Type identifies the Gabia message class.
type Type string

const (
	TypeSMS      Type = "sms"
	TypeLMS      Type = "lms"
	TypeMultiSMS Type = "multi_sms"
	TypeMultiLMS Type = "multi_lms"
)

// Known reports whether t is one of the four supported message classes.
func (t Type) Known() bool {
	switch t {
	case TypeSMS, TypeLMS, TypeMultiSMS, TypeMultiLMS:
		return true
	}
	return false
}

// Multi reports whether t addresses multiple receivers.
func (t Type) Multi() bool {
	return t == TypeMultiSMS || t == TypeMultiLMS
}

// Long reports whether t is billed as an LMS.
func (t Type) Long() bool {
	return t == TypeLMS || t == TypeMultiLMS
}

// Wire returns the type string the upstream API expects. Multi types degrade
// to their single form ("multi_sms" -> "sms") with comma-joined receivers.
func (t Type) Wire() Type {
	switch t {
	case TypeMultiSMS:
		return TypeSMS
	case TypeMultiLMS:
		return TypeLMS
	}
	return t
}

// DefaultTitle is used for long messages when the caller supplies none.
const DefaultTitle = "SEND"

// ScheduleImmediate requests immediate dispatch.
const ScheduleImmediate = "0"

// ScheduleLayout is the accepted layout for deferred dispatch times.
const ScheduleLayout = "2006-01-02 15:04:05"

// Message is a validated send request on its way to the upstream API.
type Message struct {
	Key       string
	Type      Type
	Title     string
	Body      string
	Receivers []string
	// Scheduled is either ScheduleImmediate or a ScheduleLayout timestamp.
	Scheduled string
}

var (
	keyMu   sync.Mutex
	lastKey int64
)

// NewKey returns a unique, sortable message key. Keys are unix nanoseconds;
// the guard keeps them strictly increasing within one process so two sends
// in the same tick cannot collide.
func NewKey() string {
	keyMu.Lock()
	defer keyMu.Unlock()

	now := time.Now().UnixNano()
	if now <= lastKey {
		now = lastKey + 1
	}
	lastKey = now
	return strconv.FormatInt(now, 10)
}

// NormalizeReceivers removes duplicates while preserving first-seen order.
func NormalizeReceivers(receivers []string) []string {
	seen := make(map[string]struct{}, len(receivers))
	out := make([]string, 0, len(receivers))
	for _, r := range receivers {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
