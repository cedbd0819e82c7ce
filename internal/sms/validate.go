// SPDX-License-Identifier: MIT

package sms

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Korean mobile numbers: 01X prefix followed by 7 or 8 digits.
var phonePattern = regexp.MustCompile(`^01[016789][0-9]{7,8}$`)

// Byte budgets in EUC-KR, the encoding the upstream API bills by.
const (
	MaxSMSBytes   = 90
	MaxLMSBytes   = 2000
	MaxTitleBytes = 40
)

var (
	ErrUnknownType      = errors.New("sms: unknown message type")
	ErrEmptyBody        = errors.New("sms: message body is required")
	ErrNoReceivers      = errors.New("sms: at least one receiver is required")
	ErrBodyTooLong      = errors.New("sms: message body exceeds byte budget")
	ErrTitleTooLong     = errors.New("sms: title exceeds byte budget")
	ErrBadSchedule      = errors.New("sms: invalid scheduled time")
	ErrNotRepresentable = errors.New("sms: text not representable in EUC-KR")
)

// InvalidReceiverError names the receiver that failed phone validation.
type InvalidReceiverError struct {
	Receiver string
}

func (e *InvalidReceiverError) Error() string {
	return fmt.Sprintf("sms: invalid receiver phone number %q", e.Receiver)
}

// ValidPhone reports whether s is an acceptable mobile number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// Validate checks the message against the upstream contract and normalizes
// it in place: receivers are deduplicated and long messages without a title
// get DefaultTitle. A message that passes Validate is always representable
// on the wire.
func (m *Message) Validate() error {
	if !m.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	if m.Body == "" {
		return ErrEmptyBody
	}

	m.Receivers = NormalizeReceivers(m.Receivers)
	if len(m.Receivers) == 0 {
		return ErrNoReceivers
	}
	if !m.Type.Multi() && len(m.Receivers) > 1 {
		return fmt.Errorf("sms: type %q accepts a single receiver, got %d", m.Type, len(m.Receivers))
	}
	for _, r := range m.Receivers {
		if !ValidPhone(r) {
			return &InvalidReceiverError{Receiver: r}
		}
	}

	if m.Type.Long() && m.Title == "" {
		m.Title = DefaultTitle
	}

	bodyBytes, err := EncodedLength(m.Body)
	if err != nil {
		return err
	}
	budget := MaxSMSBytes
	if m.Type.Long() {
		budget = MaxLMSBytes
	}
	if bodyBytes > budget {
		return fmt.Errorf("%w: %d > %d", ErrBodyTooLong, bodyBytes, budget)
	}

	if m.Title != "" {
		titleBytes, err := EncodedLength(m.Title)
		if err != nil {
			return err
		}
		if titleBytes > MaxTitleBytes {
			return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, titleBytes, MaxTitleBytes)
		}
	}

	if m.Scheduled == "" {
		m.Scheduled = ScheduleImmediate
	}
	if m.Scheduled != ScheduleImmediate {
		if _, err := time.Parse(ScheduleLayout, m.Scheduled); err != nil {
			return fmt.Errorf("%w: %q", ErrBadSchedule, m.Scheduled)
		}
	}

	return nil
}
