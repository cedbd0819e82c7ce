// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID  = "request_id"
	FieldMessageKey = "message_key"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Message fields
	FieldSMSType = "sms_type"
	FieldCode    = "code"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
