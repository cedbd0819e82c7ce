// SPDX-License-Identifier: MIT

package sms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"mobile 010 8 digits", "01012345678", true},
		{"mobile 010 7 digits", "0101234567", true},
		{"mobile 011", "01112345678", true},
		{"mobile 016", "01612345678", true},
		{"mobile 019", "01912345678", true},
		{"landline", "0212345678", false},
		{"bad prefix 012", "01212345678", false},
		{"too short", "010123456", false},
		{"too long", "010123456789", false},
		{"letters", "0101234567a", false},
		{"empty", "", false},
		{"embedded number", "x01012345678x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	m := &Message{Type: "mms", Body: "hi", Receivers: []string{"01012345678"}}
	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestValidateRequiredFields(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		m := &Message{Type: TypeSMS, Receivers: []string{"01012345678"}}
		assert.ErrorIs(t, m.Validate(), ErrEmptyBody)
	})

	t.Run("no receivers", func(t *testing.T) {
		m := &Message{Type: TypeSMS, Body: "hi"}
		assert.ErrorIs(t, m.Validate(), ErrNoReceivers)
	})

	t.Run("invalid receiver", func(t *testing.T) {
		m := &Message{Type: TypeSMS, Body: "hi", Receivers: []string{"12345"}}
		err := m.Validate()
		require.Error(t, err)
		var invalid *InvalidReceiverError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "12345", invalid.Receiver)
	})
}

func TestValidateSingleTypeRejectsMultipleReceivers(t *testing.T) {
	m := &Message{
		Type:      TypeSMS,
		Body:      "hi",
		Receivers: []string{"01012345678", "01087654321"},
	}
	require.Error(t, m.Validate())
}

func TestValidateMultiDeduplicatesReceivers(t *testing.T) {
	m := &Message{
		Type:      TypeMultiSMS,
		Body:      "hi",
		Receivers: []string{"01012345678", "01087654321", "01012345678"},
	}
	require.NoError(t, m.Validate())
	assert.Equal(t, []string{"01012345678", "01087654321"}, m.Receivers)
}

func TestValidateByteBudgets(t *testing.T) {
	t.Run("ascii fits sms", func(t *testing.T) {
		m := &Message{Type: TypeSMS, Body: strings.Repeat("a", MaxSMSBytes), Receivers: []string{"01012345678"}}
		assert.NoError(t, m.Validate())
	})

	t.Run("ascii over sms budget", func(t *testing.T) {
		m := &Message{Type: TypeSMS, Body: strings.Repeat("a", MaxSMSBytes+1), Receivers: []string{"01012345678"}}
		assert.ErrorIs(t, m.Validate(), ErrBodyTooLong)
	})

	t.Run("hangul counts two bytes per syllable", func(t *testing.T) {
		// 46 syllables = 92 EUC-KR bytes, over the 90-byte SMS budget.
		m := &Message{Type: TypeSMS, Body: strings.Repeat("가", 46), Receivers: []string{"01012345678"}}
		assert.ErrorIs(t, m.Validate(), ErrBodyTooLong)

		// 45 syllables = 90 bytes, exactly at the budget.
		m = &Message{Type: TypeSMS, Body: strings.Repeat("가", 45), Receivers: []string{"01012345678"}}
		assert.NoError(t, m.Validate())
	})

	t.Run("long body allowed as lms", func(t *testing.T) {
		m := &Message{Type: TypeLMS, Body: strings.Repeat("a", MaxSMSBytes+1), Receivers: []string{"01012345678"}}
		assert.NoError(t, m.Validate())
	})

	t.Run("lms budget enforced", func(t *testing.T) {
		m := &Message{Type: TypeLMS, Body: strings.Repeat("a", MaxLMSBytes+1), Receivers: []string{"01012345678"}}
		assert.ErrorIs(t, m.Validate(), ErrBodyTooLong)
	})

	t.Run("title budget enforced", func(t *testing.T) {
		m := &Message{
			Type:      TypeLMS,
			Title:     strings.Repeat("t", MaxTitleBytes+1),
			Body:      "hi",
			Receivers: []string{"01012345678"},
		}
		assert.ErrorIs(t, m.Validate(), ErrTitleTooLong)
	})
}

func TestValidateDefaultsTitleForLongMessages(t *testing.T) {
	m := &Message{Type: TypeLMS, Body: "hi", Receivers: []string{"01012345678"}}
	require.NoError(t, m.Validate())
	assert.Equal(t, DefaultTitle, m.Title)

	short := &Message{Type: TypeSMS, Body: "hi", Receivers: []string{"01012345678"}}
	require.NoError(t, short.Validate())
	assert.Empty(t, short.Title)
}

func TestValidateScheduledTime(t *testing.T) {
	base := func() *Message {
		return &Message{Type: TypeSMS, Body: "hi", Receivers: []string{"01012345678"}}
	}

	t.Run("empty becomes immediate", func(t *testing.T) {
		m := base()
		require.NoError(t, m.Validate())
		assert.Equal(t, ScheduleImmediate, m.Scheduled)
	})

	t.Run("valid timestamp", func(t *testing.T) {
		m := base()
		m.Scheduled = "2026-09-01 09:30:00"
		assert.NoError(t, m.Validate())
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		m := base()
		m.Scheduled = "tomorrow"
		err := m.Validate()
		assert.ErrorIs(t, err, ErrBadSchedule)
	})
}

func TestValidateRejectsNonEUCKRText(t *testing.T) {
	m := &Message{Type: TypeSMS, Body: "hello \U0001F600", Receivers: []string{"01012345678"}}
	err := m.Validate()
	assert.True(t, errors.Is(err, ErrNotRepresentable))
}
