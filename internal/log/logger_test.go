// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAttachesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "gabiad-test", Version: "v9.9.9"})

	logger := WithComponent("tester")
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gabiad-test", entry["service"])
	assert.Equal(t, "v9.9.9", entry["version"])
	assert.Equal(t, "tester", entry[FieldComponent])
	assert.Equal(t, "hello", entry["message"])
}

func TestSetLevel(t *testing.T) {
	assert.True(t, SetLevel("warn"))
	assert.False(t, SetLevel("chatty"))
	// Restore for other tests.
	assert.True(t, SetLevel("debug"))
}

func TestContextCorrelation(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "gabiad-test"})

	ctx := ContextWithRequestID(t.Context(), "req-1")
	ctx = ContextWithMessageKey(ctx, "msg-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "msg-1", MessageKeyFromContext(ctx))

	logger := WithComponentFromContext(ctx, "tester")
	logger.Info().Msg("correlated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "msg-1", entry[FieldMessageKey])
}

func TestContextHelpersTolerateEmptyContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(t.Context()))
	assert.Empty(t, MessageKeyFromContext(t.Context()))

	logger := WithContext(t.Context(), Base())
	// No correlation fields: the logger passes through unchanged.
	assert.NotPanics(t, func() { logger.Debug().Msg("noop") })
}
