// SPDX-License-Identifier: MIT

package gabia

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo/gabiad/internal/sms"
)

func testMessage() *sms.Message {
	m := &sms.Message{
		Key:       sms.NewKey(),
		Type:      sms.TypeSMS,
		Body:      "hello",
		Receivers: []string{"01012345678"},
	}
	if err := m.Validate(); err != nil {
		panic(err)
	}
	return m
}

func newTestClient(t *testing.T, mock *MockServer, opts ...Option) *Client {
	t.Helper()
	return New(Config{
		APIURL:  mock.URL,
		APIID:   "someid",
		APIKey:  "secret-key",
		Sender:  "0212345678",
		Timeout: 2 * time.Second,
	}, opts...)
}

func TestSendSuccess(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	client := newTestClient(t, mock)
	res, err := client.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, SuccessCode, res.Code)
}

func TestSendBuildsRequestDocument(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	client := newTestClient(t, mock)
	m := &sms.Message{
		Key:       "12345",
		Type:      sms.TypeMultiSMS,
		Body:      `a & b <c>`,
		Receivers: []string{"01012345678", "01087654321"},
	}
	require.NoError(t, m.Validate())

	_, err := client.Send(context.Background(), m)
	require.NoError(t, err)

	docs := mock.Documents()
	require.Len(t, docs, 1)
	doc := docs[0]

	// Multi types degrade to their single form on the wire.
	assert.Contains(t, doc, "<sms_type>sms</sms_type>")
	assert.Contains(t, doc, "<key>12345</key>")
	assert.Contains(t, doc, "<message>a &amp; b &lt;c&gt;</message>")
	assert.Contains(t, doc, "<sender>0212345678</sender>")
	assert.Contains(t, doc, "<receiver>01012345678,01087654321</receiver>")
	assert.Contains(t, doc, "<scheduled_time>0</scheduled_time>")
	assert.Contains(t, doc, "<api_id>someid</api_id>")
}

func TestSendAccessToken(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	const nonce = "fixednonce123456"
	client := newTestClient(t, mock, WithNonceFunc(func() string { return nonce }))

	_, err := client.Send(context.Background(), testMessage())
	require.NoError(t, err)

	sum := md5.Sum([]byte(nonce + "secret-key"))
	want := "<access_token>" + nonce + hex.EncodeToString(sum[:]) + "</access_token>"

	docs := mock.Documents()
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0], want)
}

func TestSendRejected(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetSendCode("1000")

	client := newTestClient(t, mock)
	res, err := client.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "1000", apiErr.Code)
	assert.Equal(t, "1000", res.Code)
	assert.False(t, res.Success())
}

func TestSendTransportFailure(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.FailNext(1)

	client := newTestClient(t, mock)
	_, err := client.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSendCircuitOpensAfterFailures(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.FailNext(2)

	client := New(Config{
		APIURL:           mock.URL,
		APIID:            "someid",
		APIKey:           "secret-key",
		Sender:           "0212345678",
		Timeout:          2 * time.Second,
		BreakerThreshold: 2,
		BreakerReset:     time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := client.Send(context.Background(), testMessage())
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.True(t, client.BreakerOpen())

	// The circuit rejects without touching the upstream.
	_, err := client.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, mock.Documents(), 2)
}

func TestSendHooks(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	var before, after int
	var afterRes Result
	client := newTestClient(t, mock,
		WithBeforeSend(func(ctx context.Context, m *sms.Message) { before++ }),
		WithAfterSend(func(ctx context.Context, m *sms.Message, res Result) {
			after++
			afterRes = res
		}),
	)

	_, err := client.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)
	assert.True(t, afterRes.Success())
}

func TestResultLookup(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetResultCode("77001", SuccessCode)
	mock.SetResultCode("77002", "8000")

	client := newTestClient(t, mock)

	res, err := client.Result(context.Background(), "77001")
	require.NoError(t, err)
	assert.True(t, res.Success())

	res, err = client.Result(context.Background(), "77002")
	require.NoError(t, err)
	assert.Equal(t, "8000", res.Code)
	assert.False(t, res.Success())
}

func TestSendContextCancelled(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	client := newTestClient(t, mock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, testMessage())
	require.Error(t, err)
}
