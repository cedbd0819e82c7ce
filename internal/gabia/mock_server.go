// SPDX-License-Identifier: MIT

package gabia

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
)

// MockServer provides a configurable Gabia API double for tests. It decodes
// the XML-RPC envelope, records the inner request documents and answers with
// a configurable result code.
type MockServer struct {
	*httptest.Server
	mu          sync.Mutex
	sendCode    string
	resultCodes map[string]string // key -> code returned for result lookups
	failures    int               // remaining requests to fail with HTTP 500
	documents   []string
}

// NewMockServer starts a Gabia API double that accepts every send.
func NewMockServer() *MockServer {
	m := &MockServer{
		sendCode:    SuccessCode,
		resultCodes: make(map[string]string),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// SetSendCode sets the result code returned for send requests.
func (m *MockServer) SetSendCode(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCode = code
}

// SetResultCode sets the code returned for result lookups of the given key.
func (m *MockServer) SetResultCode(key, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultCodes[key] = code
}

// FailNext makes the next n requests fail with HTTP 500.
func (m *MockServer) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// Documents returns the inner request documents received so far.
func (m *MockServer) Documents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.documents))
	copy(out, m.documents)
	return out
}

var resultKeyPattern = regexp.MustCompile(`<result><key>([^<]+)</key></result>`)

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var call methodCall
	if err := xml.Unmarshal(body, &call); err != nil || call.MethodName != methodName {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.documents = append(m.documents, call.Document)
	if m.failures > 0 {
		m.failures--
		m.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	code := m.sendCode
	message := "success"
	if match := resultKeyPattern.FindStringSubmatch(call.Document); match != nil {
		if c, ok := m.resultCodes[match[1]]; ok {
			code = c
		}
	}
	m.mu.Unlock()

	if code != SuccessCode {
		message = "error"
	}

	inner := fmt.Sprintf(
		`<response><result><code>%s</code><message>%s</message></result></response>`,
		code, message)

	var buf struct {
		XMLName  xml.Name `xml:"methodResponse"`
		Document string   `xml:"params>param>value>string"`
	}
	buf.Document = inner
	out, _ := xml.Marshal(buf)

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
