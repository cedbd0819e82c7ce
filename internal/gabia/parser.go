// SPDX-License-Identifier: MIT

package gabia

import (
	"encoding/xml"
	"strings"
)

// SuccessCode is the upstream result code for an accepted request.
const SuccessCode = "0000"

// Result is the decoded payload of an upstream response document.
type Result struct {
	Code    string
	Message string
}

// Success reports whether the upstream accepted the request.
func (r Result) Success() bool {
	return r.Code == SuccessCode
}

type responseDocument struct {
	XMLName xml.Name `xml:"response"`
	Result  struct {
		Code    string `xml:"code"`
		Message string `xml:"message"`
	} `xml:"result"`
}

// parseResult extracts the result code and message from the inner response
// document returned by the gabiasms method.
func parseResult(doc string) (Result, error) {
	var parsed responseDocument
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return Result{}, err
	}
	code := strings.TrimSpace(parsed.Result.Code)
	if code == "" {
		return Result{}, &APIError{
			Sentinel:  ErrBadResponse,
			Operation: "parse_result",
			Body:      truncate(doc, 256),
		}
	}
	return Result{
		Code:    code,
		Message: strings.TrimSpace(parsed.Result.Message),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
