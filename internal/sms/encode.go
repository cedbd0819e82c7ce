// SPDX-License-Identifier: MIT

package sms

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/korean"
)

// EncodedLength returns the EUC-KR byte length of s, the unit the upstream
// API bills by. Text containing runes outside EUC-KR is rejected rather than
// silently substituted.
func EncodedLength(s string) (int, error) {
	enc := korean.EUCKR.NewEncoder()
	out, err := enc.String(s)
	if err != nil {
		return 0, ErrNotRepresentable
	}
	return len(out), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML special characters before text is embedded
// in the request document.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// Nonce returns the random prefix mixed into the per-request access token.
func Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
