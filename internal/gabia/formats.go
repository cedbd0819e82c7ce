// SPDX-License-Identifier: MIT

package gabia

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// The upstream API exposes a single XML-RPC method. Every operation is the
// same call carrying a different request document as its one string param.
const methodName = "gabiasms"

// Request documents. Text values must already be XML-escaped by the caller.
const (
	sendFormat = `<?xml version="1.0" encoding="utf-8"?>` +
		`<request>` +
		`<auth><api_id>%s</api_id><access_token>%s</access_token></auth>` +
		`<send>` +
		`<sms_type>%s</sms_type>` +
		`<key>%s</key>` +
		`<title>%s</title>` +
		`<message>%s</message>` +
		`<sender>%s</sender>` +
		`<receiver>%s</receiver>` +
		`<scheduled_time>%s</scheduled_time>` +
		`</send>` +
		`</request>`

	resultFormat = `<?xml version="1.0" encoding="utf-8"?>` +
		`<request>` +
		`<auth><api_id>%s</api_id><access_token>%s</access_token></auth>` +
		`<result><key>%s</key></result>` +
		`</request>`
)

type sendParams struct {
	smsType   string
	key       string
	title     string
	message   string
	sender    string
	receiver  string
	scheduled string
}

func sendDocument(apiID, accessToken string, p sendParams) string {
	return fmt.Sprintf(sendFormat,
		apiID, accessToken,
		p.smsType, p.key, p.title, p.message, p.sender, p.receiver, p.scheduled)
}

func resultDocument(apiID, accessToken, key string) string {
	return fmt.Sprintf(resultFormat, apiID, accessToken, key)
}

// XML-RPC envelope types. No pack or ecosystem library covers XML-RPC, so
// the envelope is built with encoding/xml directly.

type methodCall struct {
	XMLName    xml.Name `xml:"methodCall"`
	MethodName string   `xml:"methodName"`
	Document   string   `xml:"params>param>value>string"`
}

type methodResponse struct {
	XMLName  xml.Name   `xml:"methodResponse"`
	Document string     `xml:"params>param>value>string"`
	Fault    *faultInfo `xml:"fault"`
}

type faultInfo struct {
	Raw string `xml:",innerxml"`
}

func encodeCall(document string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(methodCall{
		MethodName: methodName,
		Document:   document,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeResponse(body []byte) (string, error) {
	var resp methodResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if resp.Fault != nil {
		return "", fmt.Errorf("xmlrpc fault: %s", strings.TrimSpace(resp.Fault.Raw))
	}
	return resp.Document, nil
}
