// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by service
// commands. The generous timeout covers tasks that ride out retry
// backoff and rate-limit waits on the service side.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Minute,
}

// serviceClient provides HTTP access to a running PageLens service.
type serviceClient struct {
	baseURL string
	http    *http.Client
}

// newServiceClient creates a client targeting the given host:port address.
func newServiceClient(addr string) *serviceClient {
	return &serviceClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *serviceClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return wrapDialErr(err)
	}
	return decodeResponse(resp, dest)
}

// postJSON performs a POST request with a JSON body (nil for empty) and
// decodes the JSON response into dest.
func (c *serviceClient) postJSON(path string, body, dest any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return lenserr.Wrap(err, lenserr.CodeCLIRequestFailure, "encoding request body")
		}
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", &buf)
	if err != nil {
		return wrapDialErr(err)
	}
	return decodeResponse(resp, dest)
}

func decodeResponse(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string       `json:"error"`
			Code  lenserr.Code `json:"code"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
			return lenserr.Errorf(lenserr.CodeCLIRequestFailure, "service returned status %d: %s", resp.StatusCode, string(raw))
		}
		code := body.Code
		if code == "" {
			code = lenserr.CodeCLIRequestFailure
		}
		return lenserr.New(code, body.Error, lenserr.FieldHTTPStatus(resp.StatusCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return lenserr.Wrap(err, lenserr.CodeCLIResponseInvalid, "invalid response")
	}
	return nil
}

// wrapDialErr maps connection-refused failures to a dedicated code so
// commands can print a friendly "service is not running" message.
func wrapDialErr(err error) error {
	if isDialError(err) {
		return lenserr.Wrap(err, lenserr.CodeCLIServiceNotRunning, "service is not running (connection refused)")
	}
	return lenserr.Wrap(err, lenserr.CodeCLIRequestFailure, "request failed")
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
