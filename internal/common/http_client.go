// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

const UserAgent = "sparqlbuddy"

type MockResponse struct {
	File        string
	Body        string
	StatusCode  int
	ContentType string
	// If true, the request will return an error
	// signifying that the request timedout
	Timeout bool
	// If set, the response is held back this long or until the request is cancelled
	Delay time.Duration
}

type MockTransport struct {
	// Deny requests that are not mocked
	denyReqNotMocked bool
	transport        http.RoundTripper
	urlToFile        map[string]MockResponse
}

// If the req url is in the map, return a mock response from the associated file
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {

	full_url := req.URL.String()

	associatedMock, ok := m.urlToFile[full_url]
	if ok {
		if associatedMock.Delay > 0 {
			select {
			case <-time.After(associatedMock.Delay):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}

		if associatedMock.Timeout {
			return nil, fmt.Errorf("mocked a timeout for %s: %w", full_url, os.ErrDeadlineExceeded)
		}

		if associatedMock.Body != "" {
			return &http.Response{
				StatusCode: associatedMock.StatusCode,
				Body:       io.NopCloser(strings.NewReader(associatedMock.Body)),
				Header: http.Header{
					"Content-Type": []string{associatedMock.ContentType},
				},
				Request: req,
			}, nil
		}

		mockedContent, err := os.Open(associatedMock.File)
		if mockedContent == nil || err != nil {
			return nil, err
		}
		return &http.Response{
			StatusCode: associatedMock.StatusCode,
			Body:       mockedContent,
			Header: http.Header{
				"Content-Type": []string{associatedMock.ContentType},
			},
			Request: req,
		}, nil
	}
	if m.denyReqNotMocked {
		return nil, fmt.Errorf("request not mocked: %s", full_url)
	}

	return m.transport.RoundTrip(req)
}

// NewMockedClient returns an http client with mocked responses
// if strictMode is true, all http requests that are not mocked will return an error
func NewMockedClient(strictMode bool, urlToMock map[string]MockResponse) *http.Client {

	transport := &MockTransport{
		transport:        newLongLivedHttpTransport(),
		urlToFile:        urlToMock,
		denyReqNotMocked: strictMode,
	}

	return &http.Client{Transport: transport}
}

// An http transport for a single long lived endpoint
func newLongLivedHttpTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   20 * time.Second,
		ExpectContinueTimeout: 2 * time.Second,
		ForceAttemptHTTP2:     true,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			span := trace.SpanFromContext(ctx)
			if span != nil {
				span.AddEvent("HTTP connection")
			}
			dialer := &net.Dialer{Timeout: 30 * time.Second}
			return dialer.DialContext(ctx, network, addr)
		},
	}
}

// NewSparqlHttpClient returns a client instrumented with otel.
// There is no client level timeout since every query runs under its own wait budget
func NewSparqlHttpClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(newLongLivedHttpTransport()),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			span := trace.SpanFromContext(req.Context())
			if span != nil {
				span.AddEvent("HTTP redirect")
			}
			if len(via) >= 10 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}
}
