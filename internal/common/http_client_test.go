// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMockWithString(t *testing.T) {

	mock := NewMockedClient(true, map[string]MockResponse{
		"http://example.com": {
			StatusCode: 200,
			Body:       "success",
		},
	})

	resp, err := mock.Get("http://example.com")
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 200, resp.StatusCode)
	readBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "success", string(readBody))
}

func TestMockWithFile(t *testing.T) {

	mock := NewMockedClient(true, map[string]MockResponse{
		"http://example.com": {
			StatusCode: 404,
			File:       "testdata/mock_file",
		},
	})

	resp, err := mock.Get("http://example.com")
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 404, resp.StatusCode)
	readBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "This is a mock file", string(readBody))
}

func TestStrictMockDeniesUnknownUrls(t *testing.T) {
	mock := NewMockedClient(true, map[string]MockResponse{})
	_, err := mock.Get("http://example.com/other")
	require.ErrorContains(t, err, "request not mocked")
}

func TestMockTimeout(t *testing.T) {
	mock := NewMockedClient(true, map[string]MockResponse{
		"http://example.com": {Timeout: true},
	})
	_, err := mock.Get("http://example.com")
	require.True(t, errors.Is(err, os.ErrDeadlineExceeded))
}

func TestMockDelayRespectsCancellation(t *testing.T) {
	mock := NewMockedClient(true, map[string]MockResponse{
		"http://example.com": {StatusCode: 200, Body: "late", Delay: time.Hour},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", "http://example.com", nil)
	require.NoError(t, err)
	_, err = mock.Do(req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSparqlHttpClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewSparqlHttpClient()
	require.Zero(t, client.Timeout)
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}
