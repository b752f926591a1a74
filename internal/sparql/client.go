// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/common"
	"github.com/internetofwater/sparqlbuddy/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// The mimetype requested for results; Virtuoso also honors it as a form parameter
const ResultsFormat = "application/sparql-results+json"

// The external facility that runs a complete query against an endpoint
type Executor interface {
	// Query sends the query and returns the JSON payload
	Query(ctx context.Context, query string) (Response, error)
	// SetEndpoint points the executor at a new endpoint and
	// drops any connection state tied to the previous one
	SetEndpoint(endpoint string)
	Endpoint() string
}

// assert that the http client implements the interface
var _ Executor = &Client{}

// Client sends queries to a SPARQL endpoint over HTTP
type Client struct {
	endpoint     string
	username     string
	password     string
	authenticate bool
	httpClient   *http.Client
	// builds the http client used after an endpoint change
	newHttpClient func() *http.Client
}

// Create a new client for the endpoint in the config
func NewClient(conf config.SparqlConfig) *Client {
	return NewClientWithHttp(conf, common.NewSparqlHttpClient)
}

// Create a new client with a custom http client constructor; used
// to inject mocked transports
func NewClientWithHttp(conf config.SparqlConfig, newHttpClient func() *http.Client) *Client {
	return &Client{
		endpoint:      conf.Endpoint,
		username:      conf.Username,
		password:      conf.Password,
		authenticate:  conf.Authenticate(),
		httpClient:    newHttpClient(),
		newHttpClient: newHttpClient,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) SetEndpoint(endpoint string) {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	c.endpoint = endpoint
	c.httpClient = c.newHttpClient()
	log.Infof("SPARQL endpoint set to %s", endpoint)
}

// Query posts the query as a form and returns the JSON payload
func (c *Client) Query(ctx context.Context, query string) (Response, error) {
	form := url.Values{}
	form.Add("query", query)
	form.Add("format", ResultsFormat)

	ctx, _ = common.WithConnectionTrace(ctx, c.endpoint)
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Response{}, &QueryError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", ResultsFormat+", application/json;q=0.9, application/ld+json;q=0.8")
	req.Header.Set("User-Agent", common.UserAgent)
	if c.authenticate {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, &QueryError{Endpoint: c.endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &QueryError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &QueryError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if !gjson.ValidBytes(body) {
		return Response{}, &QueryError{
			Endpoint: c.endpoint,
			Body:     strings.TrimSpace(string(body)),
			Err:      fmt.Errorf("endpoint did not return json; content type was %q", resp.Header.Get("Content-Type")),
		}
	}

	log.Tracef("response from %s: %s", c.endpoint, string(body))
	return NewResponse(body, resp.Header.Get("Content-Type")), nil
}
