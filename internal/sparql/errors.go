// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"fmt"
	"time"
)

// Returned when a query does not finish within its wait budget
type QueryTimeoutError struct {
	Budget time.Duration
}

func (e *QueryTimeoutError) Error() string {
	return fmt.Sprintf("query abandoned after waiting %s", e.Budget)
}

// Any other failure while talking to the endpoint; network
// errors, unexpected status codes and unparsable payloads
type QueryError struct {
	Endpoint string
	// 0 if the request never got a response
	StatusCode int
	Body       string
	Err        error
}

func (e *QueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("query against %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("query against %s failed: %v", e.Endpoint, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
