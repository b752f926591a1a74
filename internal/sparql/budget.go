// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"context"
	"errors"
	"time"
)

// The default wait budget for a single query
const DefaultWaitBudget = 60 * time.Second

type outcome struct {
	response Response
	err      error
}

// QueryWithBudget runs a query and abandons it once the budget is spent.
// The deadline is released on every path so it cannot fire during a later query.
// A budget of zero or less disables the guard
func QueryWithBudget(ctx context.Context, executor Executor, query string, budget time.Duration) (Response, error) {
	if budget <= 0 {
		return executor.Query(ctx, query)
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// buffered so an abandoned query can still finish and exit
	done := make(chan outcome, 1)
	go func() {
		response, err := executor.Query(ctx, query)
		done <- outcome{response: response, err: err}
	}()

	select {
	case result := <-done:
		if result.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Response{}, &QueryTimeoutError{Budget: budget}
		}
		return result.response, result.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Response{}, &QueryTimeoutError{Budget: budget}
		}
		return Response{}, ctx.Err()
	}
}
