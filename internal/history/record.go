// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"time"

	"github.com/internetofwater/sparqlbuddy/internal/sparql"

	"github.com/google/uuid"
)

// Optional labels attached by the keyword search helpers
type Tags struct {
	Keyword string
	Mode    string
}

// QueryRecord captures one executed query and its response.
// Records are values; the history hands out copies so they are never mutated
type QueryRecord struct {
	ID string
	// the query as sent, with PREFIX declarations expanded
	Query string
	// the abbreviation line followed by the body
	Display  string
	Response sparql.Response
	Tags     Tags
	IssuedAt time.Time
}

// NewRecord creates a record with a fresh id
func NewRecord(query, display string, response sparql.Response, tags Tags) QueryRecord {
	return QueryRecord{
		ID:       uuid.New().String(),
		Query:    query,
		Display:  display,
		Response: sparql.NewResponse(response.Body, response.ContentType),
		Tags:     tags,
		IssuedAt: time.Now(),
	}
}
