// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package environment holds the state of a query session: the endpoint,
// the prefix table, the stored query directory, and the history of
// executed queries
package environment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/internetofwater/sparqlbuddy/internal/config"
	"github.com/internetofwater/sparqlbuddy/internal/history"
	"github.com/internetofwater/sparqlbuddy/internal/opentelemetry"
	"github.com/internetofwater/sparqlbuddy/internal/prefixes"
	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/queryfiles"
	"github.com/internetofwater/sparqlbuddy/internal/render"
	"github.com/internetofwater/sparqlbuddy/internal/sparql"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Printed when a history lookup has nothing to show
const NoQueriesIssued = "no queries issued"

// Environment is a single threaded query session. It is not safe for concurrent use
type Environment struct {
	executor  sparql.Executor
	prefixes  *prefixes.Table
	queries   queryfiles.Directory
	namespace string
	budget    time.Duration
	out       io.Writer
	history   history.History
}

// New creates an environment that talks to the endpoint in the config over HTTP
func New(conf config.BuddyConfig, out io.Writer) (*Environment, error) {
	return NewWithExecutor(conf, sparql.NewClient(conf.Sparql), out)
}

// NewWithExecutor creates an environment around an existing executor.
// The prefix file is loaded immediately; a malformed file is a ConfigurationError
func NewWithExecutor(conf config.BuddyConfig, executor sparql.Executor, out io.Writer) (*Environment, error) {
	table, err := prefixes.Load(conf.Paths.PrefixFile)
	if err != nil {
		return nil, err
	}
	budget := conf.Sparql.Timeout
	if budget == 0 {
		budget = sparql.DefaultWaitBudget
	}
	return &Environment{
		executor:  executor,
		prefixes:  table,
		queries:   queryfiles.Directory{Path: conf.Paths.QueryDir, Glob: conf.Paths.QueryGlob},
		namespace: conf.Sparql.ResourceNamespace,
		budget:    budget,
		out:       out,
	}, nil
}

func (e *Environment) composer() query.Composer {
	return query.Composer{Prefixes: e.prefixes, Queries: e.queries}
}

// Compose resolves a query spec without running it
func (e *Environment) Compose(spec query.Spec) (query.Composed, error) {
	return e.composer().Compose(spec)
}

// Run composes and executes a query, records it in the history and prints
// the response in the given format. Composition errors are returned before
// anything is sent and leave the history untouched
func (e *Environment) Run(ctx context.Context, spec query.Spec, format render.Format) (history.QueryRecord, error) {
	return e.run(ctx, spec, format, history.Tags{})
}

func (e *Environment) run(ctx context.Context, spec query.Spec, format render.Format, tags history.Tags) (history.QueryRecord, error) {
	composed, err := e.Compose(spec)
	if err != nil {
		return history.QueryRecord{}, err
	}
	log.Debugf("running %s:\n%s", spec, composed.Resolved)

	response, err := e.execute(ctx, composed.Resolved)
	if err != nil {
		return history.QueryRecord{}, err
	}

	record := history.NewRecord(composed.Resolved, composed.Display, response, tags)
	e.history.Append(record)

	if err := render.Write(e.out, format, response); err != nil {
		return record, fmt.Errorf("could not print the response of %s: %w", spec, err)
	}
	return record, nil
}

// execute sends a query under the wait budget without recording it.
// Failures are logged here so callers only need to decide whether to continue
func (e *Environment) execute(ctx context.Context, resolved string) (sparql.Response, error) {
	span, ctx := opentelemetry.SubSpanFromCtxWithName(ctx, "sparql_query")
	defer span.End()
	endpoint := e.executor.Endpoint()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	start := time.Now()
	response, err := sparql.QueryWithBudget(ctx, e.executor, resolved, e.budget)
	opentelemetry.RecordQueryDuration(endpoint, time.Since(start).Seconds())
	if err != nil {
		var timeoutErr *sparql.QueryTimeoutError
		reason := "error"
		if errors.As(err, &timeoutErr) {
			reason = "timeout"
		}
		opentelemetry.RecordQueryFailure(endpoint, reason)
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("query against %s failed: %v", endpoint, err)
		return sparql.Response{}, err
	}
	span.SetAttributes(attribute.String("form", response.Form().String()))
	return response, nil
}

// Endpoint returns the URL queries are currently sent to
func (e *Environment) Endpoint() string {
	return e.executor.Endpoint()
}

// SetEndpoint points the session at a new endpoint and drops connections to the old one
func (e *Environment) SetEndpoint(endpoint string) {
	e.executor.SetEndpoint(endpoint)
}

// ReloadPrefixes rereads the prefix file; on error the previous table stays in use
func (e *Environment) ReloadPrefixes() error {
	if err := e.prefixes.Reload(); err != nil {
		return err
	}
	log.Infof("reloaded %d prefixes from %s", e.prefixes.Len(), e.prefixes.Path())
	return nil
}

// PrintPrefixes prints every known abbreviation as "abbr: iri", sorted by abbreviation
func (e *Environment) PrintPrefixes() {
	for _, abbreviation := range e.prefixes.Abbreviations() {
		iri, _ := e.prefixes.Lookup(abbreviation)
		fmt.Fprintf(e.out, "%s: %s\n", abbreviation, iri)
	}
}

// ListQueries builds a fresh index of the stored query directory
func (e *Environment) ListQueries() (queryfiles.Index, error) {
	return e.queries.List()
}

// PrintQueryList prints every stored query as "index: filename"
func (e *Environment) PrintQueryList() error {
	index, err := e.ListQueries()
	if err != nil {
		return err
	}
	for position, name := range index {
		if _, err := fmt.Fprintf(e.out, "%d: %s\n", position, name); err != nil {
			return err
		}
	}
	return nil
}

// History returns a copy of every recorded query, oldest first
func (e *Environment) History() []history.QueryRecord {
	return e.history.Records()
}

func (e *Environment) HistoryLen() int {
	return e.history.Len()
}

// Latest returns the record offset positions from the newest one
func (e *Environment) Latest(offset int) (history.QueryRecord, bool) {
	return e.history.Latest(offset)
}

func (e *Environment) ClearHistory() {
	e.history.Clear()
}

// PrintHistory prints the id of every recorded query
func (e *Environment) PrintHistory() {
	ids := e.history.IDs()
	if len(ids) == 0 {
		fmt.Fprintln(e.out, NoQueriesIssued)
		return
	}
	for position, id := range ids {
		fmt.Fprintf(e.out, "%d: %s\n", position, id)
	}
}

// PrintLatestQuery prints the display form of a recent query,
// or the text that was actually sent if resolved is set
func (e *Environment) PrintLatestQuery(offset int, resolved bool) {
	record, ok := e.history.Latest(offset)
	if !ok {
		fmt.Fprintln(e.out, NoQueriesIssued)
		return
	}
	text := record.Display
	if resolved {
		text = record.Query
	}
	fmt.Fprintln(e.out, strings.TrimRight(text, "\n"))
}

// PrintLatestResponse prints the response of a recent query in the given format
func (e *Environment) PrintLatestResponse(offset int, format render.Format) error {
	record, ok := e.history.Latest(offset)
	if !ok {
		fmt.Fprintln(e.out, NoQueriesIssued)
		return nil
	}
	return render.Write(e.out, format, record.Response)
}
