// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/internetofwater/sparqlbuddy/internal/history"
	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/render"

	"github.com/knakk/rdf"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/search.rq
var searchTemplates string

var searchBank = template.Must(template.New("search").Parse(searchTemplates))

// prepare fills in the named search template
func prepare(name string, data any) (string, error) {
	var buf strings.Builder
	if err := searchBank.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("could not prepare the %s search: %w", name, err)
	}
	return buf.String(), nil
}

// How a keyword is matched against entity labels
type SearchMode string

const (
	// exact case insensitive label match
	StrictSearch SearchMode = "strict"
	// label contains the keyword as whole words, optionally followed by a comma
	ExtendedSearch SearchMode = "extended"
	// existence check for a resource named after the keyword
	QuickSearch SearchMode = "quick"
)

func ParseSearchMode(name string) (SearchMode, error) {
	switch mode := SearchMode(strings.ToLower(name)); mode {
	case StrictSearch, ExtendedSearch, QuickSearch:
		return mode, nil
	}
	return "", fmt.Errorf("unknown search mode %q; expected strict, extended or quick", name)
}

// Printed by a quick search when the resource has no triples
const NotFoundPrefix = "not found: "

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeLiteral makes text safe inside a double quoted SPARQL string
func EscapeLiteral(text string) string {
	return literalEscaper.Replace(text)
}

// Canonical turns a free text name into a resource name: each word
// is title cased and words are joined with underscores
func Canonical(name string) string {
	title := cases.Title(language.English).String(strings.TrimSpace(name))
	return strings.Join(strings.Fields(title), "_")
}

// KeywordSearch runs a strict or extended search through the recorded path
// and tags the record with the keyword and mode. Quick searches go through
// QuickSearch and return a zero record
func (e *Environment) KeywordSearch(ctx context.Context, keyword string, mode SearchMode, format render.Format) (history.QueryRecord, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return history.QueryRecord{}, fmt.Errorf("cannot search for an empty keyword")
	}

	var text string
	var err error
	switch mode {
	case StrictSearch:
		text, err = prepare(string(mode), struct{ Literal string }{EscapeLiteral(keyword)})
	case ExtendedSearch:
		text, err = prepare(string(mode), struct{ Pattern string }{EscapeLiteral(regexp.QuoteMeta(keyword))})
	case QuickSearch:
		_, err = e.QuickSearch(ctx, keyword)
		return history.QueryRecord{}, err
	default:
		return history.QueryRecord{}, fmt.Errorf("unknown search mode %q", mode)
	}
	if err != nil {
		return history.QueryRecord{}, err
	}

	return e.run(ctx, query.VerbatimQuery{Text: text}, format, history.Tags{Keyword: keyword, Mode: string(mode)})
}

// QuickSearch asks whether a resource named after the keyword exists in the
// resource namespace and prints "<iri>" or "not found: <iri>".
// The check is never added to the history
func (e *Environment) QuickSearch(ctx context.Context, keyword string) (bool, error) {
	iri, err := rdf.NewIRI(e.namespace + Canonical(keyword))
	if err != nil {
		return false, fmt.Errorf("cannot build a resource iri for %q: %w", keyword, err)
	}

	text, err := prepare(string(QuickSearch), struct{ IRI string }{iri.String()})
	if err != nil {
		return false, err
	}
	log.Debugf("quick search for %s", iri.String())

	response, err := e.execute(ctx, text)
	if err != nil {
		return false, err
	}
	exists, ok := response.Boolean()
	if !ok {
		return false, fmt.Errorf("existence check for %s did not return a boolean", iri.String())
	}

	if exists {
		fmt.Fprintf(e.out, "<%s>\n", iri.String())
	} else {
		fmt.Fprintf(e.out, "%s<%s>\n", NotFoundPrefix, iri.String())
	}
	return exists, nil
}
