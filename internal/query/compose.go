// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/queryfiles"

	log "github.com/sirupsen/logrus"
)

// Spec describes where the text of a query comes from
type Spec interface {
	// a short human readable form used in logs
	String() string
	isSpec()
}

// Query text typed by the user; the first line lists prefix
// abbreviations and the rest is the SPARQL body
type InlineQuery struct {
	Text string
}

// A stored query referenced by its position in the query directory listing
type StoredQuery struct {
	Index int
}

// A stored query referenced by its file name
type NamedQuery struct {
	Name string
}

// A complete SPARQL document that is sent as is, without an abbreviation line
type VerbatimQuery struct {
	Text string
}

func (InlineQuery) isSpec()   {}
func (StoredQuery) isSpec()   {}
func (NamedQuery) isSpec()    {}
func (VerbatimQuery) isSpec() {}

func (q InlineQuery) String() string   { return "inline query" }
func (q StoredQuery) String() string   { return "stored query #" + strconv.Itoa(q.Index) }
func (q NamedQuery) String() string    { return "stored query " + q.Name }
func (q VerbatimQuery) String() string { return "verbatim query" }

// The source of namespace IRIs for abbreviations
type PrefixResolver interface {
	Lookup(abbreviation string) (string, bool)
	Reload() error
}

// A query ready to be executed along with the form shown to users
type Composed struct {
	// prefixes expanded into PREFIX declarations
	Resolved string
	// the abbreviation line followed by the body
	Display       string
	Abbreviations []string
	Body          string
}

// Composer turns a Spec into executable query text
type Composer struct {
	Prefixes PrefixResolver
	Queries  queryfiles.Directory
}

// Compose resolves the abbreviations in a query spec into PREFIX declarations.
// The prefix table is reloaded at most once if an abbreviation is unknown
func (c Composer) Compose(spec Spec) (Composed, error) {
	var abbreviations []string
	var body string

	switch s := spec.(type) {
	case VerbatimQuery:
		return Composed{Resolved: s.Text, Display: s.Text, Body: s.Text}, nil
	case InlineQuery:
		var ok bool
		abbreviations, body, ok = splitAbbreviationLine(s.Text)
		if !ok {
			// text without a line break can only be a reference to a stored file
			return c.Compose(NamedQuery{Name: strings.TrimSpace(s.Text)})
		}
	case StoredQuery:
		index, err := c.Queries.List()
		if err != nil {
			return Composed{}, &FileResolutionError{Reference: "#" + strconv.Itoa(s.Index), Err: err}
		}
		name, ok := index.Name(s.Index)
		if !ok {
			return Composed{}, &FileResolutionError{
				Reference: "#" + strconv.Itoa(s.Index),
				Err:       fmt.Errorf("index out of range; %d stored queries in %s", len(index), c.Queries.Path),
			}
		}
		return c.Compose(NamedQuery{Name: name})
	case NamedQuery:
		contents, err := c.Queries.Read(s.Name)
		if err != nil {
			return Composed{}, &FileResolutionError{Reference: s.Name, Err: err}
		}
		abbreviations, body, _ = splitAbbreviationLine(contents)
	default:
		return Composed{}, fmt.Errorf("unsupported query spec %T", spec)
	}

	prologue, err := c.prologue(abbreviations)
	if err != nil {
		return Composed{}, err
	}

	return Composed{
		Resolved:      prologue + body,
		Display:       strings.Join(abbreviations, " ") + "\n" + body,
		Abbreviations: abbreviations,
		Body:          body,
	}, nil
}

func (c Composer) prologue(abbreviations []string) (string, error) {
	var builder strings.Builder
	reloaded := false
	for _, abbreviation := range abbreviations {
		iri, ok := c.Prefixes.Lookup(abbreviation)
		if !ok && !reloaded {
			reloaded = true
			log.Debugf("abbreviation %s not found; reloading the prefix table", abbreviation)
			if err := c.Prefixes.Reload(); err != nil {
				log.Warnf("reloading the prefix table failed: %v", err)
			}
			iri, ok = c.Prefixes.Lookup(abbreviation)
		}
		if !ok {
			return "", &AbbreviationNotFoundError{Abbreviation: abbreviation}
		}
		builder.WriteString(Declaration(abbreviation, iri))
	}
	return builder.String(), nil
}

// Declaration renders a single PREFIX line
func Declaration(abbreviation, iri string) string {
	return fmt.Sprintf("PREFIX %s: %s\n", abbreviation, iri)
}

// splitAbbreviationLine splits text at the first line break.
// ok is false when there is no line break at all
func splitAbbreviationLine(text string) (abbreviations []string, body string, ok bool) {
	head, rest, found := strings.Cut(text, "\n")
	return strings.Fields(head), rest, found
}
