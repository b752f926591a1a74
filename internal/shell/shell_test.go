// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/internetofwater/sparqlbuddy/internal/config"
	"github.com/internetofwater/sparqlbuddy/internal/environment"
	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/render"

	"github.com/stretchr/testify/require"
)

func newShell(t *testing.T, handler http.HandlerFunc, input string) (*Shell, *environment.Environment, *bytes.Buffer) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := config.BuddyConfig{
		Sparql: config.SparqlConfig{
			Endpoint:          server.URL,
			ResourceNamespace: "http://dbpedia.org/resource/",
		},
		Paths: config.PathConfig{
			PrefixFile: "../prefixes/testdata/prefixes.csv",
			QueryDir:   "../queryfiles/testdata/queries",
		},
	}
	out := &bytes.Buffer{}
	env, err := environment.New(conf, out)
	require.NoError(t, err)

	sh := New(env, strings.NewReader(input), out, render.FormatJSON)
	sh.Prompt = ""
	return sh, env, out
}

func alwaysTrue(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(`{"boolean": true}`))
}

func TestSession(t *testing.T) {
	input := strings.Join([]string{
		":format raw",
		"dbr",
		"ASK { dbr:Paris ?p ?o }",
		"",
		":history",
		":latest",
		":search quick paris",
		":quit",
		":list",
	}, "\n")
	sh, env, out := newShell(t, alwaysTrue, input)
	require.NoError(t, sh.Run(context.Background()))

	records := env.History()
	require.Len(t, records, 1)
	expected := "{\"boolean\": true}\n" +
		"0: " + records[0].ID + "\n" +
		"dbr\nASK { dbr:Paris ?p ?o }\n" +
		"<http://dbpedia.org/resource/Paris>\n"
	require.Equal(t, expected, out.String())
}

func TestStoredQueriesAndFormats(t *testing.T) {
	input := ":list\n:format\n:run 0\n:run ask_paris.rq\n:format html\n:response 1\n"
	sh, env, out := newShell(t, alwaysTrue, input)
	require.NoError(t, sh.Run(context.Background()))

	require.Equal(t, 2, env.HistoryLen())
	expected := "0: ask_paris.rq\n1: berlin.sparql\n2: russian_places.rq\n" +
		"json\n" +
		"{\n    \"boolean\": true\n}\n" +
		"{\n    \"boolean\": true\n}\n" +
		"<table border=\"1\"><tbody><tr><td>true</td></tr></tbody></table>\n"
	require.Equal(t, expected, out.String())
}

func TestFatalErrorsEndTheSession(t *testing.T) {
	sh, env, _ := newShell(t, alwaysTrue, ":run 99\n:history\n")
	err := sh.Run(context.Background())
	var fileErr *query.FileResolutionError
	require.True(t, errors.As(err, &fileErr))
	require.Equal(t, 0, env.HistoryLen())
}

func TestUnknownAbbreviationOnlyFailsThatQuery(t *testing.T) {
	input := "nosuch\nASK { ?s ?p ?o }\n\ndbr\nASK { dbr:Paris ?p ?o }\n\n"
	sh, env, out := newShell(t, alwaysTrue, input)
	require.NoError(t, sh.Run(context.Background()))

	require.Contains(t, out.String(), `prefix abbreviation "nosuch" not found`)
	require.Equal(t, 1, env.HistoryLen())
	latest, ok := env.Latest(0)
	require.True(t, ok)
	require.Equal(t, "dbr\nASK { dbr:Paris ?p ?o }", latest.Display)
}

func TestPrefixesCommand(t *testing.T) {
	sh, _, out := newShell(t, alwaysTrue, ":prefixes\n:reload\n")
	require.NoError(t, sh.Run(context.Background()))
	require.True(t, strings.HasPrefix(out.String(), "dbo: http://dbpedia.org/ontology/\n"))
	require.Contains(t, out.String(), "rdfs: <http://www.w3.org/2000/01/rdf-schema#>\n")
}

func TestRecoverableErrorsContinue(t *testing.T) {
	var calls atomic.Int32
	failFirst := func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Virtuoso S1T00 Error"))
			return
		}
		alwaysTrue(w, r)
	}
	input := ":bogus\n:latest x\n:format xml\n:run 0\n:run 0\n:endpoint\n"
	sh, env, out := newShell(t, failFirst, input)
	require.NoError(t, sh.Run(context.Background()))

	require.Equal(t, 1, env.HistoryLen())
	require.Contains(t, out.String(), "unknown command :bogus; try :help\n")
	require.Contains(t, out.String(), "\"x\" is not a history offset\n")
	require.Contains(t, out.String(), "unknown output format \"xml\"")
	require.True(t, strings.HasSuffix(out.String(), env.Endpoint()+"\n"))
}

func TestPendingQueryRunsAtEndOfInput(t *testing.T) {
	sh, env, _ := newShell(t, alwaysTrue, "dbr\nASK { dbr:Paris ?p ?o }")
	require.NoError(t, sh.Run(context.Background()))
	latest, ok := env.Latest(0)
	require.True(t, ok)
	require.Equal(t, "PREFIX dbr: http://dbpedia.org/resource/\nASK { dbr:Paris ?p ?o }", latest.Query)
}

func TestPrompts(t *testing.T) {
	sh, _, out := newShell(t, alwaysTrue, ":clear\ndbr\nASK { dbr:Paris ?p ?o }\n")
	sh.Prompt = DefaultPrompt
	sh.format = render.FormatNone
	require.NoError(t, sh.Run(context.Background()))
	require.Equal(t, DefaultPrompt+DefaultPrompt+continuationPrompt+continuationPrompt, out.String())
}
