// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"context"
	"testing"

	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/render"

	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	require.Equal(t, "Paris", Canonical("paris"))
	require.Equal(t, "New_York_City", Canonical("  new york   city "))
}

func TestEscapeLiteral(t *testing.T) {
	require.Equal(t, `say \"hi\"`, EscapeLiteral(`say "hi"`))
	require.Equal(t, `a\\b\nc`, EscapeLiteral("a\\b\nc"))
}

func TestParseSearchMode(t *testing.T) {
	mode, err := ParseSearchMode("Quick")
	require.NoError(t, err)
	require.Equal(t, QuickSearch, mode)

	_, err = ParseSearchMode("fuzzy")
	require.ErrorContains(t, err, "unknown search mode")
}

func TestQuickSearchIsNotRecorded(t *testing.T) {
	env, executor, out := newTestEnvironment(t, testConfig(),
		reply{body: `{"boolean": true}`},
		reply{body: `{"boolean": true}`},
	)

	_, err := env.Run(context.Background(), query.InlineQuery{Text: "dbr\nASK { dbr:Paris ?p ?o }"}, render.FormatNone)
	require.NoError(t, err)
	before := env.HistoryLen()

	exists, err := env.QuickSearch(context.Background(), "Paris")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "<http://dbpedia.org/resource/Paris>\n", out.String())
	require.Equal(t, before, env.HistoryLen())
	require.Contains(t, executor.sent()[1], "ASK { <http://dbpedia.org/resource/Paris> ?p ?o }")
}

func TestQuickSearchNotFound(t *testing.T) {
	env, _, out := newTestEnvironment(t, testConfig(), reply{body: `{"boolean": false}`})

	record, err := env.KeywordSearch(context.Background(), "new york", QuickSearch, render.FormatJSON)
	require.NoError(t, err)
	require.Empty(t, record.ID)
	require.Equal(t, NotFoundPrefix+"<http://dbpedia.org/resource/New_York>\n", out.String())
	require.Equal(t, 0, env.HistoryLen())
}

func TestQuickSearchRejectsUnusableNames(t *testing.T) {
	env, executor, _ := newTestEnvironment(t, testConfig())
	_, err := env.QuickSearch(context.Background(), "a<b")
	require.ErrorContains(t, err, "cannot build a resource iri")
	require.Empty(t, executor.sent())
}

func TestStrictSearchIsTagged(t *testing.T) {
	env, executor, _ := newTestEnvironment(t, testConfig(),
		reply{body: `{"head": {"vars": ["entity"]}, "results": {"bindings": []}}`},
	)

	record, err := env.KeywordSearch(context.Background(), `Say "Paris"`, StrictSearch, render.FormatNone)
	require.NoError(t, err)
	require.Equal(t, `Say "Paris"`, record.Tags.Keyword)
	require.Equal(t, "strict", record.Tags.Mode)
	require.Equal(t, 1, env.HistoryLen())

	sent := executor.sent()[0]
	require.Contains(t, sent, `LCASE("Say \"Paris\"")`)
	require.Contains(t, sent, "dbo:Organisation")
	require.Contains(t, sent, `LANG(?label) = "en"`)
}

func TestExtendedSearchEscapesTheRegex(t *testing.T) {
	env, executor, _ := newTestEnvironment(t, testConfig(),
		reply{body: `{"head": {"vars": ["entity"]}, "results": {"bindings": []}}`},
	)

	record, err := env.KeywordSearch(context.Background(), "St. Petersburg", ExtendedSearch, render.FormatNone)
	require.NoError(t, err)
	require.Equal(t, "extended", record.Tags.Mode)
	require.Contains(t, executor.sent()[0], `REGEX(STR(?label), "^(\\w+\\s+)*St\\. Petersburg,?(\\s+\\w+)*$", "i")`)
}

func TestEmptyKeyword(t *testing.T) {
	env, executor, _ := newTestEnvironment(t, testConfig())
	_, err := env.KeywordSearch(context.Background(), "  ", StrictSearch, render.FormatNone)
	require.Error(t, err)
	require.Empty(t, executor.sent())
}
