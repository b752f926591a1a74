// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseForms(t *testing.T) {
	selectBody, err := os.ReadFile("testdata/select.json")
	require.NoError(t, err)

	cases := []struct {
		body     string
		expected Form
	}{
		{string(selectBody), BindingsForm},
		{`{"head": {}, "boolean": false}`, BooleanForm},
		{`{"http://a.org/s": {"http://a.org/p": [{"type": "uri", "value": "http://a.org/o"}]}}`, GraphForm},
		{`{"@context": {}, "@graph": []}`, JsonLdForm},
		{`[{"@id": "http://a.org/s"}]`, JsonLdForm},
		{`"just a string"`, UnknownForm},
		{`not json`, UnknownForm},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, NewResponse([]byte(c.body), "").Form(), c.body)
	}
}

func TestResponseBindings(t *testing.T) {
	body, err := os.ReadFile("testdata/select.json")
	require.NoError(t, err)
	response := NewResponse(body, ResultsFormat)
	require.Equal(t, []string{"city", "population"}, response.Vars())
	require.Equal(t, 2, response.NumBindings())
	_, ok := response.Boolean()
	require.False(t, ok)
}

func TestPrettySortsKeys(t *testing.T) {
	response := NewResponse([]byte(`{"results": 1, "head": {"vars": []}, "boolean": true}`), "")
	pretty := string(response.Pretty())
	require.Less(t, strings.Index(pretty, `"boolean"`), strings.Index(pretty, `"head"`))
	require.Less(t, strings.Index(pretty, `"head"`), strings.Index(pretty, `"results"`))
	require.Contains(t, pretty, "\n    \"boolean\": true")
}

func TestNewResponseCopiesBody(t *testing.T) {
	body := []byte(`{"boolean": true}`)
	response := NewResponse(body, "")
	body[2] = 'X'
	require.Equal(t, `{"boolean": true}`, string(response.Body))
}
