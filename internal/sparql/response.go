// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// The shape of a JSON query response
type Form int

const (
	UnknownForm Form = iota
	// SELECT; a table of variable bindings
	BindingsForm
	// ASK; a single boolean
	BooleanForm
	// CONSTRUCT/DESCRIBE returned as RDF/JSON (subject -> predicate -> objects)
	GraphForm
	// CONSTRUCT/DESCRIBE returned as JSON-LD
	JsonLdForm
)

func (f Form) String() string {
	switch f {
	case BindingsForm:
		return "bindings"
	case BooleanForm:
		return "boolean"
	case GraphForm:
		return "graph"
	case JsonLdForm:
		return "jsonld"
	default:
		return "unknown"
	}
}

// Response is the raw JSON payload returned by the endpoint
type Response struct {
	Body        []byte
	ContentType string
}

func NewResponse(body []byte, contentType string) Response {
	copied := make([]byte, len(body))
	copy(copied, body)
	return Response{Body: copied, ContentType: contentType}
}

// Form inspects the payload to decide which kind of result it holds
func (r Response) Form() Form {
	if !gjson.ValidBytes(r.Body) {
		return UnknownForm
	}
	parsed := gjson.ParseBytes(r.Body)
	switch {
	case parsed.IsArray():
		return JsonLdForm
	case !parsed.IsObject():
		return UnknownForm
	case parsed.Get("boolean").Exists():
		return BooleanForm
	case parsed.Get("head").Exists() && parsed.Get("results").Exists():
		return BindingsForm
	case parsed.Get("@context").Exists() || parsed.Get("@graph").Exists() || parsed.Get("@id").Exists():
		return JsonLdForm
	default:
		return GraphForm
	}
}

// Boolean returns the answer of an ASK query. ok is false if the payload holds no boolean
func (r Response) Boolean() (value bool, ok bool) {
	result := gjson.GetBytes(r.Body, "boolean")
	if !result.Exists() {
		return false, false
	}
	return result.Bool(), true
}

// Vars returns the projected variable names of a SELECT result
func (r Response) Vars() []string {
	vars := []string{}
	gjson.GetBytes(r.Body, "head.vars").ForEach(func(_, value gjson.Result) bool {
		vars = append(vars, value.String())
		return true
	})
	return vars
}

// NumBindings returns the number of rows in a SELECT result
func (r Response) NumBindings() int {
	return int(gjson.GetBytes(r.Body, "results.bindings.#").Int())
}

// Pretty indents the payload with four spaces and sorts object keys
func (r Response) Pretty() []byte {
	return pretty.PrettyOptions(r.Body, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   "    ",
		SortKeys: true,
	})
}
