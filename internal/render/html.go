// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/common"
	"github.com/internetofwater/sparqlbuddy/internal/sparql"

	"github.com/knakk/rdf"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLTable renders a response as a bordered table; URI cells become links
func HTMLTable(response sparql.Response) (*html.Node, error) {
	table := element(atom.Table)
	table.Attr = []html.Attribute{{Key: "border", Val: "1"}}

	switch response.Form() {
	case sparql.BindingsForm:
		vars := response.Vars()
		header := element(atom.Tr)
		for _, variable := range vars {
			header.AppendChild(element(atom.Th, text(variable)))
		}
		table.AppendChild(element(atom.Thead, header))

		body := element(atom.Tbody)
		gjson.GetBytes(response.Body, "results.bindings").ForEach(func(_, solution gjson.Result) bool {
			row := element(atom.Tr)
			for _, variable := range vars {
				// unbound variables are left empty
				value := solution.Get(variable).Get("value").String()
				row.AppendChild(element(atom.Td, linkify(value)))
			}
			body.AppendChild(row)
			return true
		})
		table.AppendChild(body)
	case sparql.BooleanForm:
		value, _ := response.Boolean()
		table.AppendChild(element(atom.Tbody, element(atom.Tr, element(atom.Td, text(strconv.FormatBool(value))))))
	case sparql.GraphForm:
		body := element(atom.Tbody)
		gjson.ParseBytes(response.Body).ForEach(func(subject, predicates gjson.Result) bool {
			predicates.ForEach(func(predicate, objects gjson.Result) bool {
				objects.ForEach(func(_, object gjson.Result) bool {
					body.AppendChild(tripleRow(subject.String(), predicate.String(), object.Get("value").String()))
					return true
				})
				return true
			})
			return true
		})
		table.AppendChild(body)
	case sparql.JsonLdForm:
		processor, options := common.NewJsonldProcessor()
		nquads, err := common.JsonldToNQ(response.Body, processor, options)
		if err != nil {
			return nil, err
		}
		quads, err := rdf.NewQuadDecoder(strings.NewReader(nquads), rdf.NQuads).DecodeAll()
		if err != nil {
			return nil, err
		}
		body := element(atom.Tbody)
		for _, quad := range quads {
			body.AppendChild(tripleRow(quad.Subj.String(), quad.Pred.String(), quad.Obj.String()))
		}
		table.AppendChild(body)
	default:
		return nil, fmt.Errorf("cannot render a response of unknown shape as a table")
	}
	return table, nil
}

// WriteHTMLPage writes a full html document containing the result table
func WriteHTMLPage(w io.Writer, response sparql.Response) error {
	table, err := HTMLTable(response)
	if err != nil {
		return err
	}
	page := element(atom.Html, element(atom.Body, table))
	return html.Render(w, page)
}

func tripleRow(subject, predicate, object string) *html.Node {
	return element(atom.Tr,
		element(atom.Td, linkify(subject)),
		element(atom.Td, linkify(predicate)),
		element(atom.Td, linkify(object)),
	)
}

// linkify turns values that look like web URIs into links
func linkify(value string) *html.Node {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		link := element(atom.A, text(value))
		link.Attr = []html.Attribute{{Key: "href", Val: value}}
		return link
	}
	return text(value)
}

func element(tag atom.Atom, children ...*html.Node) *html.Node {
	node := &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String()}
	for _, child := range children {
		node.AppendChild(child)
	}
	return node
}

func text(value string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: value}
}
