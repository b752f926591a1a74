// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/internetofwater/sparqlbuddy/internal/common"
	"github.com/internetofwater/sparqlbuddy/internal/sparql"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

// Write renders a response to w in the given format
func Write(w io.Writer, format Format, response sparql.Response) error {
	switch format {
	case FormatNone:
		return nil
	case FormatRaw:
		return writeLine(w, response.Body)
	case FormatJSON, "":
		// pretty already ends with a newline
		_, err := w.Write(response.Pretty())
		return err
	case FormatHTML:
		table, err := HTMLTable(response)
		if err != nil {
			return err
		}
		if err := html.Render(w, table); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n")
		return err
	case FormatMarkdown:
		markdown, err := Markdown(response)
		if err != nil {
			return err
		}
		return writeLine(w, []byte(markdown))
	case FormatNTriples:
		triples, err := NTriples(response)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, triples)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Markdown converts the html table of a response into a github flavored markdown table
func Markdown(response sparql.Response) (string, error) {
	table, err := HTMLTable(response)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, table); err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return converter.ConvertString(buf.String())
}

// NTriples serializes a graph response; only CONSTRUCT and DESCRIBE results are graphs
func NTriples(response sparql.Response) (string, error) {
	switch response.Form() {
	case sparql.GraphForm:
		return common.RdfJsonToNTriples(response.Body)
	case sparql.JsonLdForm:
		processor, options := common.NewJsonldProcessor()
		return common.JsonldToNQ(response.Body, processor, options)
	default:
		return "", fmt.Errorf("ntriples output needs a graph result but the response holds %s", response.Form())
	}
}

func writeLine(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}
