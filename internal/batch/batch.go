// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package batch sends a list of query files to the endpoint and saves
// each response as an html page next to its query
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/environment"
	"github.com/internetofwater/sparqlbuddy/internal/opentelemetry"
	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/render"
	"github.com/internetofwater/sparqlbuddy/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Printed in place of a result when a file could not be queried or saved
const QueryFailed = "query failed"

type Renderer struct {
	Env     *environment.Environment
	Storage storage.ResultStorage
	// progress is printed here
	Out io.Writer
	// maps a query file to the object its page is stored under;
	// defaults to the file path with .html appended
	ObjectName func(file string) string
}

// Render queries every file in order and returns how many failed.
// A failure is reported and the remaining files are still processed
func (r Renderer) Render(ctx context.Context, files []string) int {
	failed := 0
	written := make(storage.Set)
	for _, file := range files {
		fmt.Fprintf(r.Out, "query %s\n", file)
		if err := r.renderFile(ctx, file, written); err != nil {
			log.Error(err)
			fmt.Fprintln(r.Out, QueryFailed)
			failed++
		}
	}
	return failed
}

func (r Renderer) renderFile(ctx context.Context, file string, written storage.Set) error {
	span, ctx := opentelemetry.SubSpanFromCtx(ctx)
	defer span.End()
	span.SetAttributes(attribute.String("file", file))

	text, err := os.ReadFile(file)
	if err != nil {
		return &query.FileResolutionError{Reference: file, Err: err}
	}

	record, err := r.Env.Run(ctx, query.VerbatimQuery{Text: string(text)}, render.FormatNone)
	if err != nil {
		return err
	}

	var page bytes.Buffer
	if err := render.WriteHTMLPage(&page, record.Response); err != nil {
		return fmt.Errorf("could not render the response to %s: %w", file, err)
	}

	object := r.objectName(file)
	if written.Contains(object) {
		log.Warnf("%s replaces a page written earlier in this batch at %s", file, object)
	} else if exists, err := r.Storage.Exists(object); err != nil {
		return err
	} else if exists {
		log.Infof("overwriting existing page %s", object)
	}
	if err := r.Storage.Store(object, &page); err != nil {
		return err
	}
	written.Add(object)
	return nil
}

// ListPages returns the sorted names of the rendered pages directly inside dir
func ListPages(store storage.ResultStorage, dir string) ([]string, error) {
	objects, err := store.ListDir(dir)
	if err != nil {
		return nil, err
	}
	pages := []string{}
	for name := range objects {
		if strings.HasSuffix(name, ".html") {
			pages = append(pages, name)
		}
	}
	sort.Strings(pages)
	return pages, nil
}

func (r Renderer) objectName(file string) string {
	if r.ObjectName != nil {
		return r.ObjectName(file)
	}
	return file + ".html"
}

// SplitEndpoint treats a leading http(s) argument as the endpoint and
// the rest as query files
func SplitEndpoint(args []string) (endpoint string, files []string) {
	if len(args) > 0 && looksLikeURL(args[0]) {
		return args[0], args[1:]
	}
	return "", args
}

func looksLikeURL(arg string) bool {
	return strings.HasPrefix(strings.ToLower(arg), "http")
}
