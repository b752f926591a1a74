// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/batch"
	"github.com/internetofwater/sparqlbuddy/internal/config"
	"github.com/internetofwater/sparqlbuddy/internal/environment"
	"github.com/internetofwater/sparqlbuddy/internal/opentelemetry"
	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/render"
	"github.com/internetofwater/sparqlbuddy/internal/shell"
	"github.com/internetofwater/sparqlbuddy/internal/storage"
	"github.com/internetofwater/sparqlbuddy/internal/storage/s3"

	"github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"
)

// where batch --to-s3 puts rendered pages inside the bucket
const s3ResultsPrefix = "results"

type RunCmd struct {
	Query    string `arg:"positional,required" help:"a stored query index or file name, inline text whose first line lists abbreviations, or - to read stdin"`
	Resolved bool   `arg:"--show-query" help:"print the query that was sent before the response"`
}
type ListCmd struct{}
type SearchCmd struct {
	Mode    string   `arg:"positional,required" help:"strict, extended or quick"`
	Keyword []string `arg:"positional,required" help:"the words to search for"`
}
type BatchCmd struct {
	Args []string `arg:"positional,required" help:"[endpoint] file... ; each file holds one complete query"`
	ToS3   bool     `arg:"--to-s3" help:"store the rendered pages in the s3 bucket instead of next to the query files"`
	DryRun bool     `arg:"--dry-run" help:"run the queries but do not store any pages"`
}
type PagesCmd struct {
	Dir    string `arg:"positional" help:"directory (or s3 prefix) holding the rendered pages" default:"."`
	FromS3 bool   `arg:"--from-s3" help:"list the pages in the s3 bucket; the prefix defaults to results"`
}
type ShellCmd struct{}

type BuddyArgs struct {
	// Subcommands that can be run
	Run    *RunCmd    `arg:"subcommand:run" help:"run a single query and print the response"`
	List   *ListCmd   `arg:"subcommand:list" help:"list the stored queries with their indices"`
	Search *SearchCmd `arg:"subcommand:search" help:"search entity labels for a keyword"`
	Batch  *BatchCmd  `arg:"subcommand:batch" help:"run query files and save each response as an html table"`
	Pages  *PagesCmd  `arg:"subcommand:pages" help:"list the html pages written by batch"`
	Shell  *ShellCmd  `arg:"subcommand:shell" help:"start an interactive session that keeps a query history"`

	// Flags that can be set for config particular services / operations
	config.SparqlConfig
	config.PathConfig
	config.MinioConfig

	// Flags that can be set which affect all operations
	Format              string `arg:"--format" help:"json, raw, none, html, markdown or ntriples" default:"json"`
	LogLevel            string `arg:"--log-level" default:"INFO"`
	UseOtel             bool   `arg:"--use-otel"`
	OtelEndpoint        string `arg:"--otel-endpoint" help:"OpenTelemetry endpoint for traces"`
	OtelMetricsEndpoint string `arg:"--otel-metrics-endpoint" help:"OpenTelemetry endpoint for metrics; metrics are off when unset"`
}

// ToStructuredConfig converts the args to a structured config
// that can be used for more config isolation
func (b BuddyArgs) ToStructuredConfig() config.BuddyConfig {
	return config.BuddyConfig{
		Sparql: b.SparqlConfig,
		Paths:  b.PathConfig,
		Minio:  b.MinioConfig,
	}
}

type BuddyRunner struct {
	args BuddyArgs
	in   io.Reader
	out  io.Writer
}

func NewBuddyRunner(cliArgs []string) BuddyRunner {
	args := BuddyArgs{}
	const dummyBinaryName = "sparqlbuddy" // we need to add some arbitrary binary name before the args; it doesn't matter
	os.Args = append([]string{dummyBinaryName}, cliArgs...)

	parser := arg.MustParse(&args)
	subCmd := parser.Subcommand()
	if subCmd == nil || subCmd == "" {
		log.Error("no subcommand provided")
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	return BuddyRunner{
		args: args,
		in:   os.Stdin,
		out:  os.Stdout,
	}
}

// parseQueryArg decides what kind of query a command line argument refers to
func parseQueryArg(argument string, stdin io.Reader) (query.Spec, error) {
	if argument == "-" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return query.InlineQuery{Text: string(text)}, nil
	}
	if index, err := strconv.Atoi(argument); err == nil {
		return query.StoredQuery{Index: index}, nil
	}
	if strings.Contains(argument, "\n") {
		return query.InlineQuery{Text: argument}, nil
	}
	return query.NamedQuery{Name: argument}, nil
}

// Run executes the subcommand. batchFailures counts the files of a
// batch that could not be queried; the batch itself keeps going
func (b BuddyRunner) Run(ctx context.Context) (batchFailures int, err error) {
	level, err := log.ParseLevel(b.args.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %s: %w", b.args.LogLevel, err)
	}
	log.SetLevel(level)

	format, err := render.ParseFormat(b.args.Format)
	if err != nil {
		return 0, err
	}

	tracing := b.args.UseOtel || b.args.OtelEndpoint != ""
	if tracing {
		if b.args.OtelEndpoint == "" {
			b.args.OtelEndpoint = opentelemetry.DefaultTracingEndpoint
		}
		log.Infof("Starting opentelemetry traces and exporting to: %s", b.args.OtelEndpoint)
		if err := opentelemetry.InitTracer("sparqlbuddy", b.args.OtelEndpoint); err != nil {
			return 0, err
		}
	}
	if b.args.OtelMetricsEndpoint != "" {
		if err := opentelemetry.InitMetrics(b.args.OtelMetricsEndpoint); err != nil {
			opentelemetry.Shutdown()
			return 0, err
		}
	}
	if tracing || b.args.OtelMetricsEndpoint != "" {
		// the root span has to end before the providers shut down
		var stopTelemetry func()
		ctx, stopTelemetry = opentelemetry.StartCommandSpan(ctx, strings.Join(os.Args, "_"))
		defer stopTelemetry()
	}

	cfgStruct := b.args.ToStructuredConfig()
	if b.args.Pages != nil {
		// listing pages needs neither the endpoint nor the prefix table
		return 0, b.listPages(cfgStruct.Minio)
	}
	if b.args.Batch != nil {
		// a leading url overrides the configured endpoint
		if endpoint, _ := batch.SplitEndpoint(b.args.Batch.Args); endpoint != "" {
			cfgStruct.Sparql.Endpoint = endpoint
		}
	}

	env, err := environment.New(cfgStruct, b.out)
	if err != nil {
		return 0, err
	}

	switch {
	case b.args.Run != nil:
		spec, err := parseQueryArg(b.args.Run.Query, b.in)
		if err != nil {
			return 0, err
		}
		record, err := env.Run(ctx, spec, format)
		if err != nil {
			return 0, err
		}
		if b.args.Run.Resolved {
			log.Infof("sent query:\n%s", record.Query)
		}
		return 0, nil
	case b.args.List != nil:
		return 0, env.PrintQueryList()
	case b.args.Search != nil:
		mode, err := environment.ParseSearchMode(b.args.Search.Mode)
		if err != nil {
			return 0, err
		}
		_, err = env.KeywordSearch(ctx, strings.Join(b.args.Search.Keyword, " "), mode, format)
		return 0, err
	case b.args.Batch != nil:
		return b.runBatch(ctx, env, cfgStruct.Minio)
	case b.args.Shell != nil:
		return 0, shell.New(env, b.in, b.out, format).Run(ctx)
	default:
		return 0, fmt.Errorf("unknown sparqlbuddy subcommand")
	}
}

func (b BuddyRunner) runBatch(ctx context.Context, env *environment.Environment, minioConfig config.MinioConfig) (int, error) {
	_, files := batch.SplitEndpoint(b.args.Batch.Args)
	if len(files) == 0 {
		return 0, fmt.Errorf("no query files given")
	}

	renderer := batch.Renderer{Env: env, Out: b.out, Storage: storage.NewLocalStorage("")}
	if b.args.Batch.DryRun {
		renderer.Storage = storage.DiscardStorage{}
	} else if b.args.Batch.ToS3 {
		client, err := s3.NewMinioClientWrapper(minioConfig)
		if err != nil {
			return 0, err
		}
		if err := client.MakeDefaultBucket(); err != nil {
			return 0, err
		}
		renderer.Storage = client
		renderer.ObjectName = func(file string) string {
			return s3ResultsPrefix + "/" + filepath.Base(file) + ".html"
		}
	}
	return renderer.Render(ctx, files), nil
}

func (b BuddyRunner) listPages(minioConfig config.MinioConfig) error {
	var store storage.ResultStorage = storage.NewLocalStorage("")
	dir := b.args.Pages.Dir
	if b.args.Pages.FromS3 {
		client, err := s3.NewMinioClientWrapper(minioConfig)
		if err != nil {
			return err
		}
		store = client
		if dir == "." {
			dir = s3ResultsPrefix
		}
	}
	pages, err := batch.ListPages(store, dir)
	if err != nil {
		return err
	}
	for _, page := range pages {
		fmt.Fprintln(b.out, page)
	}
	return nil
}

func main() {
	if failures, err := NewBuddyRunner(os.Args[1:]).Run(context.Background()); err != nil {
		log.Fatal(err)
	} else if failures > 0 {
		log.Warnf("%d of the batch queries failed; check the log for details", failures)
		// we use exit status 3 since it is not a fatal error that would exit 1
		// nor a user error that would exit 2
		const nonFatalError = 3
		log.Exit(nonFatalError)
	}
}
