// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package shell is an interactive loop over a query environment.
// Lines starting with ':' are commands; anything else is collected
// until a blank line and run as an inline query
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/internetofwater/sparqlbuddy/internal/environment"
	"github.com/internetofwater/sparqlbuddy/internal/query"
	"github.com/internetofwater/sparqlbuddy/internal/render"
	"github.com/internetofwater/sparqlbuddy/internal/sparql"

	log "github.com/sirupsen/logrus"
)

const DefaultPrompt = "sparql> "

// printed while an inline query is being collected
const continuationPrompt = "   ...> "

const help = `commands:
  :list                   list stored queries
  :run N|NAME             run a stored query by index or file name
  :search MODE WORDS      keyword search; MODE is strict, extended or quick
  :history                list the ids of recorded queries
  :latest [N]             show the Nth most recent query as typed
  :resolved [N]           show the Nth most recent query as sent
  :response [N]           show the Nth most recent response
  :clear                  forget all recorded queries
  :endpoint [URL]         show or change the endpoint
  :prefixes               list the known prefix abbreviations
  :reload                 reread the prefix file
  :format [F]             show or change the output format
  :help                   show this message
  :quit                   leave the shell
any other input is read until a blank line and run as a query whose
first line lists prefix abbreviations`

// errQuit ends the loop without an error
var errQuit = errors.New("quit")

type Shell struct {
	env    *environment.Environment
	in     *bufio.Scanner
	out    io.Writer
	format render.Format
	Prompt string
}

func New(env *environment.Environment, in io.Reader, out io.Writer, format render.Format) *Shell {
	return &Shell{
		env:    env,
		in:     bufio.NewScanner(in),
		out:    out,
		format: format,
		Prompt: DefaultPrompt,
	}
}

// Run reads commands until the input ends or :quit is entered.
// Only fatal errors end the loop early and are returned
func (s *Shell) Run(ctx context.Context) error {
	var pending []string
	s.prompt(pending)
	for s.in.Scan() {
		line := s.in.Text()
		trimmed := strings.TrimSpace(line)

		var err error
		switch {
		case len(pending) == 0 && trimmed == "":
		case len(pending) == 0 && strings.HasPrefix(trimmed, ":"):
			err = s.command(ctx, trimmed)
		case trimmed == "":
			err = s.runInline(ctx, pending)
			pending = nil
		default:
			pending = append(pending, line)
		}

		if errors.Is(err, errQuit) {
			return nil
		}
		if err := s.report(err); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.prompt(pending)
	}
	if err := s.in.Err(); err != nil {
		return err
	}
	if len(pending) > 0 {
		return s.report(s.runInline(ctx, pending))
	}
	return nil
}

func (s *Shell) prompt(pending []string) {
	if s.Prompt == "" {
		return
	}
	if len(pending) > 0 {
		fmt.Fprint(s.out, continuationPrompt)
		return
	}
	fmt.Fprint(s.out, s.Prompt)
}

// report returns fatal errors and prints the rest.
// An unknown abbreviation only fails the query that used it
func (s *Shell) report(err error) error {
	if err == nil {
		return nil
	}
	var abbreviationErr *query.AbbreviationNotFoundError
	if errors.As(err, &abbreviationErr) {
		fmt.Fprintln(s.out, err)
		return nil
	}
	if query.IsFatal(err) {
		return err
	}
	var timeoutErr *sparql.QueryTimeoutError
	var queryErr *sparql.QueryError
	if errors.As(err, &timeoutErr) || errors.As(err, &queryErr) {
		// already logged by the environment
		return nil
	}
	fmt.Fprintln(s.out, err)
	return nil
}

func (s *Shell) runInline(ctx context.Context, lines []string) error {
	_, err := s.env.Run(ctx, query.InlineQuery{Text: strings.Join(lines, "\n")}, s.format)
	return err
}

func (s *Shell) command(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	log.Debugf("shell command %s %v", name, args)

	switch name {
	case ":quit", ":q", ":exit":
		return errQuit
	case ":help", ":h":
		fmt.Fprintln(s.out, help)
		return nil
	case ":list", ":ls":
		return s.env.PrintQueryList()
	case ":run":
		if len(args) != 1 {
			return fmt.Errorf("usage: :run N|NAME")
		}
		var spec query.Spec = query.NamedQuery{Name: args[0]}
		if index, err := strconv.Atoi(args[0]); err == nil {
			spec = query.StoredQuery{Index: index}
		}
		_, err := s.env.Run(ctx, spec, s.format)
		return err
	case ":search":
		if len(args) < 2 {
			return fmt.Errorf("usage: :search strict|extended|quick WORDS")
		}
		mode, err := environment.ParseSearchMode(args[0])
		if err != nil {
			return err
		}
		_, err = s.env.KeywordSearch(ctx, strings.Join(args[1:], " "), mode, s.format)
		return err
	case ":history":
		s.env.PrintHistory()
		return nil
	case ":latest", ":resolved":
		offset, err := offsetArg(args)
		if err != nil {
			return err
		}
		s.env.PrintLatestQuery(offset, name == ":resolved")
		return nil
	case ":response":
		offset, err := offsetArg(args)
		if err != nil {
			return err
		}
		return s.env.PrintLatestResponse(offset, s.format)
	case ":clear":
		s.env.ClearHistory()
		return nil
	case ":endpoint":
		if len(args) == 0 {
			fmt.Fprintln(s.out, s.env.Endpoint())
			return nil
		}
		s.env.SetEndpoint(args[0])
		return nil
	case ":prefixes":
		s.env.PrintPrefixes()
		return nil
	case ":reload":
		// a broken prefix file leaves the previous table in place
		if err := s.env.ReloadPrefixes(); err != nil {
			return fmt.Errorf("prefixes not reloaded: %v", err)
		}
		return nil
	case ":format":
		if len(args) == 0 {
			fmt.Fprintln(s.out, s.format)
			return nil
		}
		format, err := render.ParseFormat(args[0])
		if err != nil {
			return err
		}
		s.format = format
		return nil
	default:
		return fmt.Errorf("unknown command %s; try :help", name)
	}
}

// offsetArg reads the optional offset of the history commands
func offsetArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%q is not a history offset", args[0])
	}
	return offset, nil
}
