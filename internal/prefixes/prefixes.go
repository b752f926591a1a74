// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package prefixes

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/knakk/rdf"
	log "github.com/sirupsen/logrus"
)

// An error in the prefix file that makes the table unusable
type ConfigurationError struct {
	File string
	// 1-based line number; 0 if the error is not tied to a line
	Line int
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("invalid prefix file %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("invalid prefix file %s at line %d: %v", e.File, e.Line, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Table maps an abbreviation to the namespace IRI it stands for.
// It is backed by a two column csv file with no header
type Table struct {
	path    string
	entries map[string]string
}

// Load reads the prefix file at path into a new table
func Load(path string) (*Table, error) {
	table := &Table{path: path}
	if err := table.Reload(); err != nil {
		return nil, err
	}
	return table, nil
}

// NewTableFromMap builds a table that is not backed by a file;
// reloading it keeps the original entries
func NewTableFromMap(entries map[string]string) *Table {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Table{entries: copied}
}

// Reload re-reads the backing file. The table is left untouched if the file is invalid
func (t *Table) Reload() error {
	if t.path == "" {
		return nil
	}
	entries, err := parseFile(t.path)
	if err != nil {
		return err
	}
	t.entries = entries
	log.Debugf("loaded %d prefixes from %s", len(entries), t.path)
	return nil
}

// Lookup returns the namespace IRI for an abbreviation
func (t *Table) Lookup(abbreviation string) (string, bool) {
	iri, ok := t.entries[abbreviation]
	return iri, ok
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Abbreviations returns all known abbreviations in sorted order
func (t *Table) Abbreviations() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *Table) Path() string {
	return t.path
}

func parseFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ConfigurationError{File: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		// the csv reader silently skips blank lines so we need to check them ourselves
		if strings.TrimSpace(line) == "" {
			return nil, &ConfigurationError{File: path, Line: lineNumber, Err: fmt.Errorf("blank lines are not allowed")}
		}
		record, err := csv.NewReader(strings.NewReader(line)).Read()
		if err != nil {
			return nil, &ConfigurationError{File: path, Line: lineNumber, Err: err}
		}
		if len(record) != 2 {
			return nil, &ConfigurationError{File: path, Line: lineNumber, Err: fmt.Errorf("expected 2 columns but got %d", len(record))}
		}
		abbreviation := strings.TrimSpace(record[0])
		iri := strings.TrimSpace(record[1])
		if abbreviation == "" || iri == "" {
			return nil, &ConfigurationError{File: path, Line: lineNumber, Err: fmt.Errorf("abbreviation and iri must both be set")}
		}
		if _, exists := entries[abbreviation]; exists {
			return nil, &ConfigurationError{File: path, Line: lineNumber, Err: fmt.Errorf("duplicate abbreviation %q", abbreviation)}
		}
		if _, err := rdf.NewIRI(strings.TrimSuffix(strings.TrimPrefix(iri, "<"), ">")); err != nil {
			return nil, &ConfigurationError{File: path, Line: lineNumber, Err: fmt.Errorf("%q is not a valid iri: %w", iri, err)}
		}
		entries[abbreviation] = iri
	}
	if err := scanner.Err(); err != nil {
		return nil, &ConfigurationError{File: path, Err: err}
	}
	return entries, nil
}
