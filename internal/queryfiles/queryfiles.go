// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package queryfiles exposes a directory of stored query files
// as a zero based index
package queryfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Index maps a zero based position to a filename inside the query directory
type Index []string

// Directory is a folder of stored queries. Each file holds a line of
// prefix abbreviations followed by the SPARQL body
type Directory struct {
	Path string
	// optional doublestar pattern matched against the file name
	Glob string
}

// List builds a fresh index of the directory. Hidden entries and
// subdirectories are skipped and names are sorted so indices are stable
func (d Directory) List() (Index, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, err
	}
	if d.Glob != "" && !doublestar.ValidatePattern(d.Glob) {
		return nil, fmt.Errorf("invalid query glob %q", d.Glob)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.IsDir() {
			continue
		}
		if d.Glob != "" {
			matched, err := doublestar.Match(d.Glob, name)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return Index(names), nil
}

// Name returns the filename at a given position
func (i Index) Name(position int) (string, bool) {
	if position < 0 || position >= len(i) {
		return "", false
	}
	return i[position], true
}

// Read returns the contents of a file in the directory
func (d Directory) Read(name string) (string, error) {
	// keep lookups inside the query directory
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("%q is not a file name inside %s", name, d.Path)
	}
	data, err := os.ReadFile(filepath.Join(d.Path, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
