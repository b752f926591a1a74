// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"errors"
	"fmt"

	"github.com/internetofwater/sparqlbuddy/internal/prefixes"
)

// Returned when a stored query cannot be found by index or name
type FileResolutionError struct {
	// the reference that failed, either an index or a file name
	Reference string
	Err       error
}

func (e *FileResolutionError) Error() string {
	return fmt.Sprintf("could not resolve stored query %s: %v", e.Reference, e.Err)
}

func (e *FileResolutionError) Unwrap() error {
	return e.Err
}

// Returned when a prefix abbreviation is still unknown after reloading the prefix table
type AbbreviationNotFoundError struct {
	Abbreviation string
}

func (e *AbbreviationNotFoundError) Error() string {
	return fmt.Sprintf("prefix abbreviation %q not found in the prefix table", e.Abbreviation)
}

// IsFatal reports whether an error means the setup or the
// query reference is unusable, as opposed to a failed query
// that can simply be retried later
func IsFatal(err error) bool {
	var fileErr *FileResolutionError
	var abbreviationErr *AbbreviationNotFoundError
	var configErr *prefixes.ConfigurationError
	return errors.As(err, &fileErr) || errors.As(err, &abbreviationErr) || errors.As(err, &configErr)
}
