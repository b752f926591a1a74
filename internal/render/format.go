// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
)

// How a response is written out
type Format string

const (
	// pretty printed json with sorted keys
	FormatJSON Format = "json"
	// the payload exactly as the endpoint sent it
	FormatRaw Format = "raw"
	// nothing is printed; the caller formats the result itself
	FormatNone     Format = "none"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatNTriples Format = "ntriples"
)

var allFormats = []Format{FormatJSON, FormatRaw, FormatNone, FormatHTML, FormatMarkdown, FormatNTriples}

// ParseFormat accepts a format name case insensitively; an empty name is json
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatJSON, nil
	}
	for _, format := range allFormats {
		if strings.EqualFold(name, string(format)) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q; expected one of %v", name, allFormats)
}
