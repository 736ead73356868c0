// Package normalize converts curator-written cells and remote store values
// into canonical forms used strictly for comparison, and encodes declared
// cells into typed store values.
//
// Spreadsheet and store use different surface representations of the same
// value ("yes" vs "1", "3" vs "3.0", "2024-01-02" vs a midnight timestamp),
// so raw display strings are never compared directly.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// Name returns the dedup key for a display name: Unicode case-folded,
// whitespace-collapsed and trimmed.
func Name(s string) string {
	// A Caser carries state, so one is created per call.
	folded := cases.Fold().String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// IsBlank reports whether a cell holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SplitList splits a multi-valued cell on semicolons and newlines, trimming
// each item and dropping empty ones.
func SplitList(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Unique drops items whose normalized name was already seen, keeping the
// first spelling.
func Unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := Name(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
