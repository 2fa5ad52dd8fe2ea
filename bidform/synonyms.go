package bidform

import (
	"strings"
)

// synonymGroups is the fixed table used to expand column words before
// comparing them. Each group is symmetric: every member expands to the whole
// group.
var synonymGroups = [][]string{
	{"price", "cost", "rate", "fee"},
	{"qty", "quantity"},
	{"total", "sum", "amount"},
	{"unit", "uom"},
	{"description", "desc", "scope"},
	{"item", "line"},
	{"hours", "hrs"},
}

// synonyms maps a word to its full expansion set, built once from
// synonymGroups.
var synonyms = func() map[string][]string {
	m := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, word := range group {
			m[word] = group
		}
	}
	return m
}()

// ResolveColumn decides which of the candidate field names (in iteration
// order) represents the canonical column. Exact match after symbol stripping
// wins immediately; otherwise a candidate is accepted when its
// synonym-expanded word set shares at least two words with the canonical
// column's, or both sides reduce to a single identical word. The first
// qualifying candidate wins; ties are not re-evaluated. Returns false when
// nothing qualifies.
//
// This is a heuristic, not a guarantee: two unrelated columns sharing two
// generic words will false-positive. Callers log near-misses for review.
func ResolveColumn(canonical string, candidates []string) (string, bool) {
	canonNorm := stripSymbols(canonical)
	canonWords := splitWords(canonical)
	canonExpanded := expandWords(canonWords)

	for _, candidate := range candidates {
		if stripSymbols(candidate) == canonNorm {
			return candidate, true
		}

		candWords := splitWords(candidate)
		candExpanded := expandWords(candWords)

		shared := 0
		for word := range candExpanded {
			if canonExpanded[word] {
				shared++
			}
		}
		if shared >= 2 {
			return candidate, true
		}
		if len(canonWords) == 1 && len(candWords) == 1 && shared >= 1 {
			return candidate, true
		}
	}

	return "", false
}

// splitWords lowercases a column name and splits it on space, underscore and
// hyphen, dropping empty fragments.
func splitWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

// expandWords returns the word set plus every synonym of every word.
func expandWords(words []string) map[string]bool {
	expanded := make(map[string]bool, len(words)*2)
	for _, word := range words {
		expanded[word] = true
		for _, syn := range synonyms[word] {
			expanded[syn] = true
		}
	}
	return expanded
}

// stripSymbols lowercases and removes separators and punctuation so that
// "Unit Cost", "unit_cost" and "unitcost" compare equal.
func stripSymbols(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-', '.', '/', '(', ')', '%', '$', '#':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
