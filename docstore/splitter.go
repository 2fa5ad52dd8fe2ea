package docstore

import (
	"strings"
	"unicode"
)

// SentenceSplitter breaks document text into sentence-sized pieces for
// chunking.
type SentenceSplitter interface {
	Split(text string) []string
}

// bidAbbreviations end with a period without ending a sentence in
// procurement and construction documents.
var bidAbbreviations = map[string]bool{
	"no":     true,
	"sec":    true,
	"fig":    true,
	"inc":    true,
	"llc":    true,
	"co":     true,
	"ltd":    true,
	"approx": true,
	"etc":    true,
	"ea":     true,
	"sq":     true,
	"ft":     true,
	"yd":     true,
	"qty":    true,
	"rev":    true,
	"spec":   true,
}

// BidTextSplitter splits RFP and proposal text on sentence boundaries while
// keeping item numbers ("1.02"), decimal amounts, and unit abbreviations
// ("120 sq. ft.") intact. Schedule lines frequently carry no terminal
// punctuation, so a line break that opens a new list item also splits.
type BidTextSplitter struct{}

func NewBidTextSplitter() BidTextSplitter {
	return BidTextSplitter{}
}

func (BidTextSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	var sentences []string
	var builder strings.Builder

	isBoundary := func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}

	flush := func() {
		if builder.Len() == 0 {
			return
		}
		sentence := strings.TrimSpace(builder.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		builder.Reset()
	}

	for idx, r := range runes {
		if r == '\n' && startsListItem(runes[idx+1:]) {
			flush()
			continue
		}
		builder.WriteRune(r)
		if !isBoundary(r) {
			continue
		}
		if r == '.' {
			// Decimals and item numbers like "1.02" keep their period.
			if idx > 0 && idx+1 < len(runes) && unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(runes[idx+1]) {
				continue
			}
			if bidAbbreviations[wordBeforePeriod(builder.String())] {
				continue
			}
		}
		// Look ahead to determine if this is end of sentence
		next := idx + 1
		for next < len(runes) && (runes[next] == ' ' || runes[next] == '\n' || runes[next] == '\t') {
			next++
		}
		if next >= len(runes) || isBoundary(runes[next]) {
			continue
		}
		flush()
	}

	flush()

	if len(sentences) == 0 {
		return []string{trimmed}
	}
	return sentences
}

// wordBeforePeriod returns the lowercased word that precedes the trailing
// period of s, "" when the period does not follow a word.
func wordBeforePeriod(s string) string {
	s = strings.TrimSuffix(s, ".")
	end := len(s)
	start := strings.LastIndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) + 1
	if start >= end {
		return ""
	}
	return strings.ToLower(s[start:end])
}

// startsListItem reports whether the text opens a new schedule entry: a
// bullet, a dash, or an item number like "1.02" or "3)".
func startsListItem(rest []rune) bool {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	if i >= len(rest) {
		return false
	}
	if rest[i] == '-' || rest[i] == '•' {
		return true
	}
	j := i
	for j < len(rest) && unicode.IsDigit(rest[j]) {
		j++
	}
	return j > i && j < len(rest) && (rest[j] == '.' || rest[j] == ')')
}
