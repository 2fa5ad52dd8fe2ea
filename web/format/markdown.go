// Package format prepares consultant replies for display.
package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
)

// RenderMarkdown converts a consultant reply to HTML for the chat panel.
func RenderMarkdown(text string) string {
	return string(markdown.ToHTML([]byte(Preprocess(text)), nil, nil))
}

// Preprocess normalizes LLM output for readability.
func Preprocess(text string) string {
	if text == "" {
		return text
	}

	// Replace curly quotes
	return strings.NewReplacer(
		"“", "\"",
		"”", "\"",
		"‘", "'",
		"’", "'",
	).Replace(text)
}
