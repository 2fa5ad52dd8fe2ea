// Package extract turns uploaded PDFs into text the agents can read.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Text extracts all text content from a PDF file, with page markers and
// tabular regions annotated so the agents can locate bid forms.
func (e *Extractor) Text(pdfPath string) (string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var fullText strings.Builder
	totalPages := r.NumPage()

	e.logger.Debug("Extracting text from PDF",
		zap.String("path", pdfPath),
		zap.Int("pages", totalPages))

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			e.logger.Warn("Skipping null page", zap.Int("page", pageNum))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		fullText.WriteString(fmt.Sprintf("--- Page %d ---\n", pageNum))
		fullText.WriteString(markTables(text))
		fullText.WriteString("\n\n")
	}

	extracted := fullText.String()
	e.logger.Info("PDF text extraction completed",
		zap.String("path", pdfPath),
		zap.Int("pages", totalPages),
		zap.Int("characters", len(extracted)))

	return extracted, nil
}

// TruncateForPrompt bounds text to roughly maxTokens, cutting at a sentence
// boundary so the model never sees a half sentence. Token counts are estimated
// at 4 characters per token.
func (e *Extractor) TruncateForPrompt(text string, maxTokens int) string {
	if maxTokens <= 0 || estimateTokens(text) <= maxTokens {
		return text
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		e.logger.Warn("Sentence detection failed, truncating at character boundary", zap.Error(err))
		return cutAtRune(text, maxTokens*4)
	}

	var out strings.Builder
	for _, sent := range doc.Sentences() {
		if estimateTokens(out.String()+sent.Text) > maxTokens {
			break
		}
		out.WriteString(sent.Text)
		out.WriteString(" ")
	}
	if out.Len() == 0 {
		return cutAtRune(text, maxTokens*4)
	}

	e.logger.Info("Truncated document for prompt",
		zap.Int("original_chars", len(text)),
		zap.Int("kept_chars", out.Len()))
	return strings.TrimSpace(out.String())
}

func estimateTokens(text string) int {
	return len(text) / 4
}

// cutAtRune truncates text to at most limit bytes without slicing through a
// multibyte rune.
func cutAtRune(text string, limit int) string {
	if limit >= len(text) {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

var tablePattern = regexp.MustCompile(`\s{3,}|\t+`)

// markTables wraps runs of column-aligned lines in [TABLE]...[/TABLE] markers.
// Three or more consecutive lines with at least two wide gaps count as a
// table. Candidate lines are buffered until the run ends so the opening
// marker lands before the first row.
func markTables(text string) string {
	lines := strings.Split(text, "\n")
	var result strings.Builder
	var pending []string

	flushPending := func() {
		if len(pending) >= 3 {
			result.WriteString("[TABLE]\n")
			for _, l := range pending {
				result.WriteString(l + "\n")
			}
			result.WriteString("[/TABLE]\n")
		} else {
			for _, l := range pending {
				result.WriteString(l + "\n")
			}
		}
		pending = pending[:0]
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && len(tablePattern.FindAllString(line, -1)) >= 2 {
			pending = append(pending, line)
			continue
		}
		flushPending()
		result.WriteString(line + "\n")
	}
	flushPending()
	return result.String()
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Emails returns the distinct email addresses found in text, in document order.
func Emails(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range emailPattern.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if !seen[lower] {
			seen[lower] = true
			out = append(out, m)
		}
	}
	return out
}
