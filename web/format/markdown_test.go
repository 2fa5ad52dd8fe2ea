package format

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	html := RenderMarkdown("This looks **great**! Review the draft on the right.")
	if !strings.Contains(html, "<strong>great</strong>") {
		t.Errorf("bold not rendered: %s", html)
	}
}

func TestPreprocessCurlyQuotes(t *testing.T) {
	got := Preprocess("“Budget” is ‘TBD’")
	if got != `"Budget" is 'TBD'` {
		t.Errorf("got %q", got)
	}
}
