package docstore

import (
	"strings"
	"testing"
)

func TestBidTextSplitter(t *testing.T) {
	splitter := NewBidTextSplitter()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two sentences",
			in:   "The roof must be replaced. Work starts in June.",
			want: []string{"The roof must be replaced.", "Work starts in June."},
		},
		{
			name: "abbreviation-like trailing period kept with next boundary",
			in:   "Bids are due Friday!? Submit early.",
			want: []string{"Bids are due Friday!?", "Submit early."},
		},
		{
			name: "item numbers and amounts stay whole",
			in:   "Item 1.02 covers flashing at $1,250.50 per unit. Item 1.03 covers coping.",
			want: []string{"Item 1.02 covers flashing at $1,250.50 per unit.", "Item 1.03 covers coping."},
		},
		{
			name: "unit abbreviations do not split",
			in:   "Approx. 120 sq. ft. of membrane is required. Submit unit pricing.",
			want: []string{"Approx. 120 sq. ft. of membrane is required.", "Submit unit pricing."},
		},
		{
			name: "unpunctuated schedule lines split on item numbers",
			in:   "Section I Structural\n1.01 Demo existing roof\n1.02 Install membrane",
			want: []string{"Section I Structural", "1.01 Demo existing roof", "1.02 Install membrane"},
		},
		{
			name: "no terminal punctuation",
			in:   "lump sum bid form",
			want: []string{"lump sum bid form"},
		},
		{
			name: "empty",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitter.Split(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkRespectsCap(t *testing.T) {
	s := &Store{splitter: NewBidTextSplitter()}

	text := strings.Repeat("This sentence describes one line item of the bid form. ", 100)
	chunks := s.chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > maxChunkChars {
			t.Errorf("chunk %d exceeds cap: %d chars", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestChunkHardSplitsLongSentence(t *testing.T) {
	s := &Store{splitter: NewBidTextSplitter()}

	long := strings.Repeat("x", maxChunkChars*2+10)
	chunks := s.chunk(long)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for oversized sentence, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > maxChunkChars {
			t.Errorf("chunk %d exceeds cap: %d chars", i, len(c))
		}
	}
}
