package bidform

import (
	"encoding/json"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{name: "currency_with_thousands", input: "$1,295,648.70", want: 1295648.70, wantOK: true},
		{name: "plain_currency", input: "$100.00", want: 100.0, wantOK: true},
		{name: "bare_number_string", input: "45000", want: 45000, wantOK: true},
		{name: "float_input", input: 45000.0, want: 45000.0, wantOK: true},
		{name: "int_input", input: 42, want: 42, wantOK: true},
		{name: "json_number", input: json.Number("7.49"), want: 7.49, wantOK: true},
		{name: "negative", input: "-12.50", want: -12.5, wantOK: true},
		{name: "internal_whitespace", input: " $ 1,000 ", want: 1000, wantOK: true},
		{name: "tbd", input: "TBD", wantOK: false},
		{name: "tbd_lowercase", input: "tbd", wantOK: false},
		{name: "not_applicable", input: "N/A", wantOK: false},
		{name: "dash", input: "-", wantOK: false},
		{name: "em_dash", input: "—", wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace_only", input: "   ", wantOK: false},
		{name: "nil", input: nil, wantOK: false},
		{name: "garbage", input: "call for pricing", wantOK: false},
		{name: "unsupported_type", input: []string{"1"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Normalize(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150.5, "$150.50"},
		{11.59, "$11.59"},
		{0, "$0.00"},
		{1295648.70, "$1,295,648.70"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
