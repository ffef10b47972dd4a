package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Loans",
		Headers: []string{"Loan No", "EMI"},
		Rows: [][]string{
			{"HL-1", Money(10662)},
			SeparatorRow,
			{"Total", Money(1234567)},
		},
	})

	for _, want := range []string{"Loans", "Loan No", "HL-1", "₹10,662", "₹1,234,567", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// title, top, header, header rule, row, separator, row, bottom
	if lines := strings.Count(out, "\n"); lines != 8 {
		t.Errorf("got %d lines, want 8:\n%s", lines, out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if out := RenderTable(Table{}); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		s     string
		width int
		right bool
		want  string
	}{
		{"ab", 4, false, "ab  "},
		{"ab", 4, true, "  ab"},
		{"₹5", 4, true, "  ₹5"},
		{"toolong", 3, false, "toolong"},
	}
	for _, tt := range tests {
		if got := pad(tt.s, tt.width, tt.right); got != tt.want {
			t.Errorf("pad(%q, %d, %v) = %q, want %q", tt.s, tt.width, tt.right, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		filled   int
		pct      string
	}{
		{0, 0, "0%"},
		{0.5, 5, "50%"},
		{1.4, 10, "100%"},
		{-1, 0, "0%"},
	}
	for _, tt := range tests {
		out := RenderProgressBar(tt.progress, 10)
		if got := strings.Count(out, "█"); got != tt.filled {
			t.Errorf("progress %v: %d filled cells, want %d", tt.progress, got, tt.filled)
		}
		if !strings.HasSuffix(out, tt.pct) {
			t.Errorf("progress %v: %q does not end with %q", tt.progress, out, tt.pct)
		}
	}
}
