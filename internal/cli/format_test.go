package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
		{"multibyte", "Don’t text me again", 8, "Don’t..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(time.Time{}); got != "-" {
		t.Errorf("formatTime(zero) = %q, want -", got)
	}
	ts := time.Date(2026, 9, 1, 15, 4, 0, 0, time.UTC)
	if got := formatTime(ts); got != "2026-09-01 15:04" {
		t.Errorf("formatTime() = %q", got)
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("call me\n  after 5\tpm"); got != "call me after 5 pm" {
		t.Errorf("oneLine() = %q", got)
	}
}

func TestPrintClassifications(t *testing.T) {
	var buf bytes.Buffer
	items := []classified{
		{Message: "STOP", Result: classifier.Classify("STOP")},
		{Message: "maybe", Result: classifier.Classify("maybe")},
	}
	if err := printClassifications(&buf, items); err != nil {
		t.Fatalf("printClassifications: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], string(classifier.OptOut)) {
		t.Errorf("first row = %q, want OPT_OUT", lines[1])
	}
	if !strings.HasPrefix(lines[2], string(classifier.Warm)) {
		t.Errorf("second row = %q, want WARM", lines[2])
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{-time.Minute, "-"},
		{45 * time.Minute, "45m ago"},
		{3*time.Hour + 10*time.Minute, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}

	for _, tt := range tests {
		if got := formatAge(tt.age); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.age, got, tt.want)
		}
	}
}
