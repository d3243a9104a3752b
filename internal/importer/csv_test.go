package importer

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Phone Number", "phone_number"},
		{"phone-number", "phone_number"},
		{"  Property Address ", "property_address"},
		{"\ufeffPhone", "phone"},
		{"Response Date", "response_date"},
		{"units_count", "units_count"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeHeader(tt.in); got != tt.want {
				t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableGetFallsBackAcrossAliases(t *testing.T) {
	tbl, err := newTable(strings.NewReader("phone,mobile,extra\n,9195551234\n"))
	if err != nil {
		t.Fatalf("newTable() error: %v", err)
	}
	rec, err := tbl.next()
	if err != nil {
		t.Fatalf("next() error: %v", err)
	}
	if got := tbl.get(rec, phoneColumns...); got != "9195551234" {
		t.Errorf("get() = %q, want the first non-empty alias", got)
	}
	if got := tbl.get(rec, "extra"); got != "" {
		t.Errorf("get() on short record = %q, want empty", got)
	}
	if tbl.line != 2 {
		t.Errorf("line = %d, want 2", tbl.line)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-08-01T10:00:00Z", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
		{"2026-08-01 10:00:05", time.Date(2026, 8, 1, 10, 0, 5, 0, time.UTC)},
		{"2026-08-01", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"08/01/2026 10:00", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
		{"8/1/2026", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp(tt.in, time.UTC)
			if err != nil {
				t.Fatalf("parseTimestamp(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := parseTimestamp("last tuesday", time.UTC); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		isNil   bool
		wantErr bool
	}{
		{"$1,250,000", 1250000, false, false},
		{"45%", 45, false, false},
		{" 12.5 ", 12.5, false, false},
		{"", 0, true, false},
		{"many", 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFloat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFloat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if (got == nil) != tt.isNil {
				t.Fatalf("parseFloat(%q) = %v, want nil %v", tt.in, got, tt.isNil)
			}
			if got != nil && *got != tt.want {
				t.Errorf("parseFloat(%q) = %v, want %v", tt.in, *got, tt.want)
			}
		})
	}

	n, err := parseInt("1,800")
	if err != nil || n == nil || *n != 1800 {
		t.Errorf("parseInt(1,800) = %v, %v", n, err)
	}
}

func TestParseBoolAndFlags(t *testing.T) {
	for _, in := range []string{"1", "true", "Yes", "Y", "t"} {
		if !parseBool(in) {
			t.Errorf("parseBool(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"", "0", "no", "false", "maybe"} {
		if parseBool(in) {
			t.Errorf("parseBool(%q) = true, want false", in)
		}
	}

	got := splitFlags(" High Equity, ,Absentee Owner ")
	if len(got) != 2 || got[0] != "High Equity" || got[1] != "Absentee Owner" {
		t.Errorf("splitFlags() = %q", got)
	}
}
