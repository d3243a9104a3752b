package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Column aliases seen across platform exports. Headers are matched after
// normalizeHeader.
var (
	phoneColumns     = []string{"phone", "phone_number", "mobile", "cell", "owner_phone", "contact_phone"}
	addressColumns   = []string{"address", "property_address", "property_address_full", "property_address_line_1", "street_address"}
	messageColumns   = []string{"message", "response", "message_body", "body", "text", "reply"}
	timestampColumns = []string{"timestamp", "date", "response_date", "received_at", "sent_at", "created_at", "date_time"}
	nameColumns      = []string{"name", "contact_name", "owner_name", "full_name", "owner"}
	directionColumns = []string{"direction", "message_direction"}
)

// table reads a CSV with a header row and looks columns up by alias.
type table struct {
	r      *csv.Reader
	index  map[string]int
	line   int
	header []string
}

func newTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := &table{r: cr, index: make(map[string]int, len(header)), line: 1, header: header}
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

// normalizeHeader lower-cases a header and joins words with underscores:
// "Phone Number" and "phone-number" both become "phone_number".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	}), "_")
}

// has reports whether any alias is present in the header.
func (t *table) has(aliases []string) bool {
	for _, a := range aliases {
		if _, ok := t.index[a]; ok {
			return true
		}
	}
	return false
}

// require returns an error naming the first alias group missing from the
// header.
func (t *table) require(groups ...[]string) error {
	for _, g := range groups {
		if !t.has(g) {
			return fmt.Errorf("missing required column %q (header: %s)", g[0], strings.Join(t.header, ", "))
		}
	}
	return nil
}

// next returns the next record, or io.EOF. A malformed record still
// advances the line count.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, err
	}
	t.line++
	return rec, err
}

// get returns the first non-empty value among the aliases.
func (t *table) get(rec []string, aliases ...string) string {
	for _, a := range aliases {
		i, ok := t.index[a]
		if !ok || i >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[i]); v != "" {
			return v
		}
	}
	return ""
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

// parseTimestamp parses the timestamp formats used by the texting platform.
// Layouts without a zone are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseFloat parses money and percentage values such as "$1,250,000" or
// "45%". Empty input yields nil.
func parseFloat(s string) (*float64, error) {
	s = strings.NewReplacer("$", "", ",", "", "%", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

// parseInt parses counts such as "12" or "1,800". Empty input yields nil.
func parseInt(s string) (*int64, error) {
	f, err := parseFloat(s)
	if err != nil || f == nil {
		return nil, err
	}
	v := int64(*f)
	return &v, nil
}

// parseBool accepts the flag encodings seen in enrichment exports.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

// splitFlags splits a comma separated flag list.
func splitFlags(s string) []string {
	var flags []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			flags = append(flags, f)
		}
	}
	return flags
}
