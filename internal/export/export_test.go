package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/policy"
	"github.com/evcraddock/lead-ledger/internal/property"
	"github.com/google/go-cmp/cmp"
)

var t0 = time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

// testLedger builds a ledger with one owner of two properties and a second
// contact who opted out.
func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New(ledger.WithClock(func() time.Time { return t0 }))

	units := int64(12)
	value := 1250000.0
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	_, err := l.UpsertContact("9195551234", ledger.ContactAttrs{DisplayName: "Pat Owner"})
	must(err)
	_, err = l.UpsertContact("9195559999", ledger.ContactAttrs{})
	must(err)
	_, err = l.UpsertProperty("100 Market Street", property.Attrs{
		Type:           property.TypeMultiFamily,
		TypeConfidence: 95,
		Units:          &units,
		EstimatedValue: &value,
	})
	must(err)
	_, err = l.UpsertProperty("22 Elm Drive", property.Attrs{})
	must(err)

	must(l.AssociateOwner("9195551234", "100 Market St"))
	must(l.RecordContactAttempt("9195551234", "22 Elm Dr", t0.Add(-24*time.Hour)))
	_, err = l.RecordResponse("9195551234", "22 Elm Dr", "how much?", t0.Add(-time.Hour))
	must(err)
	_, err = l.RecordResponse("9195559999", "22 Elm Dr", "STOP", t0.Add(-2*time.Hour))
	must(err)
	return l
}

func TestBuild(t *testing.T) {
	l := testLedger(t)

	rows, err := Build(l, policy.New(policy.DefaultConfig()), nil, t0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	type key struct {
		Phone, Address, Decision string
	}
	var got []key
	for _, r := range rows {
		got = append(got, key{r.Phone, r.Address, r.Decision.String()})
	}
	want := []key{
		{"19195551234", "100 market st", "ALLOWED/NEW_PROPERTY_SAME_OWNER"},
		{"19195551234", "22 elm dr", "BLOCKED/ALREADY_CONTACTED_RECENTLY"},
		{"19195559999", "22 elm dr", "BLOCKED/OPTED_OUT"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	market := rows[0]
	if want := (property.DefaultScorer{}).Score(mustProperty(t, l, "100 Market St")); market.PriorityScore != want {
		t.Errorf("priority score = %d, want %d", market.PriorityScore, want)
	}
	if market.PriorityScore <= rows[1].PriorityScore {
		t.Errorf("rows not ordered by priority: %d then %d", market.PriorityScore, rows[1].PriorityScore)
	}
	if market.Classification != "" || !market.ResponseDate.IsZero() {
		t.Errorf("ownership-only row has response data: %+v", market)
	}

	elm := rows[1]
	if elm.Classification != string(classifier.Hot) || elm.Action != string(classifier.ActionContactNow) {
		t.Errorf("classification = %s/%s, want HOT/CONTACT_NOW", elm.Classification, elm.Action)
	}
	if elm.LastMessage != "how much?" || !elm.ResponseDate.Equal(t0.Add(-time.Hour)) {
		t.Errorf("last response = %q at %v", elm.LastMessage, elm.ResponseDate)
	}
	if !rows[2].OptedOut {
		t.Error("opted-out contact exported as reachable")
	}
}

func TestBuildIgnoresQuietHours(t *testing.T) {
	l := testLedger(t)

	cfg := policy.DefaultConfig()
	cfg.QuietHours = policy.QuietHours{Start: 14, End: 16}
	p := policy.New(cfg)

	rows, err := Build(l, p, nil, t0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.Decision.String())
	}
	want := []string{
		"ALLOWED/NEW_PROPERTY_SAME_OWNER",
		"BLOCKED/ALREADY_CONTACTED_RECENTLY",
		"BLOCKED/OPTED_OUT",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decisions mismatch (-want +got):\n%s", diff)
	}

	// The policy itself still applies quiet hours.
	d, err := p.Evaluate(l, "9195551234", "100 Market St", t0)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if d.Reason != policy.ReasonQuietHours {
		t.Errorf("direct decision = %s, want BLOCKED/QUIET_HOURS", d)
	}
}

func TestOfType(t *testing.T) {
	rows, err := Build(testLedger(t), policy.New(policy.DefaultConfig()), nil, t0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	multi := OfType(rows, property.TypeMultiFamily)
	if len(multi) != 1 || multi[0].Address != "100 market st" {
		t.Errorf("multi family rows = %+v", multi)
	}
	if len(rows) != 3 {
		t.Errorf("OfType modified its input: %d rows left", len(rows))
	}
}

func TestBuildCustomScorer(t *testing.T) {
	l := testLedger(t)

	// Rank the unknown-type property first.
	scorer := property.ScorerFunc(func(p *property.Property) int {
		if p.Type == property.TypeUnknown {
			return 100
		}
		return 1
	})
	rows, err := Build(l, policy.New(policy.DefaultConfig()), scorer, t0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if rows[0].Address != "22 elm dr" || rows[2].Address != "100 market st" {
		t.Errorf("order = %s, %s, %s", rows[0].Address, rows[1].Address, rows[2].Address)
	}
}

func TestWriteCSV(t *testing.T) {
	l := testLedger(t)
	rows, err := Build(l, policy.New(policy.DefaultConfig()), nil, t0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want header + 3", len(records))
	}
	if diff := cmp.Diff(Header, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	market := records[1]
	wantMarket := map[string]string{
		"Contact Name":     "Pat Owner",
		"Phone Number":     "(919) 555-1234",
		"Property Address": "100 Market Street",
		"Property Type":    property.TypeMultiFamily.Label(),
		"Classification":   "",
		"Confidence":       "",
		"Estimated Value":  "1250000",
		"Equity":           "",
		"Opted Out":        "false",
		"Decision":         "ALLOWED",
		"Reason":           "",
		"Variant":          "NEW_PROPERTY_SAME_OWNER",
	}
	for i, col := range Header {
		want, ok := wantMarket[col]
		if !ok {
			continue
		}
		if market[i] != want {
			t.Errorf("%s = %q, want %q", col, market[i], want)
		}
	}

	stop := records[3]
	if stop[0] != "Unknown" {
		t.Errorf("contact name = %q, want Unknown for unnamed contact", stop[0])
	}
	if stop[4] != string(classifier.OptOut) || stop[15] != string(policy.ReasonOptedOut) {
		t.Errorf("opt-out row = %v", stop)
	}
}

func mustProperty(t *testing.T, l *ledger.Ledger, addr string) *property.Property {
	t.Helper()
	p, err := l.Property(addr)
	if err != nil {
		t.Fatalf("Property(%q): %v", addr, err)
	}
	return p
}
