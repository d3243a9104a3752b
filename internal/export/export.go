// Package export flattens the ledger into one row per contact and property
// pair for a CRM workspace import.
package export

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/phone"
	"github.com/evcraddock/lead-ledger/internal/policy"
	"github.com/evcraddock/lead-ledger/internal/property"
)

// Row is one exported link.
type Row struct {
	ContactName     string          `json:"contact_name"`
	Phone           string          `json:"phone"`
	Address         string          `json:"address"`
	DisplayAddress  string          `json:"display_address"`
	PropertyType    string          `json:"property_type"`
	Type            property.Type   `json:"-"`
	Classification  string          `json:"classification,omitempty"`
	Confidence      int             `json:"confidence,omitempty"`
	Action          string          `json:"action,omitempty"`
	LastMessage     string          `json:"last_message,omitempty"`
	ResponseDate    time.Time       `json:"response_date,omitzero"`
	LastContactedAt time.Time       `json:"last_contacted_at,omitzero"`
	EstimatedValue  *float64        `json:"estimated_value,omitempty"`
	EquityPercent   *float64        `json:"equity_percent,omitempty"`
	PriorityScore   int             `json:"priority_score"`
	OptedOut        bool            `json:"opted_out"`
	Decision        policy.Decision `json:"policy"`
}

// Header is the column order of the CSV export.
var Header = []string{
	"Contact Name",
	"Phone Number",
	"Property Address",
	"Property Type",
	"Classification",
	"Confidence",
	"Action Required",
	"Last Message",
	"Response Date",
	"Last Contacted",
	"Estimated Value",
	"Equity",
	"Priority Score",
	"Opted Out",
	"Decision",
	"Reason",
	"Variant",
}

// Build returns a row for every link in l, with the policy decision for
// messaging the pair at now. Quiet hours are ignored so the decision reflects
// opt-out and cooldown state. Rows are ordered by priority score, highest
// first, then by phone and address.
func Build(l *ledger.Ledger, p *policy.Policy, scorer property.Scorer, now time.Time) ([]Row, error) {
	if scorer == nil {
		scorer = property.DefaultScorer{}
	}
	p = p.WithoutQuietHours()

	contacts := make(map[string]*ledger.Contact)
	for _, c := range l.Contacts() {
		contacts[c.Phone] = c
	}
	props := make(map[string]*property.Property)
	for _, pr := range l.Properties() {
		props[pr.Address] = pr
	}

	links := l.Links()
	rows := make([]Row, 0, len(links))
	for _, link := range links {
		c, pr := contacts[link.Phone], props[link.Address]
		if c == nil || pr == nil {
			return nil, fmt.Errorf("link %s/%s has no contact or property", link.Phone, link.Address)
		}

		d, err := p.Evaluate(l, link.Phone, link.Address, now)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s/%s: %w", link.Phone, link.Address, err)
		}

		row := Row{
			ContactName:     c.DisplayName,
			Phone:           c.Phone,
			Address:         pr.Address,
			DisplayAddress:  pr.DisplayAddress,
			PropertyType:    pr.Type.Label(),
			Type:            pr.Type,
			LastContactedAt: link.LastContactedAt,
			EstimatedValue:  pr.EstimatedValue,
			EquityPercent:   pr.EquityPercent,
			PriorityScore:   scorer.Score(pr),
			OptedOut:        c.OptedOut,
			Decision:        d,
		}
		if resp := link.LastResponse(); resp != nil {
			row.Classification = string(resp.Result.Category)
			row.Confidence = resp.Result.Confidence
			row.Action = string(resp.Result.Action)
			row.LastMessage = resp.Message
			row.ResponseDate = resp.ReceivedAt
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(
			cmp.Compare(b.PriorityScore, a.PriorityScore),
			cmp.Compare(a.Phone, b.Phone),
			cmp.Compare(a.Address, b.Address),
		)
	})
	return rows, nil
}

// OfType returns the rows whose property has type t.
func OfType(rows []Row, t property.Type) []Row {
	return slices.DeleteFunc(slices.Clone(rows), func(r Row) bool { return r.Type != t })
}

// Record returns the row's CSV fields in Header order.
func (r Row) Record() []string {
	name := r.ContactName
	if name == "" {
		name = "Unknown"
	}
	addr := r.DisplayAddress
	if addr == "" {
		addr = r.Address
	}
	confidence := ""
	if r.Classification != "" {
		confidence = strconv.Itoa(r.Confidence)
	}

	return []string{
		name,
		phone.Display(r.Phone),
		addr,
		r.PropertyType,
		r.Classification,
		confidence,
		r.Action,
		r.LastMessage,
		formatTime(r.ResponseDate),
		formatTime(r.LastContactedAt),
		formatFloat(r.EstimatedValue, 0),
		formatFloat(r.EquityPercent, 1),
		strconv.Itoa(r.PriorityScore),
		strconv.FormatBool(r.OptedOut),
		string(r.Decision.Outcome),
		string(r.Decision.Reason),
		string(r.Decision.Variant),
	}
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("writing row %s/%s: %w", r.Phone, r.Address, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
