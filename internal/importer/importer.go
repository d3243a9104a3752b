// Package importer loads contact history and property enrichment exports
// into the ledger.
//
// Row-level data problems are skipped and counted; any other error on a row
// is logged and counted as failed. Only unreadable input aborts a run.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/logging"
	"github.com/evcraddock/lead-ledger/internal/property"
)

// DefaultSourceConfidence ranks enrichment values against later imports.
const DefaultSourceConfidence = 50

// Importer feeds CSV exports into a ledger.
type Importer struct {
	ledger     *ledger.Ledger
	now        func() time.Time
	loc        *time.Location
	confidence int
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock sets the time source for run stamps and enrichment observations.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithLocation sets the zone for timestamps that carry none.
func WithLocation(loc *time.Location) Option {
	return func(im *Importer) {
		if loc != nil {
			im.loc = loc
		}
	}
}

// WithSourceConfidence sets the confidence given to enrichment values.
func WithSourceConfidence(c int) Option {
	return func(im *Importer) { im.confidence = c }
}

// New creates an importer writing to l.
func New(l *ledger.Ledger, opts ...Option) *Importer {
	im := &Importer{
		ledger:     l,
		now:        time.Now,
		loc:        time.Local,
		confidence: DefaultSourceConfidence,
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// run wraps a row loop with run bookkeeping: id, timing and logging. The
// caller records the returned summary once the ledger changes are saved.
func (im *Importer) run(kind, source string, rows func(*Summary, *slog.Logger) error) (*Summary, error) {
	s := &Summary{
		RunID:        uuid.NewString(),
		Kind:         kind,
		Source:       source,
		TableVersion: im.ledger.TableVersion(),
		StartedAt:    im.now(),
	}
	log := logging.ForRun(s.RunID, kind)

	err := logging.Timed(log, "import "+source, func() error {
		return rows(s, log)
	})
	s.FinishedAt = im.now()
	if err != nil {
		return s, err
	}

	log.Info("run summary",
		"rows", s.Rows,
		"applied", s.Applied,
		"skipped", s.SkippedTotal(),
		"failed", s.Failed,
	)
	return s, nil
}

// rowError sorts a row failure into skipped or failed and logs it.
func rowError(s *Summary, log *slog.Logger, line int, err error) {
	if !ledger.IsRowError(err) {
		s.Failed++
		log.Error("row failed", "line", line, "error", err)
		return
	}
	reason := SkipInvalidAddress
	var pe *ledger.InvalidPhoneError
	if errors.As(err, &pe) {
		reason = SkipInvalidPhone
	}
	s.skip(reason)
	log.Debug("row skipped", "line", line, "reason", reason, "error", err)
}

// each feeds every well-formed record to fn. Malformed records are skipped;
// any other read error ends the run.
func each(t *table, s *Summary, log *slog.Logger, source string, fn func(rec []string)) error {
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		s.Rows++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				s.skip(SkipMalformedRow)
				log.Warn("row skipped", "line", t.line, "reason", SkipMalformedRow, "error", err)
				continue
			}
			return fmt.Errorf("reading %s: %w", source, err)
		}
		fn(rec)
	}
}

// Responses imports a contact-history export. Each row is an inbound reply,
// or an outbound send when its direction says so or its message is empty.
func (im *Importer) Responses(r io.Reader, source string) (*Summary, error) {
	return im.run(KindResponses, source, func(s *Summary, log *slog.Logger) error {
		t, err := newTable(r)
		if err != nil {
			return err
		}
		if err := t.require(phoneColumns, addressColumns, timestampColumns); err != nil {
			return err
		}

		return each(t, s, log, source, func(rec []string) {
			err := im.responseRow(t, rec)
			var te *timestampError
			switch {
			case err == nil:
				s.Applied++
			case errors.As(err, &te):
				s.skip(SkipInvalidTimestamp)
				log.Debug("row skipped", "line", t.line, "reason", SkipInvalidTimestamp, "input", te.input)
			case errors.Is(err, ledger.ErrDuplicateResponse):
				s.skip(SkipDuplicate)
				log.Debug("row skipped", "line", t.line, "reason", SkipDuplicate)
			default:
				rowError(s, log, t.line, err)
			}
		})
	})
}

type timestampError struct{ input string }

func (e *timestampError) Error() string { return fmt.Sprintf("unrecognized timestamp %q", e.input) }

func (im *Importer) responseRow(t *table, rec []string) error {
	phoneInput := t.get(rec, phoneColumns...)
	addressInput := t.get(rec, addressColumns...)
	message := t.get(rec, messageColumns...)
	direction := strings.ToLower(t.get(rec, directionColumns...))

	// Validate the whole row before touching the ledger.
	if _, err := ledger.NormalizePhone(phoneInput); err != nil {
		return err
	}
	if _, err := ledger.NormalizeAddress(addressInput); err != nil {
		return err
	}
	rawTS := t.get(rec, timestampColumns...)
	at, err := parseTimestamp(rawTS, im.loc)
	if err != nil {
		return &timestampError{input: rawTS}
	}

	if _, err := im.ledger.UpsertContact(phoneInput, ledger.ContactAttrs{
		DisplayName: t.get(rec, nameColumns...),
	}); err != nil {
		return err
	}
	if _, err := im.ledger.UpsertProperty(addressInput, property.Attrs{}); err != nil {
		return err
	}

	if message == "" || direction == "outbound" || direction == "sent" || direction == "outgoing" {
		return im.ledger.RecordContactAttempt(phoneInput, addressInput, at)
	}
	_, err = im.ledger.RecordResponse(phoneInput, addressInput, message, at)
	return err
}

// Enrichment columns beyond the shared aliases.
var (
	ownerPhoneColumns = []string{"phone", "phone_1", "phone_2", "phone_3", "owner_phone", "phone_number"}
	ownerNameColumns  = []string{"owner_name", "owner", "owner_1_name", "contact_name", "name"}
)

// Properties imports a property-enrichment export: the property with its
// inferred type and values, and every listed phone as an owner.
func (im *Importer) Properties(r io.Reader, source string) (*Summary, error) {
	return im.run(KindProperties, source, func(s *Summary, log *slog.Logger) error {
		t, err := newTable(r)
		if err != nil {
			return err
		}
		if err := t.require(addressColumns); err != nil {
			return err
		}

		return each(t, s, log, source, func(rec []string) {
			attrs, err := im.propertyAttrs(t, rec)
			if err != nil {
				s.skip(SkipInvalidNumber)
				log.Debug("row skipped", "line", t.line, "reason", SkipInvalidNumber, "error", err)
				return
			}

			addressInput := t.get(rec, addressColumns...)
			if _, err := im.ledger.UpsertProperty(addressInput, attrs); err != nil {
				rowError(s, log, t.line, err)
				return
			}
			s.Applied++

			owner := t.get(rec, ownerNameColumns...)
			for _, col := range ownerPhoneColumns {
				phoneInput := t.get(rec, col)
				if phoneInput == "" {
					continue
				}
				if _, err := im.ledger.UpsertContact(phoneInput, ledger.ContactAttrs{DisplayName: owner}); err != nil {
					rowError(s, log, t.line, err)
					continue
				}
				if err := im.ledger.AssociateOwner(phoneInput, addressInput); err != nil {
					rowError(s, log, t.line, err)
				}
			}
		})
	})
}

func (im *Importer) propertyAttrs(t *table, rec []string) (property.Attrs, error) {
	var a property.Attrs
	var err error

	facts := property.Facts{
		PropertyType: t.get(rec, "property_type", "type"),
		Class:        t.get(rec, "property_class", "class"),
		Zoning:       t.get(rec, "zoning"),
	}
	if facts.Units, err = parseInt(t.get(rec, "units_count", "units")); err != nil {
		return a, err
	}
	if facts.Bedrooms, err = parseInt(t.get(rec, "total_bedrooms", "bedrooms", "beds")); err != nil {
		return a, err
	}
	if facts.Sqft, err = parseInt(t.get(rec, "building_square_feet", "sqft", "square_feet")); err != nil {
		return a, err
	}
	if a.EstimatedValue, err = parseFloat(t.get(rec, "estimated_value", "value")); err != nil {
		return a, err
	}
	if a.EquityPercent, err = parseFloat(t.get(rec, "equity_percent", "equity")); err != nil {
		return a, err
	}

	a.Type, a.TypeConfidence = property.InferType(facts)
	a.Units = facts.Units
	a.Bedrooms = facts.Bedrooms
	a.Sqft = facts.Sqft
	a.Zoning = facts.Zoning
	a.Flags = splitFlags(t.get(rec, "property_flags", "flags"))

	owner := t.get(rec, ownerNameColumns...)
	a.CorporateOwner = parseBool(t.get(rec, "is_corporate_owner", "corporate_owner")) || property.IsCorporateName(owner)
	a.OutOfStateOwner = parseBool(t.get(rec, "out_of_state_owner"))

	a.ObservedAt = im.now()
	a.Confidence = im.confidence
	return a, nil
}
