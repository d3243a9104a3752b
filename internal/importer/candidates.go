package importer

import (
	"io"
	"log/slog"
	"time"

	"github.com/evcraddock/lead-ledger/internal/policy"
)

// Evaluation is the policy decision for one candidate row.
type Evaluation struct {
	Line     int             `json:"line"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`
	Decision policy.Decision `json:"decision"`
	Error    string          `json:"error,omitempty"`
}

// Candidates evaluates every phone and address pair in a candidate list
// against the ledger at time now. Rows that cannot be evaluated still get an
// Evaluation carrying the error.
func (im *Importer) Candidates(r io.Reader, source string, p *policy.Policy, now time.Time) ([]Evaluation, *Summary, error) {
	var evals []Evaluation
	s, err := im.run(KindCandidates, source, func(s *Summary, log *slog.Logger) error {
		t, err := newTable(r)
		if err != nil {
			return err
		}
		if err := t.require(phoneColumns, addressColumns); err != nil {
			return err
		}

		return each(t, s, log, source, func(rec []string) {
			e := Evaluation{
				Line:    t.line,
				Phone:   t.get(rec, phoneColumns...),
				Address: t.get(rec, addressColumns...),
			}
			d, err := p.Evaluate(im.ledger, e.Phone, e.Address, now)
			if err != nil {
				e.Error = err.Error()
				rowError(s, log, t.line, err)
			} else {
				e.Decision = d
				s.Applied++
			}
			evals = append(evals, e)
		})
	})
	return evals, s, err
}
