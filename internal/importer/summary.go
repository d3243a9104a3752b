package importer

import (
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/evcraddock/lead-ledger/internal/db"
)

// Kinds of batch run.
const (
	KindResponses  = "responses"
	KindProperties = "properties"
	KindCandidates = "candidates"
)

// Skip reasons recorded in a Summary.
const (
	SkipInvalidPhone     = "invalid_phone"
	SkipInvalidAddress   = "invalid_address"
	SkipInvalidTimestamp = "invalid_timestamp"
	SkipInvalidNumber    = "invalid_number"
	SkipMalformedRow     = "malformed_row"
	SkipDuplicate        = "duplicate"
)

// Summary reports the outcome of one batch run.
type Summary struct {
	RunID        string         `json:"run_id"`
	Kind         string         `json:"kind"`
	Source       string         `json:"source"`
	TableVersion string         `json:"table_version,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Rows         int            `json:"rows"`
	Applied      int            `json:"applied"`
	Skipped      map[string]int `json:"skipped,omitempty"`
	Failed       int            `json:"failed"`
}

func (s *Summary) skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[reason]++
}

// SkippedTotal returns the number of skipped items across all reasons.
func (s *Summary) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// String returns a one-line human summary.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rows, %d applied, %d skipped, %d failed", s.Kind, s.Rows, s.Applied, s.SkippedTotal(), s.Failed)
	if len(s.Skipped) > 0 {
		parts := make([]string, 0, len(s.Skipped))
		for _, reason := range slices.Sorted(maps.Keys(s.Skipped)) {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, s.Skipped[reason]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

// RunRepository records batch runs in the import_runs table.
type RunRepository struct {
	db db.Querier
}

// NewRunRepository creates a run repository. q may be a *sql.DB or a
// *sql.Tx, so a run can be recorded in the transaction that saves its
// ledger changes.
func NewRunRepository(q db.Querier) *RunRepository {
	return &RunRepository{db: q}
}

// Insert records a finished run.
func (r *RunRepository) Insert(s *Summary) error {
	_, err := r.db.Exec(`INSERT INTO import_runs
		(id, kind, source, started_at, finished_at, rows, applied, skipped, failed, table_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Kind, s.Source, s.StartedAt, s.FinishedAt,
		s.Rows, s.Applied, s.SkippedTotal(), s.Failed, s.TableVersion,
	)
	if err != nil {
		return fmt.Errorf("inserting import run %s: %w", s.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. Per-reason skip counts are
// not stored, so Skipped holds only the total under "total".
func (r *RunRepository) Recent(limit int) (runs []*Summary, err error) {
	rows, err := r.db.Query(`SELECT id, kind, source, started_at, finished_at, rows, applied, skipped, failed, table_version
		FROM import_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing import runs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var s Summary
		var finished sql.NullTime
		var skipped int
		if err := rows.Scan(&s.RunID, &s.Kind, &s.Source, &s.StartedAt, &finished,
			&s.Rows, &s.Applied, &skipped, &s.Failed, &s.TableVersion); err != nil {
			return nil, fmt.Errorf("scanning import run: %w", err)
		}
		if finished.Valid {
			s.FinishedAt = finished.Time
		}
		if skipped > 0 {
			s.Skipped = map[string]int{"total": skipped}
		}
		runs = append(runs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating import runs: %w", err)
	}
	return runs, nil
}
