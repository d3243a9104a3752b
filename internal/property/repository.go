package property

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evcraddock/lead-ledger/internal/db"
)

// Repository provides persistence for properties.
type Repository struct {
	db db.Querier
}

// NewRepository creates a property repository. q may be a *sql.DB or a
// *sql.Tx.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const upsertSQL = `INSERT INTO properties
	(address, display_address, variants_json, property_type, type_confidence,
	 estimated_value, equity_percent, units, bedrooms, sqft, zoning, flags_json,
	 corporate_owner, out_of_state_owner, values_as_of, values_confidence, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(address) DO UPDATE SET
		display_address = excluded.display_address,
		variants_json = excluded.variants_json,
		property_type = excluded.property_type,
		type_confidence = excluded.type_confidence,
		estimated_value = excluded.estimated_value,
		equity_percent = excluded.equity_percent,
		units = excluded.units,
		bedrooms = excluded.bedrooms,
		sqft = excluded.sqft,
		zoning = excluded.zoning,
		flags_json = excluded.flags_json,
		corporate_owner = excluded.corporate_owner,
		out_of_state_owner = excluded.out_of_state_owner,
		values_as_of = excluded.values_as_of,
		values_confidence = excluded.values_confidence,
		updated_at = excluded.updated_at`

const selectColumns = `address, display_address, variants_json, property_type, type_confidence,
	estimated_value, equity_percent, units, bedrooms, sqft, zoning, flags_json,
	corporate_owner, out_of_state_owner, values_as_of, values_confidence, created_at, updated_at`

// Upsert inserts the property or replaces the stored row for its address.
func (r *Repository) Upsert(p *Property) error {
	variants, err := json.Marshal(nonNil(p.Variants))
	if err != nil {
		return fmt.Errorf("encoding variants: %w", err)
	}
	flags, err := json.Marshal(nonNil(p.Flags))
	if err != nil {
		return fmt.Errorf("encoding flags: %w", err)
	}

	var valuesAsOf sql.NullTime
	if !p.ValuesAsOf.IsZero() {
		valuesAsOf = sql.NullTime{Time: p.ValuesAsOf, Valid: true}
	}

	_, err = r.db.Exec(upsertSQL,
		p.Address, p.DisplayAddress, string(variants), string(p.Type), p.TypeConfidence,
		p.EstimatedValue, p.EquityPercent, p.Units, p.Bedrooms, p.Sqft, p.Zoning, string(flags),
		p.CorporateOwner, p.OutOfStateOwner, valuesAsOf, p.ValuesConfidence, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting property %s: %w", p.Address, err)
	}
	return nil
}

// ListOptions controls filtering for List.
type ListOptions struct {
	Type Type // empty = all
}

// List returns all properties ordered by address, optionally filtered.
func (r *Repository) List(opts ListOptions) (properties []*Property, err error) {
	query := fmt.Sprintf("SELECT %s FROM properties", selectColumns)
	var args []any
	var conditions []string

	if opts.Type != "" {
		conditions = append(conditions, "property_type = ?")
		args = append(args, string(opts.Type))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY address"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return properties, nil
}

// DeleteAll removes every property. Links and their responses cascade.
func (r *Repository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM properties"); err != nil {
		return fmt.Errorf("deleting properties: %w", err)
	}
	return nil
}

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...any) error }) (*Property, error) {
	var p Property
	var ptype, variants, flags string
	var estimatedValue, equityPercent sql.NullFloat64
	var units, bedrooms, sqft sql.NullInt64
	var valuesAsOf sql.NullTime

	err := row.Scan(
		&p.Address, &p.DisplayAddress, &variants, &ptype, &p.TypeConfidence,
		&estimatedValue, &equityPercent, &units, &bedrooms, &sqft, &p.Zoning, &flags,
		&p.CorporateOwner, &p.OutOfStateOwner, &valuesAsOf, &p.ValuesConfidence, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Type = Type(ptype)
	if estimatedValue.Valid {
		p.EstimatedValue = &estimatedValue.Float64
	}
	if equityPercent.Valid {
		p.EquityPercent = &equityPercent.Float64
	}
	if units.Valid {
		p.Units = &units.Int64
	}
	if bedrooms.Valid {
		p.Bedrooms = &bedrooms.Int64
	}
	if sqft.Valid {
		p.Sqft = &sqft.Int64
	}
	if valuesAsOf.Valid {
		p.ValuesAsOf = valuesAsOf.Time
	}
	if err := json.Unmarshal([]byte(variants), &p.Variants); err != nil {
		return nil, fmt.Errorf("decoding variants: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &p.Flags); err != nil {
		return nil, fmt.Errorf("decoding flags: %w", err)
	}
	if len(p.Variants) == 0 {
		p.Variants = nil
	}
	if len(p.Flags) == 0 {
		p.Flags = nil
	}

	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
