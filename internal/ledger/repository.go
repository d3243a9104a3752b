package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/db"
	"github.com/evcraddock/lead-ledger/internal/property"
)

// Repository persists ledger snapshots to SQLite. A save replaces the stored
// state in one transaction.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a ledger repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const (
	insertContactSQL = `INSERT INTO contacts
		(phone, display_name, opted_out, opted_out_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	insertLinkSQL = `INSERT INTO links (phone, address, last_contacted_at, created_at) VALUES (?, ?, ?, ?)`

	insertResponseSQL = `INSERT INTO responses
		(phone, address, received_at, message, category, confidence, action, reasoning, signals_json, table_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// Save replaces the stored ledger with s. Each extra write runs in the same
// transaction, after the ledger rows, and a failure rolls back everything.
func (r *Repository) Save(s Snapshot, extra ...func(db.Querier) error) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("rolling back ledger save", "error", rbErr)
		}
	}()

	// Links and responses cascade from contacts and properties.
	if _, err := tx.Exec("DELETE FROM contacts"); err != nil {
		return fmt.Errorf("clearing contacts: %w", err)
	}
	props := property.NewRepository(tx)
	if err := props.DeleteAll(); err != nil {
		return err
	}

	for _, c := range s.Contacts {
		if _, err := tx.Exec(insertContactSQL,
			c.Phone, c.DisplayName, c.OptedOut, nullTime(c.OptedOutAt), c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return fmt.Errorf("inserting contact %s: %w", c.Phone, err)
		}
	}

	for _, p := range s.Properties {
		if err := props.Upsert(p); err != nil {
			return err
		}
	}

	for _, l := range s.Links {
		if _, err := tx.Exec(insertLinkSQL, l.Phone, l.Address, nullTime(l.LastContactedAt), l.CreatedAt); err != nil {
			return fmt.Errorf("inserting link %s / %s: %w", l.Phone, l.Address, err)
		}
		for _, resp := range l.History {
			signals, err := json.Marshal(resp.Result.Signals)
			if err != nil {
				return fmt.Errorf("encoding signals: %w", err)
			}
			if _, err := tx.Exec(insertResponseSQL,
				l.Phone, l.Address, resp.ReceivedAt, resp.Message,
				string(resp.Result.Category), resp.Result.Confidence, string(resp.Result.Action),
				resp.Result.Reasoning, string(signals), resp.Result.TableVersion,
			); err != nil {
				return fmt.Errorf("inserting response for %s / %s: %w", l.Phone, l.Address, err)
			}
		}
	}

	for _, write := range extra {
		if err := write(tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	return nil
}

// Load reads the stored ledger.
func (r *Repository) Load() (Snapshot, error) {
	var s Snapshot

	contacts, err := r.loadContacts()
	if err != nil {
		return s, err
	}
	props, err := property.NewRepository(r.db).List(property.ListOptions{})
	if err != nil {
		return s, err
	}
	links, err := r.loadLinks()
	if err != nil {
		return s, err
	}

	s.Contacts = contacts
	s.Properties = props
	s.Links = links
	return s, nil
}

// SaveLedger persists the current state of l, together with any extra writes.
func (r *Repository) SaveLedger(l *Ledger, extra ...func(db.Querier) error) error {
	return r.Save(l.Snapshot(), extra...)
}

// LoadLedger builds a ledger from the stored state.
func (r *Repository) LoadLedger(opts ...Option) (*Ledger, error) {
	s, err := r.Load()
	if err != nil {
		return nil, err
	}
	l := New(opts...)
	if err := l.Restore(s); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *Repository) loadContacts() (contacts []*Contact, err error) {
	rows, err := r.db.Query(`SELECT phone, display_name, opted_out, opted_out_at, created_at, updated_at
		FROM contacts ORDER BY phone`)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var c Contact
		var optedOutAt sql.NullTime
		if err := rows.Scan(&c.Phone, &c.DisplayName, &c.OptedOut, &optedOutAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		if optedOutAt.Valid {
			c.OptedOutAt = optedOutAt.Time
		}
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}
	return contacts, nil
}

func (r *Repository) loadLinks() (links []*Link, err error) {
	rows, err := r.db.Query(`SELECT phone, address, last_contacted_at, created_at
		FROM links ORDER BY phone, address`)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	index := make(map[linkKey]*Link)
	for rows.Next() {
		var l Link
		var lastContacted sql.NullTime
		if err := rows.Scan(&l.Phone, &l.Address, &lastContacted, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		if lastContacted.Valid {
			l.LastContactedAt = lastContacted.Time
		}
		links = append(links, &l)
		index[linkKey{phone: l.Phone, address: l.Address}] = &l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}

	if err := r.loadResponses(index); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *Repository) loadResponses(index map[linkKey]*Link) (err error) {
	rows, err := r.db.Query(`SELECT phone, address, received_at, message, category, confidence,
		action, reasoning, signals_json, table_version
		FROM responses ORDER BY id`)
	if err != nil {
		return fmt.Errorf("listing responses: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var k linkKey
		var resp Response
		var category, action, signals string
		if err := rows.Scan(&k.phone, &k.address, &resp.ReceivedAt, &resp.Message, &category,
			&resp.Result.Confidence, &action, &resp.Result.Reasoning, &signals, &resp.Result.TableVersion,
		); err != nil {
			return fmt.Errorf("scanning response: %w", err)
		}
		resp.Result.Category = classifier.Category(category)
		resp.Result.Action = classifier.Action(action)
		if err := json.Unmarshal([]byte(signals), &resp.Result.Signals); err != nil {
			return fmt.Errorf("decoding signals: %w", err)
		}

		l, ok := index[k]
		if !ok {
			return fmt.Errorf("response for unlinked pair %s / %s", k.phone, k.address)
		}
		l.History = append(l.History, resp)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating responses: %w", err)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
