package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		phone        TEXT     PRIMARY KEY,
		display_name TEXT     NOT NULL DEFAULT '',
		opted_out    INTEGER  NOT NULL DEFAULT 0,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		address            TEXT     PRIMARY KEY,
		display_address    TEXT     NOT NULL DEFAULT '',
		variants_json      TEXT     NOT NULL DEFAULT '[]',
		property_type      TEXT     NOT NULL DEFAULT 'unknown'
			CHECK (property_type IN ('single_family', 'multi_family', 'commercial', 'unknown')),
		type_confidence    INTEGER  NOT NULL DEFAULT 0
			CHECK (type_confidence >= 0 AND type_confidence <= 100),
		estimated_value    REAL,
		equity_percent     REAL,
		units              INTEGER,
		bedrooms           INTEGER,
		sqft               INTEGER,
		zoning             TEXT     NOT NULL DEFAULT '',
		flags_json         TEXT     NOT NULL DEFAULT '[]',
		corporate_owner    INTEGER  NOT NULL DEFAULT 0,
		out_of_state_owner INTEGER  NOT NULL DEFAULT 0,
		values_as_of       DATETIME,
		values_confidence  INTEGER  NOT NULL DEFAULT 0,
		created_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at         DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		phone             TEXT     NOT NULL REFERENCES contacts(phone) ON DELETE CASCADE,
		address           TEXT     NOT NULL REFERENCES properties(address) ON DELETE CASCADE,
		last_contacted_at DATETIME,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (phone, address)
	)`,
	`CREATE TABLE IF NOT EXISTS responses (
		id            INTEGER  PRIMARY KEY AUTOINCREMENT,
		phone         TEXT     NOT NULL,
		address       TEXT     NOT NULL,
		received_at   DATETIME NOT NULL,
		message       TEXT     NOT NULL,
		category      TEXT     NOT NULL,
		confidence    INTEGER  NOT NULL CHECK (confidence >= 0 AND confidence <= 100),
		action        TEXT     NOT NULL,
		reasoning     TEXT     NOT NULL DEFAULT '',
		signals_json  TEXT     NOT NULL DEFAULT '[]',
		table_version TEXT     NOT NULL DEFAULT '',
		FOREIGN KEY (phone, address) REFERENCES links(phone, address) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_responses_link ON responses(phone, address, id)`,
	`CREATE TABLE IF NOT EXISTS import_runs (
		id          TEXT     PRIMARY KEY,
		kind        TEXT     NOT NULL,
		source      TEXT     NOT NULL DEFAULT '',
		started_at  DATETIME NOT NULL,
		finished_at DATETIME,
		rows        INTEGER  NOT NULL DEFAULT 0,
		applied     INTEGER  NOT NULL DEFAULT 0,
		skipped     INTEGER  NOT NULL DEFAULT 0,
		failed      INTEGER  NOT NULL DEFAULT 0
	)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent, checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"contacts", "opted_out_at", "DATETIME"},
		{"import_runs", "table_version", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing rows", "table", table, "error", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
