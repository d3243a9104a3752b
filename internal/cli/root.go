// Package cli defines the cobra command tree for leadctl.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/db"
	"github.com/evcraddock/lead-ledger/internal/importer"
	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/logging"
)

var (
	flagFormat string
	flagDB     string
	flagConfig string

	// cfg is loaded before every command runs.
	cfg Config
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Classify seller replies and decide who may be texted",
		Long: "A tool for real-estate SMS outreach. Classify replies, keep a ledger of contacts, " +
			"properties and outreach history, and check every send against the outreach policy.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.leadctl/leads.db)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/leadctl/config.yaml)")

	root.AddCommand(
		newClassifyCmd(),
		newIngestCmd(),
		newSentCmd(),
		newOptOutCmd(),
		newEvaluateCmd(),
		newShowCmd(),
		newExportCmd(),
		newQueueCmd(),
		newStatsCmd(),
		newRunsCmd(),
		newVersionCmd(),
	)

	return root
}

// setup loads .env and the config file, then configures logging.
func setup(cmd *cobra.Command, args []string) error {
	if flagFormat != "text" && flagFormat != "json" {
		return fmt.Errorf("invalid --format %q (want text or json)", flagFormat)
	}

	// A missing .env is not an error.
	_ = godotenv.Load()

	var err error
	cfg, err = loadConfig(flagConfig)
	if err != nil {
		return err
	}
	logging.Setup(cfg.DevMode)
	return nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// dbPath resolves the database path from --db, config or the default.
func dbPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return db.DefaultPath()
}

// store is an opened database with the ledger loaded from it.
type store struct {
	db     *sql.DB
	repo   *ledger.Repository
	runs   *importer.RunRepository
	ledger *ledger.Ledger
}

// openStore opens the database and loads the ledger using the configured
// pattern table.
func openStore() (*store, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	c, err := newClassifier()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	repo := ledger.NewRepository(database)
	l, err := repo.LoadLedger(ledger.WithClassifier(c))
	if err != nil {
		closeDB(database)
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	return &store{
		db:     database,
		repo:   repo,
		runs:   importer.NewRunRepository(database),
		ledger: l,
	}, nil
}

// save writes the ledger back to the database, recording the given runs in
// the same transaction.
func (s *store) save(runs ...*importer.Summary) error {
	err := s.repo.SaveLedger(s.ledger, func(tx db.Querier) error {
		rr := importer.NewRunRepository(tx)
		for _, r := range runs {
			if err := rr.Insert(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	return nil
}

func (s *store) close() {
	closeDB(s.db)
}

// newClassifier returns the default classifier, or one built from the
// configured pattern file.
func newClassifier() (*classifier.Classifier, error) {
	if cfg.PatternsFile == "" {
		return classifier.Default(), nil
	}
	table, err := classifier.LoadTable(cfg.PatternsFile)
	if err != nil {
		return nil, err
	}
	c, err := classifier.New(table)
	if err != nil {
		return nil, fmt.Errorf("pattern table %s: %w", cfg.PatternsFile, err)
	}
	slog.Debug("loaded pattern table", "path", cfg.PatternsFile, "version", c.TableVersion())
	return c, nil
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
