package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/importer"
)

func newIngestCmd() *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import CSV exports into the ledger",
	}
	cmd.PersistentFlags().StringVar(&tz, "tz", "", "time zone for timestamps without one (default: local)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "responses <csv>",
			Short: "Import a contact-history export",
			Long: "Import sent messages and replies. Replies are classified; STOP-style replies opt the contact out. " +
				"Rows with a bad phone, address or timestamp are skipped and counted.",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runIngest(cmd, args[0], tz, (*importer.Importer).Responses)
			},
		},
		&cobra.Command{
			Use:   "properties <csv>",
			Short: "Import a property-enrichment export",
			Long:  "Import property details and owner phones. Property type is inferred from the structured fields.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runIngest(cmd, args[0], tz, (*importer.Importer).Properties)
			},
		},
	)

	return cmd
}

type ingestFunc func(im *importer.Importer, r io.Reader, source string) (*importer.Summary, error)

func runIngest(cmd *cobra.Command, path, tz string, ingest ingestFunc) error {
	loc := time.Local
	if tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid --tz: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	im := importer.New(s.ledger,
		importer.WithClock(now),
		importer.WithLocation(loc),
	)
	summary, err := ingest(im, f, filepath.Base(path))
	if err != nil {
		return err
	}
	if err := s.save(summary); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, summary)
	}
	printSummary(out, summary)
	return nil
}
