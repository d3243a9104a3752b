package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/export"
	"github.com/evcraddock/lead-ledger/internal/property"
)

func newExportCmd() *cobra.Command {
	var (
		outPath  string
		at       string
		propType string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every contact and property pair as CSV",
		Long: "Write one row per linked contact and property with the last classification, the policy decision " +
			"and the priority score, highest priority first. With --format json the rows are printed as JSON.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, outPath, at, propType)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&at, "at", "", "evaluate decisions at this time (default: now)")
	cmd.Flags().StringVar(&propType, "type", "", "only export properties of this type (single_family|multi_family|commercial|unknown)")

	return cmd
}

func runExport(cmd *cobra.Command, outPath, at, propType string) (err error) {
	if propType != "" && !property.ValidType(propType) {
		return fmt.Errorf("invalid --type %q", propType)
	}
	when, err := parseAt(at)
	if err != nil {
		return err
	}
	p, err := newPolicy()
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	rows, err := export.Build(s.ledger, p, nil, when)
	if err != nil {
		return err
	}
	if propType != "" {
		rows = export.OfType(rows, property.Type(propType))
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, createErr := os.Create(outPath)
		if createErr != nil {
			return fmt.Errorf("creating %s: %w", outPath, createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("closing %s: %w", outPath, closeErr)
			}
		}()
		w = f
	}

	if isJSON() {
		return printJSON(w, rows)
	}
	if err := export.WriteCSV(w, rows); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rows), outPath)
	}
	return nil
}
