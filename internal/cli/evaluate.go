package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/importer"
)

func newEvaluateCmd() *cobra.Command {
	var (
		file string
		at   string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [<phone> <address...>]",
		Short: "Check whether a contact may be texted about a property",
		Long: "Evaluate the outreach policy for one phone and address, or for every row of a candidate CSV " +
			"with --file. Prints ALLOWED with a message variant, or BLOCKED with a reason.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				if len(args) > 0 {
					return fmt.Errorf("pass a phone and address or --file, not both")
				}
				return runEvaluateFile(cmd, file, at)
			}
			if len(args) < 2 {
				return fmt.Errorf("requires a phone and an address")
			}
			return runEvaluate(cmd, args[0], joinAddress(args[1:]), at)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "candidate CSV with phone and address columns")
	cmd.Flags().StringVar(&at, "at", "", "evaluation time (default: now)")

	return cmd
}

func runEvaluate(cmd *cobra.Command, phoneInput, addressInput, at string) error {
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

	d, err := p.Evaluate(s.ledger, phoneInput, addressInput, when)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, d)
	}
	fmt.Fprintln(out, d)
	return nil
}

func runEvaluateFile(cmd *cobra.Command, path, at string) error {
	when, err := parseAt(at)
	if err != nil {
		return err
	}
	p, err := newPolicy()
	if err != nil {
		return err
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

	im := importer.New(s.ledger, importer.WithClock(now))
	evals, summary, err := im.Candidates(f, filepath.Base(path), p, when)
	if err != nil {
		return err
	}
	if err := s.runs.Insert(summary); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, struct {
			Summary     *importer.Summary     `json:"summary"`
			Evaluations []importer.Evaluation `json:"evaluations"`
		}{summary, evals})
	}
	if err := printEvaluations(out, evals); err != nil {
		return err
	}
	fmt.Fprintln(out)
	printSummary(out, summary)
	return nil
}

func printEvaluations(w io.Writer, evals []importer.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "LINE\tPHONE\tADDRESS\tDECISION"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, e := range evals {
		result := e.Decision.String()
		if e.Error != "" {
			result = "ERROR: " + e.Error
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Line, e.Phone, truncate(e.Address, 40), result); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}
