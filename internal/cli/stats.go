package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/report"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger counts and reply rates",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	st := report.BuildStats(s.ledger)

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, st)
	}
	printStats(out, st)
	return nil
}
