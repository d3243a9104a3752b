package cli

import (
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent import and evaluation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	runs, err := s.runs.Recent(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, runs)
	}
	return printRuns(out, runs)
}
