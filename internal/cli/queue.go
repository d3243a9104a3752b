package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/report"
)

func newQueueCmd() *cobra.Command {
	var (
		at    string
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List replies waiting on a call",
		Long: "Sort the latest unanswered reply on each contact and property into call now (HOT within 1 hour), " +
			"call soon (older HOT, or WARM within 4 hours), follow up and opted out. Newest first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(cmd, at, since)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "build the queue as of this time (default: now)")
	cmd.Flags().DurationVar(&since, "since", 0, "only include replies from this far back, e.g. 72h (default: all)")

	return cmd
}

func runQueue(cmd *cobra.Command, at string, since time.Duration) error {
	if since < 0 {
		return fmt.Errorf("--since must not be negative")
	}
	when, err := parseAt(at)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	var from time.Time
	if since > 0 {
		from = when.Add(-since)
	}
	q := report.BuildQueue(s.ledger, from, when)

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, q)
	}
	return printQueue(out, q)
}
