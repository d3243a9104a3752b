package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/phone"
)

func newOptOutCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "optout <phone>",
		Short: "Opt a contact out of all outreach",
		Long:  "Mark a phone number as opted out, e.g. from a carrier or provider opt-out callback. This cannot be undone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptOut(cmd, args[0], at)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "opt-out time (default: now)")

	return cmd
}

func runOptOut(cmd *cobra.Command, phoneInput, at string) error {
	when, err := parseAt(at)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	c, err := s.ledger.MarkOptedOut(phoneInput, when)
	if err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, c)
	}
	fmt.Fprintf(out, "%s opted out (since %s)\n", phone.Display(c.Phone), formatTime(c.OptedOutAt))
	return nil
}
