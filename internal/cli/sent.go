package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/property"
)

func newSentCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "sent <phone> <address...>",
		Short: "Record an outbound message",
		Long:  "Record that the contact was texted about the property. The contact and property are created if new.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSent(cmd, args[0], joinAddress(args[1:]), at)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "send time (default: now)")

	return cmd
}

func runSent(cmd *cobra.Command, phoneInput, addressInput, at string) error {
	when, err := parseAt(at)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.ledger.UpsertContact(phoneInput, ledger.ContactAttrs{}); err != nil {
		return err
	}
	if _, err := s.ledger.UpsertProperty(addressInput, property.Attrs{}); err != nil {
		return err
	}
	if err := s.ledger.RecordContactAttempt(phoneInput, addressInput, when); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}

	link, err := s.ledger.GetLink(phoneInput, addressInput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, link)
	}
	fmt.Fprintf(out, "Recorded send to %s about %s at %s\n", link.Phone, link.Address, formatTime(when))
	return nil
}
