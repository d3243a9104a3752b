package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/ledger"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <phone>",
		Short: "Show a contact and its properties",
		Long:  "Show a contact with every linked property, its last send and its reply history.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.close()

	c, err := s.ledger.Contact(args[0])
	if err != nil {
		return err
	}
	links, err := s.ledger.LinksForPhone(c.Phone)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, struct {
			Contact *ledger.Contact `json:"contact"`
			Links   []*ledger.Link  `json:"links"`
		}{c, links})
	}
	return printContact(out, c, links)
}
