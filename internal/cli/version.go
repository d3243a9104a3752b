package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/classifier"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (patterns %s)\n", Version, classifier.DefaultTableVersion)
		},
	}
}
