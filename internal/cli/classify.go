package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/importer"
)

func newClassifyCmd() *cobra.Command {
	var (
		file       string
		workers    int
		printTable bool
	)

	cmd := &cobra.Command{
		Use:   "classify [message...]",
		Short: "Classify seller replies",
		Long: "Classify each argument as a reply, or every row of a CSV export with --file. " +
			"Use --print-table to write the built-in pattern table as YAML.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printTable {
				return runPrintTable(cmd)
			}
			return runClassify(cmd, args, file, workers)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file with a message column")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel workers for --file")
	cmd.Flags().BoolVar(&printTable, "print-table", false, "print the built-in pattern table as YAML")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string, file string, workers int) error {
	msgs := args
	switch {
	case file != "" && len(args) > 0:
		return fmt.Errorf("pass messages as arguments or --file, not both")
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("opening %s: %w", file, err)
		}
		defer func() { _ = f.Close() }()
		if msgs, err = importer.ReadMessages(f); err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
	case len(args) == 0:
		return fmt.Errorf("no messages given")
	}

	c, err := newClassifier()
	if err != nil {
		return err
	}
	results, err := c.ClassifyAll(cmd.Context(), msgs, workers)
	if err != nil {
		return err
	}

	items := make([]classified, len(msgs))
	for i, m := range msgs {
		items[i] = classified{Message: m, Result: results[i]}
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, items)
	}
	return printClassifications(out, items)
}

func runPrintTable(cmd *cobra.Command) error {
	data, err := classifier.MarshalDefaultTable()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
