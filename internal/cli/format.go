package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/importer"
	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/phone"
	"github.com/evcraddock/lead-ledger/internal/report"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// classified pairs a message with its classification.
type classified struct {
	Message string            `json:"message"`
	Result  classifier.Result `json:"result"`
}

// printClassifications prints classification results as a table.
func printClassifications(w io.Writer, items []classified) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "CATEGORY\tCONF\tACTION\tMESSAGE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			it.Result.Category, it.Result.Confidence, it.Result.Action, truncate(oneLine(it.Message), 50)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printContact prints a contact and its property links in text format.
func printContact(w io.Writer, c *ledger.Contact, links []*ledger.Link) error {
	fmt.Fprintf(w, "Contact %s\n", phone.Display(c.Phone))
	if c.DisplayName != "" {
		fmt.Fprintf(w, "  Name:       %s\n", c.DisplayName)
	}
	if c.OptedOut {
		fmt.Fprintf(w, "  Opted out:  %s\n", formatTime(c.OptedOutAt))
	}
	fmt.Fprintf(w, "  Since:      %s\n", formatTime(c.CreatedAt))
	fmt.Fprintln(w)

	if len(links) == 0 {
		fmt.Fprintln(w, "No linked properties.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ADDRESS\tLAST CONTACTED\tREPLIES\tLAST CLASSIFICATION"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, l := range links {
		contacted := "never"
		if l.Contacted() {
			contacted = formatTime(l.LastContactedAt)
		}
		last := "-"
		if r := l.LastClassification(); r != nil {
			last = fmt.Sprintf("%s (%d)", r.Category, r.Confidence)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			truncate(l.Address, 40), contacted, len(l.History), last); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nTotal: %d properties\n", len(links))
	return nil
}

// printSummary prints a batch run summary in text format.
func printSummary(w io.Writer, s *importer.Summary) {
	fmt.Fprintln(w, s.String())
	fmt.Fprintf(w, "  Run:  %s\n", s.RunID)
}

// printRuns prints recorded batch runs as a table.
func printRuns(w io.Writer, runs []*importer.Summary) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "STARTED\tKIND\tSOURCE\tROWS\tAPPLIED\tSKIPPED\tFAILED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, r := range runs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			formatTime(r.StartedAt), r.Kind, truncate(r.Source, 30), r.Rows, r.Applied, r.SkippedTotal(), r.Failed); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printQueue prints each call queue bucket as a table.
func printQueue(w io.Writer, q *report.Queue) error {
	if q.Len() == 0 {
		fmt.Fprintln(w, "No replies waiting.")
		return nil
	}

	sections := []struct {
		title string
		leads []report.Lead
	}{
		{"CALL NOW", q.CallNow},
		{"CALL SOON", q.CallSoon},
		{"FOLLOW UP", q.FollowUp},
		{"OPTED OUT", q.OptedOut},
	}
	for _, sec := range sections {
		if len(sec.leads) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", sec.title, len(sec.leads))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, "  RECEIVED\tAGE\tNAME\tPHONE\tADDRESS\tCATEGORY\tMESSAGE"); err != nil {
			return fmt.Errorf("writing table header: %w", err)
		}
		for _, l := range sec.leads {
			name := l.Name
			if name == "" {
				name = "-"
			}
			if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				formatTime(l.ReceivedAt), formatAge(l.Age), truncate(name, 20), phone.Display(l.Phone),
				truncate(l.Address, 30), l.Category, truncate(oneLine(l.Message), 40)); err != nil {
				return fmt.Errorf("writing table row: %w", err)
			}
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("flushing table: %w", err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// printStats prints ledger counts and reply rates.
func printStats(w io.Writer, s report.Stats) {
	fmt.Fprintf(w, "Contacts:    %d (%d opted out)\n", s.Contacts, s.OptedOutContacts)
	fmt.Fprintf(w, "Properties:  %d\n", s.Properties)
	fmt.Fprintf(w, "Links:       %d (%d contacted, %d replied, %.1f%% reply rate)\n",
		s.Links, s.ContactedLinks, s.RepliedLinks, 100*s.ReplyRate())
	fmt.Fprintf(w, "Replies:     %d\n", s.Replies)
	for _, c := range []classifier.Category{classifier.Hot, classifier.Warm, classifier.Cold, classifier.OptOut, classifier.Unknown} {
		if n := s.ByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-9s %d (%.1f%%)\n", c, n, 100*s.Rate(c))
		}
	}
}

// formatAge formats a duration as minutes, hours or days ago.
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "-"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatTime formats a timestamp for tables, or "-" when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// oneLine collapses newlines so a message fits on one table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
