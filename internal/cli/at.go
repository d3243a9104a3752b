package cli

import (
	"fmt"
	"strings"
	"time"
)

// now is the clock used when --at is not given.
var now = time.Now

var atLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseAt parses an --at value in local time, or returns the current time
// when s is empty.
func parseAt(s string) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	for _, layout := range atLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --at %q (want RFC3339 or 2006-01-02 15:04)", s)
}

// joinAddress rebuilds an address passed as several shell words.
func joinAddress(args []string) string {
	return strings.Join(args, " ")
}
