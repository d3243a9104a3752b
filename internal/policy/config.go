package policy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCooldown is the minimum time before the same property may be
// pitched to the same owner again.
const DefaultCooldown = 180 * 24 * time.Hour

// Config holds the tunable business rules.
type Config struct {
	// Cooldown is measured from the last activity on a link.
	Cooldown time.Duration

	// SameOwnerCooldown applies the cooldown to a known owner's new
	// properties. When false, a known owner may always be messaged about a
	// property they have not heard from us about.
	SameOwnerCooldown bool

	// QuietHours blocks sends during a daily window. Zero value disables it.
	QuietHours QuietHours
}

// DefaultConfig returns the standard rules: 180 day cooldown, new properties
// of known owners always allowed, no quiet hours.
func DefaultConfig() Config {
	return Config{Cooldown: DefaultCooldown}
}

// QuietHours is a daily window [Start, End) in local hours. A window with
// Start > End wraps past midnight. Start == End disables the window.
type QuietHours struct {
	Start int
	End   int
}

// ParseQuietHours parses "HH-HH", e.g. "21-8". An empty string disables
// quiet hours.
func ParseQuietHours(s string) (QuietHours, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return QuietHours{}, nil
	}

	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return QuietHours{}, fmt.Errorf("quiet hours %q: expected HH-HH", s)
	}
	start, err := parseHour(startStr)
	if err != nil {
		return QuietHours{}, fmt.Errorf("quiet hours %q: %w", s, err)
	}
	end, err := parseHour(endStr)
	if err != nil {
		return QuietHours{}, fmt.Errorf("quiet hours %q: %w", s, err)
	}
	return QuietHours{Start: start, End: end}, nil
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %d out of range 0-23", h)
	}
	return h, nil
}

// Enabled reports whether the window blocks any hour.
func (q QuietHours) Enabled() bool {
	return q.Start != q.End
}

// Contains reports whether t's local hour falls inside the window.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled() {
		return false
	}
	h := t.Hour()
	if q.Start < q.End {
		return h >= q.Start && h < q.End
	}
	return h >= q.Start || h < q.End
}

// String returns the "HH-HH" form, or "" when disabled.
func (q QuietHours) String() string {
	if !q.Enabled() {
		return ""
	}
	return fmt.Sprintf("%d-%d", q.Start, q.End)
}
