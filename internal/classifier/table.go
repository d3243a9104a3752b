package classifier

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Table is an ordered, versioned set of classification rules.
// Rule order is precedence order.
type Table struct {
	Version string
	Rules   []Rule
}

// Rule assigns Category when any of its signals match.
// Confidence is min(Base + Step*matchedSignals, Cap).
type Rule struct {
	Category Category
	Reason   string
	Base     int
	Step     int
	Cap      int
	Signals  []Signal
}

// Signal is one independent piece of evidence. It counts once no matter how
// many of its patterns match, and never when an Unless pattern matches.
type Signal struct {
	Name     string
	Patterns []*regexp.Regexp
	Unless   []*regexp.Regexp
}

func (s Signal) matches(text string) bool {
	for _, re := range s.Unless {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range s.Patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// match returns the names of matching signals in table order.
func (r Rule) match(text string) []string {
	var names []string
	for _, s := range r.Signals {
		if s.matches(text) {
			names = append(names, s.Name)
		}
	}
	return names
}

func (r Rule) confidence(matched int) int {
	c := r.Base + r.Step*matched
	if c > r.Cap {
		return r.Cap
	}
	return c
}

// Validate checks the table for structural errors. OPT_OUT, when present,
// must be the first rule so that a withdrawal is never masked by an
// interest signal in the same message.
func (t *Table) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(t.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}

	seen := make(map[Category]bool)
	for i, r := range t.Rules {
		if !r.Category.Valid() {
			return fmt.Errorf("rule %d: invalid category %q", i, r.Category)
		}
		if seen[r.Category] {
			return fmt.Errorf("rule %d: duplicate category %s", i, r.Category)
		}
		seen[r.Category] = true

		if r.Category == OptOut && i != 0 {
			return fmt.Errorf("rule %d: OPT_OUT must be the first rule", i)
		}
		if r.Base < 0 || r.Step < 0 || r.Cap > 100 || r.Base > r.Cap {
			return fmt.Errorf("rule %d (%s): confidence must satisfy 0 <= base <= cap <= 100 and step >= 0", i, r.Category)
		}
		if len(r.Signals) == 0 {
			return fmt.Errorf("rule %d (%s): at least one signal is required", i, r.Category)
		}
		for j, s := range r.Signals {
			if s.Name == "" {
				return fmt.Errorf("rule %d (%s) signal %d: name is required", i, r.Category, j)
			}
			if len(s.Patterns) == 0 {
				return fmt.Errorf("rule %d (%s) signal %s: at least one pattern is required", i, r.Category, s.Name)
			}
		}
	}

	return nil
}

// TableFile is the YAML form of a pattern table.
type TableFile struct {
	Version string     `yaml:"version"`
	Rules   []RuleFile `yaml:"rules"`
}

// RuleFile is the YAML form of a Rule.
type RuleFile struct {
	Category Category     `yaml:"category"`
	Reason   string       `yaml:"reason"`
	Base     int          `yaml:"base"`
	Step     int          `yaml:"step"`
	Cap      int          `yaml:"cap"`
	Signals  []SignalFile `yaml:"signals"`
}

// SignalFile is the YAML form of a Signal.
type SignalFile struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Unless   []string `yaml:"unless,omitempty"`
}

// Compile turns a TableFile into a validated Table.
func (f TableFile) Compile() (*Table, error) {
	t := &Table{Version: f.Version}
	for _, rf := range f.Rules {
		r := Rule{
			Category: rf.Category,
			Reason:   rf.Reason,
			Base:     rf.Base,
			Step:     rf.Step,
			Cap:      rf.Cap,
		}
		for _, sf := range rf.Signals {
			patterns, err := compileAll(sf.Patterns)
			if err != nil {
				return nil, fmt.Errorf("signal %s: %w", sf.Name, err)
			}
			unless, err := compileAll(sf.Unless)
			if err != nil {
				return nil, fmt.Errorf("signal %s: %w", sf.Name, err)
			}
			r.Signals = append(r.Signals, Signal{Name: sf.Name, Patterns: patterns, Unless: unless})
		}
		t.Rules = append(t.Rules, r)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("compiling %q: %w", e, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// ParseTable decodes and compiles a YAML pattern table.
func ParseTable(data []byte) (*Table, error) {
	var f TableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing pattern table: %w", err)
	}
	return f.Compile()
}

// LoadTable reads a YAML pattern table from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern table: %w", err)
	}
	return ParseTable(data)
}

// MarshalDefaultTable returns the built-in table as YAML, as a starting
// point for a custom patterns file.
func MarshalDefaultTable() ([]byte, error) {
	return yaml.Marshal(defaultTableFile)
}
