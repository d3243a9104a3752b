// Package classifier maps inbound SMS replies to a lead temperature.
//
// Classification is a pure function of the message text and the pattern
// table: no history is consulted and nothing is mutated.
package classifier

import (
	"fmt"
	"strings"
)

// Category is the lead temperature assigned to a reply.
type Category string

const (
	Hot     Category = "HOT"
	Warm    Category = "WARM"
	Cold    Category = "COLD"
	OptOut  Category = "OPT_OUT"
	Unknown Category = "UNKNOWN"
)

// Valid returns true if c is one of the categories a table rule may produce.
func (c Category) Valid() bool {
	switch c {
	case Hot, Warm, Cold, OptOut:
		return true
	}
	return false
}

// Action is the recommended next step for a classified reply.
type Action string

const (
	ActionSuppress     Action = "SUPPRESS_IMMEDIATELY"
	ActionContactNow   Action = "CONTACT_NOW"
	ActionFollowUp     Action = "FOLLOW_UP_WITHIN_24H"
	ActionNurture      Action = "ENTER_NURTURE_SEQUENCE"
	ActionManualReview Action = "MANUAL_REVIEW"
)

// Action returns the fixed action for a matched category.
func (c Category) Action() Action {
	switch c {
	case OptOut:
		return ActionSuppress
	case Hot:
		return ActionContactNow
	case Warm:
		return ActionFollowUp
	case Cold:
		return ActionNurture
	default:
		return ActionManualReview
	}
}

const (
	fallbackConfidence = 55
	fallbackReasoning  = "pattern unclear"
)

// Result is an immutable classification of one message.
type Result struct {
	Category     Category `json:"category"`
	Confidence   int      `json:"confidence"`
	Action       Action   `json:"action"`
	Reasoning    string   `json:"reasoning"`
	Signals      []string `json:"signals,omitempty"`
	TableVersion string   `json:"table_version"`
}

// Classifier applies a pattern table to messages.
type Classifier struct {
	table *Table
}

// New creates a classifier for the given table.
func New(table *Table) (*Classifier, error) {
	if table == nil {
		return nil, fmt.Errorf("pattern table is required")
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern table: %w", err)
	}
	return &Classifier{table: table}, nil
}

var defaultClassifier = &Classifier{table: DefaultTable()}

// Default returns the classifier backed by the built-in table.
func Default() *Classifier {
	return defaultClassifier
}

// Classify classifies msg with the built-in table.
func Classify(msg string) Result {
	return defaultClassifier.Classify(msg)
}

// TableVersion returns the version of the table in use.
func (c *Classifier) TableVersion() string {
	return c.table.Version
}

// Classify evaluates the table rules in order; the first rule with at least
// one matching signal wins. Empty input yields UNKNOWN with zero confidence
// and unmatched input yields a low-confidence COLD for manual review.
func (c *Classifier) Classify(msg string) Result {
	text := prepare(msg)
	if text == "" {
		return Result{
			Category:     Unknown,
			Confidence:   0,
			Action:       ActionManualReview,
			Reasoning:    "empty message",
			TableVersion: c.table.Version,
		}
	}

	for _, rule := range c.table.Rules {
		signals := rule.match(text)
		if len(signals) == 0 {
			continue
		}
		return Result{
			Category:     rule.Category,
			Confidence:   rule.confidence(len(signals)),
			Action:       rule.Category.Action(),
			Reasoning:    fmt.Sprintf("%s (%s)", rule.Reason, strings.Join(signals, ", ")),
			Signals:      signals,
			TableVersion: c.table.Version,
		}
	}

	return Result{
		Category:     Cold,
		Confidence:   fallbackConfidence,
		Action:       ActionManualReview,
		Reasoning:    fallbackReasoning,
		TableVersion: c.table.Version,
	}
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// prepare lower-cases the message and collapses whitespace.
func prepare(msg string) string {
	return strings.Join(strings.Fields(strings.ToLower(apostrophes.Replace(msg))), " ")
}
