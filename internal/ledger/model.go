package ledger

import (
	"slices"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
)

// Contact is a person reachable by phone.
type Contact struct {
	Phone       string    `json:"phone"`
	DisplayName string    `json:"display_name,omitempty"`
	OptedOut    bool      `json:"opted_out"`
	OptedOutAt  time.Time `json:"opted_out_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContactAttrs is one observation of a contact. OptedOut can only turn the
// stored flag on.
type ContactAttrs struct {
	DisplayName string
	OptedOut    bool
}

// Response is one inbound reply and its classification.
type Response struct {
	ReceivedAt time.Time         `json:"received_at"`
	Message    string            `json:"message"`
	Result     classifier.Result `json:"result"`
}

// Link records that a contact owns a property, plus the outreach history for
// that pair.
type Link struct {
	Phone           string     `json:"phone"`
	Address         string     `json:"address"`
	LastContactedAt time.Time  `json:"last_contacted_at,omitzero"`
	History         []Response `json:"history,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// LastClassification returns the classification of the most recent reply,
// or nil if no reply was recorded.
func (l *Link) LastClassification() *classifier.Result {
	if r := l.LastResponse(); r != nil {
		return &r.Result
	}
	return nil
}

// LastResponse returns the most recent reply, or nil.
func (l *Link) LastResponse() *Response {
	if len(l.History) == 0 {
		return nil
	}
	return &l.History[len(l.History)-1]
}

// Contacted reports whether a message was ever sent about this pair.
func (l *Link) Contacted() bool {
	return !l.LastContactedAt.IsZero()
}

// LastActivity is the later of the last outbound message and the last reply.
// A reply implies a message was delivered even when the send was never
// recorded. Zero means the link carries ownership only.
func (l *Link) LastActivity() time.Time {
	t := l.LastContactedAt
	if r := l.LastResponse(); r != nil && r.ReceivedAt.After(t) {
		t = r.ReceivedAt
	}
	return t
}

// Clone returns a deep copy of the link.
func (l *Link) Clone() *Link {
	c := *l
	c.History = make([]Response, len(l.History))
	for i, r := range l.History {
		r.Result.Signals = slices.Clone(r.Result.Signals)
		c.History[i] = r
	}
	if len(c.History) == 0 {
		c.History = nil
	}
	return &c
}

func (c *Contact) clone() *Contact {
	cp := *c
	return &cp
}
