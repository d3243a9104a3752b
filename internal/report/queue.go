// Package report builds read-only views over the ledger for the people
// working the replies: the call queue and reply statistics.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/property"
)

// Call windows. A HOT reply should be called within an hour; after that it
// drops to the call-soon list. A WARM reply gets four hours before it is left
// to automated follow-up.
const (
	HotWindow  = time.Hour
	WarmWindow = 4 * time.Hour
)

// Source is the read side of the ledger used by reports.
type Source interface {
	Contacts() []*ledger.Contact
	Properties() []*property.Property
	Links() []*ledger.Link
}

// Lead is one reply waiting on a person.
type Lead struct {
	Name           string              `json:"name,omitempty"`
	Phone          string              `json:"phone"`
	Address        string              `json:"address"`
	DisplayAddress string              `json:"display_address,omitempty"`
	Message        string              `json:"message"`
	Category       classifier.Category `json:"category"`
	Confidence     int                 `json:"confidence"`
	ReceivedAt     time.Time           `json:"received_at"`
	Age            time.Duration       `json:"-"`
}

// Queue sorts the latest unanswered reply on each link into buckets, newest
// first within each.
type Queue struct {
	CallNow  []Lead `json:"call_now"`
	CallSoon []Lead `json:"call_soon"`
	FollowUp []Lead `json:"follow_up"`
	OptedOut []Lead `json:"opted_out"`
}

// Len returns the number of leads across all buckets.
func (q *Queue) Len() int {
	return len(q.CallNow) + len(q.CallSoon) + len(q.FollowUp) + len(q.OptedOut)
}

// BuildQueue returns the call queue at now. Only replies received at or
// after since are considered; a zero since considers all of them. A link
// whose last reply was followed by an outbound message has been answered and
// is left out, unless the contact opted out.
func BuildQueue(src Source, since, now time.Time) *Queue {
	contacts := make(map[string]*ledger.Contact)
	for _, c := range src.Contacts() {
		contacts[c.Phone] = c
	}
	displays := make(map[string]string)
	for _, p := range src.Properties() {
		displays[p.Address] = p.DisplayAddress
	}

	q := &Queue{}
	for _, link := range src.Links() {
		resp := link.LastResponse()
		if resp == nil || resp.ReceivedAt.Before(since) {
			continue
		}

		c := contacts[link.Phone]
		optedOut := resp.Result.Category == classifier.OptOut || (c != nil && c.OptedOut)
		if !optedOut && link.LastContactedAt.After(resp.ReceivedAt) {
			continue
		}

		lead := Lead{
			Phone:          link.Phone,
			Address:        link.Address,
			DisplayAddress: displays[link.Address],
			Message:        resp.Message,
			Category:       resp.Result.Category,
			Confidence:     resp.Result.Confidence,
			ReceivedAt:     resp.ReceivedAt,
			Age:            now.Sub(resp.ReceivedAt),
		}
		if c != nil {
			lead.Name = c.DisplayName
		}

		switch {
		case optedOut:
			q.OptedOut = append(q.OptedOut, lead)
		case lead.Category == classifier.Hot && lead.Age <= HotWindow:
			q.CallNow = append(q.CallNow, lead)
		case lead.Category == classifier.Hot,
			lead.Category == classifier.Warm && lead.Age <= WarmWindow:
			q.CallSoon = append(q.CallSoon, lead)
		default:
			q.FollowUp = append(q.FollowUp, lead)
		}
	}

	for _, bucket := range [][]Lead{q.CallNow, q.CallSoon, q.FollowUp, q.OptedOut} {
		slices.SortFunc(bucket, newestFirst)
	}
	return q
}

func newestFirst(a, b Lead) int {
	return cmp.Or(
		b.ReceivedAt.Compare(a.ReceivedAt),
		cmp.Compare(a.Phone, b.Phone),
		cmp.Compare(a.Address, b.Address),
	)
}
