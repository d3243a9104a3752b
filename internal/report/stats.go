package report

import (
	"github.com/evcraddock/lead-ledger/internal/classifier"
)

// Stats summarizes the ledger and every recorded reply.
type Stats struct {
	Contacts         int `json:"contacts"`
	OptedOutContacts int `json:"opted_out_contacts"`
	Properties       int `json:"properties"`
	Links            int `json:"links"`
	ContactedLinks   int `json:"contacted_links"`
	RepliedLinks     int `json:"replied_links"`

	Replies    int                         `json:"replies"`
	ByCategory map[classifier.Category]int `json:"by_category"`
}

// Rate returns the share of replies classified as c, from 0 to 1.
func (s Stats) Rate(c classifier.Category) float64 {
	if s.Replies == 0 {
		return 0
	}
	return float64(s.ByCategory[c]) / float64(s.Replies)
}

// ReplyRate returns the share of contacted links that got at least one
// reply, from 0 to 1.
func (s Stats) ReplyRate() float64 {
	if s.ContactedLinks == 0 {
		return 0
	}
	return float64(s.RepliedLinks) / float64(s.ContactedLinks)
}

// BuildStats counts contacts, properties and links, and tallies every reply
// by its classification.
func BuildStats(src Source) Stats {
	s := Stats{ByCategory: make(map[classifier.Category]int)}

	for _, c := range src.Contacts() {
		s.Contacts++
		if c.OptedOut {
			s.OptedOutContacts++
		}
	}
	s.Properties = len(src.Properties())

	for _, link := range src.Links() {
		s.Links++
		if !link.LastActivity().IsZero() {
			s.ContactedLinks++
		}
		if len(link.History) > 0 {
			s.RepliedLinks++
		}
		for _, r := range link.History {
			s.Replies++
			s.ByCategory[r.Result.Category]++
		}
	}
	return s
}
