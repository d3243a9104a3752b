package ledger

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/evcraddock/lead-ledger/internal/property"
)

// Snapshot is the complete state of a ledger, used to persist and reload it.
type Snapshot struct {
	Contacts   []*Contact           `json:"contacts"`
	Properties []*property.Property `json:"properties"`
	Links      []*Link              `json:"links"`
}

// Snapshot returns a deep copy of the ledger's state, ordered by key.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		Contacts:   make([]*Contact, 0, len(l.contacts)),
		Properties: make([]*property.Property, 0, len(l.properties)),
		Links:      l.sortedLinks(),
	}
	for _, c := range l.contacts {
		s.Contacts = append(s.Contacts, c.clone())
	}
	for _, p := range l.properties {
		s.Properties = append(s.Properties, p.Clone())
	}
	slices.SortFunc(s.Contacts, func(a, b *Contact) int { return cmp.Compare(a.Phone, b.Phone) })
	slices.SortFunc(s.Properties, func(a, b *property.Property) int { return cmp.Compare(a.Address, b.Address) })
	return s
}

// Restore replaces the ledger's state with s. Keys must already be
// normalized and every link must reference a contact and a property in s.
// On error the ledger is unchanged.
func (l *Ledger) Restore(s Snapshot) error {
	contacts := make(map[string]*Contact, len(s.Contacts))
	for _, c := range s.Contacts {
		if c == nil || c.Phone == "" {
			return fmt.Errorf("restoring contact: empty phone")
		}
		contacts[c.Phone] = c.clone()
	}

	properties := make(map[string]*property.Property, len(s.Properties))
	for _, p := range s.Properties {
		if p == nil || p.Address == "" {
			return fmt.Errorf("restoring property: empty address")
		}
		properties[p.Address] = p.Clone()
	}

	links := make(map[linkKey]*Link, len(s.Links))
	byPhone := make(map[string][]string)
	for _, link := range s.Links {
		if _, ok := contacts[link.Phone]; !ok {
			return fmt.Errorf("restoring link: %w", &UnknownContactError{Phone: link.Phone})
		}
		if _, ok := properties[link.Address]; !ok {
			return fmt.Errorf("restoring link: %w", &UnknownPropertyError{Address: link.Address})
		}
		k := linkKey{phone: link.Phone, address: link.Address}
		if _, dup := links[k]; dup {
			return fmt.Errorf("restoring link: duplicate link %s / %s", link.Phone, link.Address)
		}
		links[k] = link.Clone()
		byPhone[link.Phone] = append(byPhone[link.Phone], link.Address)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.contacts = contacts
	l.properties = properties
	l.links = links
	l.byPhone = byPhone
	return nil
}
