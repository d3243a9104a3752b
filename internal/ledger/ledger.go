// Package ledger is the system of record for contacts, properties and the
// outreach history between them.
//
// All mutations are serialized behind a single mutex: the merge rules (sticky
// opt-out, replace-if-more-confident) are read-modify-write per key. Values
// returned to callers are copies.
package ledger

import (
	"cmp"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/evcraddock/lead-ledger/internal/address"
	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/phone"
	"github.com/evcraddock/lead-ledger/internal/property"
)

type linkKey struct {
	phone   string
	address string
}

// Ledger holds contacts, properties and links in memory.
type Ledger struct {
	mu         sync.Mutex
	classifier *classifier.Classifier
	now        func() time.Time

	contacts   map[string]*Contact
	properties map[string]*property.Property
	links      map[linkKey]*Link
	byPhone    map[string][]string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClassifier sets the classifier used by RecordResponse.
func WithClassifier(c *classifier.Classifier) Option {
	return func(l *Ledger) {
		if c != nil {
			l.classifier = c
		}
	}
}

// WithClock sets the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		classifier: classifier.Default(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	l.reset()
	return l
}

// TableVersion returns the version of the pattern table used to classify
// replies.
func (l *Ledger) TableVersion() string {
	return l.classifier.TableVersion()
}

func (l *Ledger) reset() {
	l.contacts = make(map[string]*Contact)
	l.properties = make(map[string]*property.Property)
	l.links = make(map[linkKey]*Link)
	l.byPhone = make(map[string][]string)
}

// NormalizePhone normalizes input or returns an *InvalidPhoneError.
func NormalizePhone(input string) (string, error) {
	p, err := phone.Normalize(input)
	if err != nil {
		return "", &InvalidPhoneError{Input: input, Err: err}
	}
	return p, nil
}

// NormalizeAddress normalizes input or returns an *InvalidAddressError.
func NormalizeAddress(input string) (string, error) {
	a := address.Normalize(input)
	if a == "" {
		return "", &InvalidAddressError{Input: input}
	}
	return a, nil
}

// UpsertContact creates or merges a contact. The opted-out flag is sticky and
// the display name is only filled when empty.
func (l *Ledger) UpsertContact(phoneInput string, attrs ContactAttrs) (*Contact, error) {
	p, err := NormalizePhone(phoneInput)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c := l.ensureContact(p, now)
	if c.DisplayName == "" && attrs.DisplayName != "" {
		c.DisplayName = attrs.DisplayName
		c.UpdatedAt = now
	}
	if attrs.OptedOut {
		l.optOut(c, now)
	}
	return c.clone(), nil
}

func (l *Ledger) ensureContact(p string, now time.Time) *Contact {
	c, ok := l.contacts[p]
	if !ok {
		c = &Contact{Phone: p, CreatedAt: now, UpdatedAt: now}
		l.contacts[p] = c
	}
	return c
}

func (l *Ledger) optOut(c *Contact, at time.Time) {
	if c.OptedOut {
		return
	}
	c.OptedOut = true
	c.OptedOutAt = at
	c.UpdatedAt = l.now()
}

// UpsertProperty creates or merges a property keyed by its normalized address.
// When attrs carries no display address the raw input is used.
func (l *Ledger) UpsertProperty(addressInput string, attrs property.Attrs) (*property.Property, error) {
	a, err := NormalizeAddress(addressInput)
	if err != nil {
		return nil, err
	}
	if attrs.DisplayAddress == "" {
		attrs.DisplayAddress = addressInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	p, ok := l.properties[a]
	if !ok {
		p = property.New(a, attrs, now)
		l.properties[a] = p
	} else {
		p.Merge(attrs, now)
	}
	return p.Clone(), nil
}

// resolve normalizes a pair and checks that both sides exist. The caller
// must hold l.mu.
func (l *Ledger) resolve(phoneInput, addressInput string) (linkKey, error) {
	p, err := NormalizePhone(phoneInput)
	if err != nil {
		return linkKey{}, err
	}
	a, err := NormalizeAddress(addressInput)
	if err != nil {
		return linkKey{}, err
	}
	if _, ok := l.contacts[p]; !ok {
		return linkKey{}, &UnknownContactError{Phone: p}
	}
	if _, ok := l.properties[a]; !ok {
		return linkKey{}, &UnknownPropertyError{Address: a}
	}
	return linkKey{phone: p, address: a}, nil
}

func (l *Ledger) ensureLink(k linkKey, now time.Time) *Link {
	link, ok := l.links[k]
	if !ok {
		link = &Link{Phone: k.phone, Address: k.address, CreatedAt: now}
		l.links[k] = link
		l.byPhone[k.phone] = append(l.byPhone[k.phone], k.address)
	}
	return link
}

// AssociateOwner links a contact to a property without any outreach history.
// Both must already exist.
func (l *Ledger) AssociateOwner(phoneInput, addressInput string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k, err := l.resolve(phoneInput, addressInput)
	if err != nil {
		return err
	}
	l.ensureLink(k, l.now())
	return nil
}

// RecordContactAttempt notes an outbound message to the pair at the given
// time. LastContactedAt never moves backwards.
func (l *Ledger) RecordContactAttempt(phoneInput, addressInput string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k, err := l.resolve(phoneInput, addressInput)
	if err != nil {
		return err
	}
	link := l.ensureLink(k, l.now())
	if at.After(link.LastContactedAt) {
		link.LastContactedAt = at
	}
	return nil
}

// RecordResponse classifies an inbound reply, appends it to the pair's
// history and, on OPT_OUT, opts the contact out.
//
// History stays ordered by receive time, so replies imported out of order
// still leave the latest reply as the last classification. A reply with the
// same receive time and text as a recorded one is not added again; its
// stored result is returned with ErrDuplicateResponse.
func (l *Ledger) RecordResponse(phoneInput, addressInput, message string, at time.Time) (classifier.Result, error) {
	result := l.classifier.Classify(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	k, err := l.resolve(phoneInput, addressInput)
	if err != nil {
		return classifier.Result{}, err
	}

	link := l.ensureLink(k, l.now())
	i := sort.Search(len(link.History), func(i int) bool {
		return link.History[i].ReceivedAt.After(at)
	})
	for j := i - 1; j >= 0 && link.History[j].ReceivedAt.Equal(at); j-- {
		if link.History[j].Message == message {
			return link.History[j].Result, ErrDuplicateResponse
		}
	}
	link.History = slices.Insert(link.History, i, Response{ReceivedAt: at, Message: message, Result: result})

	if result.Category == classifier.OptOut {
		l.optOut(l.contacts[k.phone], at)
	}
	return result, nil
}

// MarkOptedOut opts a contact out, creating it if needed. It is the ingestion
// path for provider-side opt-out callbacks that carry no property.
func (l *Ledger) MarkOptedOut(phoneInput string, at time.Time) (*Contact, error) {
	p, err := NormalizePhone(phoneInput)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.ensureContact(p, l.now())
	l.optOut(c, at)
	return c.clone(), nil
}

// Contact returns the contact for a phone.
func (l *Ledger) Contact(phoneInput string) (*Contact, error) {
	p, err := NormalizePhone(phoneInput)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.contacts[p]
	if !ok {
		return nil, &UnknownContactError{Phone: p}
	}
	return c.clone(), nil
}

// Property returns the property for an address.
func (l *Ledger) Property(addressInput string) (*property.Property, error) {
	a, err := NormalizeAddress(addressInput)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.properties[a]
	if !ok {
		return nil, &UnknownPropertyError{Address: a}
	}
	return p.Clone(), nil
}

// GetLink returns the link for a pair, or nil if the pair was never linked.
// Unknown contacts or properties are not an error here.
func (l *Ledger) GetLink(phoneInput, addressInput string) (*Link, error) {
	p, err := NormalizePhone(phoneInput)
	if err != nil {
		return nil, err
	}
	a, err := NormalizeAddress(addressInput)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	link, ok := l.links[linkKey{phone: p, address: a}]
	if !ok {
		return nil, nil
	}
	return link.Clone(), nil
}

// LinksForPhone returns every property link for a contact, ordered by
// address.
func (l *Ledger) LinksForPhone(phoneInput string) ([]*Link, error) {
	p, err := NormalizePhone(phoneInput)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	addrs := slices.Sorted(slices.Values(l.byPhone[p]))
	links := make([]*Link, 0, len(addrs))
	for _, a := range addrs {
		links = append(links, l.links[linkKey{phone: p, address: a}].Clone())
	}
	return links, nil
}

// Contacts returns every contact ordered by phone.
func (l *Ledger) Contacts() []*Contact {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Contact, 0, len(l.contacts))
	for _, c := range l.contacts {
		out = append(out, c.clone())
	}
	slices.SortFunc(out, func(a, b *Contact) int { return cmp.Compare(a.Phone, b.Phone) })
	return out
}

// Properties returns every property ordered by address.
func (l *Ledger) Properties() []*property.Property {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*property.Property, 0, len(l.properties))
	for _, p := range l.properties {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b *property.Property) int { return cmp.Compare(a.Address, b.Address) })
	return out
}

// Links returns every link ordered by phone, then address.
func (l *Ledger) Links() []*Link {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sortedLinks()
}

func (l *Ledger) sortedLinks() []*Link {
	out := make([]*Link, 0, len(l.links))
	for _, link := range l.links {
		out = append(out, link.Clone())
	}
	slices.SortFunc(out, func(a, b *Link) int {
		return cmp.Or(cmp.Compare(a.Phone, b.Phone), cmp.Compare(a.Address, b.Address))
	})
	return out
}
