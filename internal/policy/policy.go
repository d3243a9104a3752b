// Package policy decides whether a contact may be messaged about a property.
package policy

import (
	"fmt"
	"time"

	"github.com/evcraddock/lead-ledger/internal/classifier"
	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/property"
)

// Outcome is whether a send is permitted.
type Outcome string

const (
	Allowed Outcome = "ALLOWED"
	Blocked Outcome = "BLOCKED"
)

// Reason explains a blocked decision.
type Reason string

const (
	ReasonOptedOut                 Reason = "OPTED_OUT"
	ReasonAlreadyContactedRecently Reason = "ALREADY_CONTACTED_RECENTLY"
	ReasonQuietHours               Reason = "QUIET_HOURS"
)

// Variant selects the message template for an allowed send.
type Variant string

const (
	VariantFirstContact         Variant = "FIRST_CONTACT"
	VariantNewPropertySameOwner Variant = "NEW_PROPERTY_SAME_OWNER"
	VariantReengagement         Variant = "REENGAGEMENT"
)

// Decision is the result of one evaluation. Exactly one of Reason (when
// blocked) or Variant (when allowed) is set.
type Decision struct {
	Outcome Outcome `json:"decision"`
	Reason  Reason  `json:"reason,omitempty"`
	Variant Variant `json:"variant,omitempty"`
}

func allow(v Variant) Decision { return Decision{Outcome: Allowed, Variant: v} }
func block(r Reason) Decision  { return Decision{Outcome: Blocked, Reason: r} }

// String returns "ALLOWED/FIRST_CONTACT" style output.
func (d Decision) String() string {
	if d.Outcome == Allowed {
		return fmt.Sprintf("%s/%s", d.Outcome, d.Variant)
	}
	return fmt.Sprintf("%s/%s", d.Outcome, d.Reason)
}

// Reader is the read side of the contact ledger.
type Reader interface {
	Contact(phone string) (*ledger.Contact, error)
	Property(address string) (*property.Property, error)
	LinksForPhone(phone string) ([]*ledger.Link, error)
}

// Policy evaluates candidate sends against ledger history.
type Policy struct {
	cfg Config
}

// New creates a policy. A non-positive cooldown falls back to the default.
func New(cfg Config) *Policy {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Policy{cfg: cfg}
}

// Config returns the effective configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// WithoutQuietHours returns a copy of p that ignores quiet hours, for
// decisions about a send that is planned rather than made now.
func (p *Policy) WithoutQuietHours() *Policy {
	cfg := p.cfg
	cfg.QuietHours = QuietHours{}
	return &Policy{cfg: cfg}
}

// Evaluate decides whether the contact at phone may be messaged about the
// property at address at time now.
//
// Opt-out is checked first and wins even for properties the ledger has never
// seen. Then quiet hours, then history for the exact pair, then the owner's
// other properties. No history at all means first contact. Only lookups of
// contacts or properties that were never upserted return an error.
func (p *Policy) Evaluate(r Reader, phone, address string, now time.Time) (Decision, error) {
	contact, err := r.Contact(phone)
	if err != nil {
		return Decision{}, err
	}
	if contact.OptedOut {
		return block(ReasonOptedOut), nil
	}

	if p.cfg.QuietHours.Contains(now) {
		return block(ReasonQuietHours), nil
	}

	target, err := r.Property(address)
	if err != nil {
		return Decision{}, err
	}
	links, err := r.LinksForPhone(contact.Phone)
	if err != nil {
		return Decision{}, err
	}

	var ownerActivity time.Time
	for _, link := range links {
		activity := link.LastActivity()
		if activity.IsZero() {
			continue
		}

		if link.Address == target.Address {
			return p.decideExact(link, activity, now), nil
		}
		if activity.After(ownerActivity) {
			ownerActivity = activity
		}
	}

	if !ownerActivity.IsZero() {
		if p.cfg.SameOwnerCooldown && p.withinCooldown(ownerActivity, now) {
			return block(ReasonAlreadyContactedRecently), nil
		}
		return allow(VariantNewPropertySameOwner), nil
	}

	return allow(VariantFirstContact), nil
}

func (p *Policy) decideExact(link *ledger.Link, activity, now time.Time) Decision {
	if p.withinCooldown(activity, now) {
		return block(ReasonAlreadyContactedRecently)
	}
	if c := link.LastClassification(); c != nil && c.Category == classifier.OptOut {
		return block(ReasonOptedOut)
	}
	return allow(VariantReengagement)
}

// withinCooldown reports whether less than the cooldown has elapsed since
// activity. Activity in the future counts as recent.
func (p *Policy) withinCooldown(activity, now time.Time) bool {
	return now.Sub(activity) < p.cfg.Cooldown
}
