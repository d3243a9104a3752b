package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/evcraddock/lead-ledger/internal/ledger"
	"github.com/evcraddock/lead-ledger/internal/property"
)

const (
	owner  = "19195551234"
	other  = "19195559999"
	mainSt = "123 Main St"
	oakAve = "456 Oak Ave"
)

var day0 = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// newLedger returns a ledger with both test contacts and properties upserted.
func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New(ledger.WithClock(func() time.Time { return day0 }))
	for _, p := range []string{owner, other} {
		if _, err := l.UpsertContact(p, ledger.ContactAttrs{}); err != nil {
			t.Fatalf("upsert contact: %v", err)
		}
	}
	for _, a := range []string{mainSt, oakAve} {
		if _, err := l.UpsertProperty(a, property.Attrs{}); err != nil {
			t.Fatalf("upsert property: %v", err)
		}
	}
	return l
}

func mustEvaluate(t *testing.T, p *Policy, l *ledger.Ledger, phone, address string, now time.Time) Decision {
	t.Helper()
	d, err := p.Evaluate(l, phone, address, now)
	if err != nil {
		t.Fatalf("evaluate %s / %s: %v", phone, address, err)
	}
	return d
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		setup   func(t *testing.T, l *ledger.Ledger)
		phone   string
		address string
		now     time.Time
		want    Decision
	}{
		{
			name:    "no history",
			cfg:     DefaultConfig(),
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    allow(VariantFirstContact),
		},
		{
			name: "ownership only is first contact",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.AssociateOwner(owner, mainSt))
				mustDo(t, l.AssociateOwner(owner, oakAve))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    allow(VariantFirstContact),
		},
		{
			name: "contacted yesterday",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-day)))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    block(ReasonAlreadyContactedRecently),
		},
		{
			name: "one hour before cooldown ends",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-DefaultCooldown+time.Hour)))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    block(ReasonAlreadyContactedRecently),
		},
		{
			name: "cooldown elapsed exactly",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-DefaultCooldown)))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    allow(VariantReengagement),
		},
		{
			name: "cold reply long ago",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-400*day)))
				mustRespond(t, l, owner, mainSt, "not interested", day0.Add(-399*day))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    allow(VariantReengagement),
		},
		{
			name: "recent reply without recorded send",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-300*day)))
				mustRespond(t, l, owner, mainSt, "maybe", day0.Add(-10*day))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    block(ReasonAlreadyContactedRecently),
		},
		{
			name: "custom cooldown",
			cfg:  Config{Cooldown: 30 * day},
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-31*day)))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    allow(VariantReengagement),
		},
		{
			name: "new property same owner within cooldown",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-time.Hour)))
			},
			phone:   owner,
			address: oakAve,
			now:     day0,
			want:    allow(VariantNewPropertySameOwner),
		},
		{
			name: "zero config allows same owner",
			cfg:  Config{Cooldown: 30 * day},
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-time.Hour)))
			},
			phone:   owner,
			address: oakAve,
			now:     day0,
			want:    allow(VariantNewPropertySameOwner),
		},
		{
			name: "new property same owner under strict rule",
			cfg:  Config{Cooldown: DefaultCooldown, SameOwnerCooldown: true},
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-time.Hour)))
			},
			phone:   owner,
			address: oakAve,
			now:     day0,
			want:    block(ReasonAlreadyContactedRecently),
		},
		{
			name: "new property same owner under strict rule after cooldown",
			cfg:  Config{Cooldown: DefaultCooldown, SameOwnerCooldown: true},
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-200*day)))
			},
			phone:   owner,
			address: oakAve,
			now:     day0,
			want:    allow(VariantNewPropertySameOwner),
		},
		{
			name: "co-owner history does not leak",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustDo(t, l.RecordContactAttempt(other, mainSt, day0.Add(-time.Hour)))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    allow(VariantFirstContact),
		},
		{
			name: "opted out overrides first contact",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				if _, err := l.MarkOptedOut(owner, day0.Add(-500*day)); err != nil {
					t.Fatalf("mark opted out: %v", err)
				}
			},
			phone:   owner,
			address: oakAve,
			now:     day0,
			want:    block(ReasonOptedOut),
		},
		{
			name: "opted out on another property",
			cfg:  DefaultConfig(),
			setup: func(t *testing.T, l *ledger.Ledger) {
				mustRespond(t, l, owner, oakAve, "remove me from your list", day0.Add(-400*day))
			},
			phone:   owner,
			address: mainSt,
			now:     day0,
			want:    block(ReasonOptedOut),
		},
		{
			name:    "quiet hours",
			cfg:     Config{Cooldown: DefaultCooldown, QuietHours: QuietHours{Start: 21, End: 8}},
			phone:   owner,
			address: mainSt,
			now:     time.Date(2026, 3, 2, 22, 30, 0, 0, time.UTC),
			want:    block(ReasonQuietHours),
		},
		{
			name:    "outside quiet hours",
			cfg:     Config{Cooldown: DefaultCooldown, QuietHours: QuietHours{Start: 21, End: 8}},
			phone:   owner,
			address: mainSt,
			now:     time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			want:    allow(VariantFirstContact),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t)
			if tt.setup != nil {
				tt.setup(t, l)
			}
			got := mustEvaluate(t, New(tt.cfg), l, tt.phone, tt.address, tt.now)
			if got != tt.want {
				t.Errorf("Evaluate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateExclusive(t *testing.T) {
	l := newLedger(t)
	mustDo(t, l.RecordContactAttempt(owner, mainSt, day0.Add(-10*day)))
	mustRespond(t, l, owner, mainSt, "how much", day0.Add(-9*day))

	p := New(DefaultConfig())
	for _, phone := range []string{owner, other} {
		for _, address := range []string{mainSt, oakAve} {
			for _, offset := range []time.Duration{0, 100 * day, 400 * day} {
				d := mustEvaluate(t, p, l, phone, address, day0.Add(offset))
				switch d.Outcome {
				case Allowed:
					if d.Variant == "" || d.Reason != "" {
						t.Errorf("%s / %s: allowed decision %+v must carry only a variant", phone, address, d)
					}
				case Blocked:
					if d.Reason == "" || d.Variant != "" {
						t.Errorf("%s / %s: blocked decision %+v must carry only a reason", phone, address, d)
					}
				default:
					t.Errorf("%s / %s: unexpected outcome %q", phone, address, d.Outcome)
				}
			}
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	l := newLedger(t)
	p := New(DefaultConfig())

	_, err := p.Evaluate(l, "19195550000", mainSt, day0)
	var uc *ledger.UnknownContactError
	if !errors.As(err, &uc) {
		t.Errorf("unknown contact err = %v, want *ledger.UnknownContactError", err)
	}

	_, err = p.Evaluate(l, owner, "999 Nowhere Blvd", day0)
	var up *ledger.UnknownPropertyError
	if !errors.As(err, &up) {
		t.Errorf("unknown property err = %v, want *ledger.UnknownPropertyError", err)
	}

	_, err = p.Evaluate(l, "12", mainSt, day0)
	if !ledger.IsRowError(err) {
		t.Errorf("invalid phone err = %v, want row error", err)
	}
}

func TestEndToEndHotLead(t *testing.T) {
	l := ledger.New()
	if _, err := l.UpsertContact("19195551234", ledger.ContactAttrs{}); err != nil {
		t.Fatalf("upsert contact: %v", err)
	}
	if _, err := l.UpsertProperty("123 Main St", property.Attrs{}); err != nil {
		t.Fatalf("upsert property: %v", err)
	}
	if _, err := l.UpsertProperty("456 Oak Ave", property.Attrs{}); err != nil {
		t.Fatalf("upsert property: %v", err)
	}
	mustRespond(t, l, "19195551234", "123 Main St", "Make us an offer, how much can you do?", day0)

	p := New(DefaultConfig())
	next := day0.Add(day)

	if got := mustEvaluate(t, p, l, "19195551234", "123 Main St", next); got != block(ReasonAlreadyContactedRecently) {
		t.Errorf("same pair next day = %s, want BLOCKED/ALREADY_CONTACTED_RECENTLY", got)
	}
	if got := mustEvaluate(t, p, l, "19195551234", "456 Oak Ave", next); got != allow(VariantNewPropertySameOwner) {
		t.Errorf("new address next day = %s, want ALLOWED/NEW_PROPERTY_SAME_OWNER", got)
	}
}

func TestEndToEndStop(t *testing.T) {
	l := newLedger(t)
	mustRespond(t, l, owner, mainSt, "STOP", day0)

	c, err := l.Contact(owner)
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if !c.OptedOut {
		t.Fatal("contact not opted out after STOP")
	}

	p := New(DefaultConfig())
	// Includes an address the ledger has never seen.
	for _, address := range []string{mainSt, oakAve, "77 Never Seen Way"} {
		for _, offset := range []time.Duration{day, 365 * day, 5 * 365 * day} {
			got := mustEvaluate(t, p, l, owner, address, day0.Add(offset))
			if got != block(ReasonOptedOut) {
				t.Errorf("%s after %v = %s, want BLOCKED/OPTED_OUT", address, offset, got)
			}
		}
	}
}

func TestDecisionString(t *testing.T) {
	if got := allow(VariantReengagement).String(); got != "ALLOWED/REENGAGEMENT" {
		t.Errorf("String() = %q", got)
	}
	if got := block(ReasonOptedOut).String(); got != "BLOCKED/OPTED_OUT" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewDefaultsCooldown(t *testing.T) {
	if got := New(Config{}).Config().Cooldown; got != DefaultCooldown {
		t.Errorf("cooldown = %v, want %v", got, DefaultCooldown)
	}
}

func TestWithoutQuietHours(t *testing.T) {
	p := New(Config{Cooldown: 30 * day, SameOwnerCooldown: true, QuietHours: QuietHours{Start: 21, End: 8}})

	got := p.WithoutQuietHours().Config()
	want := Config{Cooldown: 30 * day, SameOwnerCooldown: true}
	if got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}
	if !p.Config().QuietHours.Enabled() {
		t.Error("WithoutQuietHours changed the original policy")
	}
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func mustRespond(t *testing.T, l *ledger.Ledger, phone, address, msg string, at time.Time) {
	t.Helper()
	if _, err := l.RecordResponse(phone, address, msg, at); err != nil {
		t.Fatalf("record response %q: %v", msg, err)
	}
}
