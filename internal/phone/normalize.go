// Package phone normalizes phone numbers into the canonical ledger key.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// ErrInvalid is returned when input cannot be normalized to a phone number.
var ErrInvalid = errors.New("invalid phone number")

// Normalize returns the number as country code plus national digits with no
// leading "+", e.g. "(919) 555-1234" -> "19195551234".
//
// Ten digit inputs are treated as North American numbers. Inputs that start
// with "+" and carry another country code must be valid for that region.
func Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	digits := stripNonDigits(trimmed)

	switch {
	case len(digits) == 10:
		digits = "1" + digits
	case len(digits) == 11 && digits[0] == '1':
	case strings.HasPrefix(trimmed, "+") && len(digits) > 7 && len(digits) <= 15:
		return parseInternational(trimmed)
	default:
		return "", ErrInvalid
	}

	number, err := phonenumbers.Parse("+"+digits, defaultRegion)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return "", ErrInvalid
	}

	return strings.TrimPrefix(phonenumbers.Format(number, phonenumbers.E164), "+"), nil
}

// parseInternational handles non-NANP numbers written with a leading "+".
func parseInternational(input string) (string, error) {
	number, err := phonenumbers.Parse(input, defaultRegion)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalid
	}
	return strings.TrimPrefix(phonenumbers.Format(number, phonenumbers.E164), "+"), nil
}

// Display formats a normalized NANP number as "(919) 555-1234".
// Other numbers are returned with a leading "+".
func Display(normalized string) string {
	if len(normalized) == 11 && normalized[0] == '1' {
		return "(" + normalized[1:4] + ") " + normalized[4:7] + "-" + normalized[7:]
	}
	return "+" + normalized
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
