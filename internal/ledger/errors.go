package ledger

import (
	"errors"
	"fmt"
)

// ErrDuplicateResponse reports a reply already in the pair's history with the
// same receive time and text.
var ErrDuplicateResponse = errors.New("response already recorded")

// InvalidPhoneError reports input that cannot be normalized to a phone number.
type InvalidPhoneError struct {
	Input string
	Err   error
}

func (e *InvalidPhoneError) Error() string {
	return fmt.Sprintf("invalid phone number %q", e.Input)
}

func (e *InvalidPhoneError) Unwrap() error { return e.Err }

// InvalidAddressError reports an address that normalizes to nothing.
type InvalidAddressError struct {
	Input string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q", e.Input)
}

// UnknownContactError reports a phone that was never upserted.
type UnknownContactError struct {
	Phone string
}

func (e *UnknownContactError) Error() string {
	return fmt.Sprintf("unknown contact %s: upsert the contact first", e.Phone)
}

// UnknownPropertyError reports an address that was never upserted.
type UnknownPropertyError struct {
	Address string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %q: upsert the property first", e.Address)
}

// IsRowError reports whether err is a data problem with a single input row
// (bad phone or address). Batch drivers skip such rows; any other error is a
// sequencing bug.
func IsRowError(err error) bool {
	var pe *InvalidPhoneError
	var ae *InvalidAddressError
	return errors.As(err, &pe) || errors.As(err, &ae)
}
