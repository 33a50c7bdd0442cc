package cgt

import (
	"errors"
	"fmt"

	"github.com/etnz/cgt/date"
)

var (
	// ErrInvalidTransaction reports a malformed trade: zero quantity, missing
	// security, missing date or negative amount.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidCorporateAction reports a non positive split factor.
	ErrInvalidCorporateAction = errors.New("invalid corporate action")
	// ErrInsufficientPool reports a disposal that cannot be matched by same-day,
	// bed and breakfast and section 104 holdings together. It usually means the
	// acquisition history is incomplete.
	ErrInsufficientPool = errors.New("insufficient pool")
)

// InsufficientPoolError gives the details of an ErrInsufficientPool failure.
type InsufficientPoolError struct {
	Security  Security
	Date      date.Date
	Quantity  Quantity // left to match from the pool
	Available Quantity // in the pool at that time
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("%s: on %s cannot dispose of %s shares of %s from the section 104 pool, only %s available; the acquisition history is probably incomplete",
		ErrInsufficientPool, e.Date, e.Quantity, e.Security, e.Available)
}

func (e *InsufficientPoolError) Unwrap() error { return ErrInsufficientPool }
