package finance

import (
	"errors"
	"fmt"
)

// Payment batch rejection reasons. The error text is the machine-readable
// reason code shown to the UI layer.
var (
	// ErrZeroOrNegativeTotal is returned when the surviving rows add up to nothing.
	ErrZeroOrNegativeTotal = errors.New("zero-or-negative-total")

	// ErrExceedsBalance is returned when the batch pays more than the invoice owes.
	ErrExceedsBalance = errors.New("exceeds-balance")
)

// Query parsing errors
var (
	ErrUnknownWindow  = errors.New("unknown loyalty window")
	ErrUnknownSortKey = errors.New("unknown loyalty sort key")
	ErrInvalidRange   = errors.New("range start is after range end")
)

// ValidationError reports a rejected payment batch. It is recoverable: the
// caller re-prompts the user and nothing has been committed.
type ValidationError struct {
	// Err is one of ErrZeroOrNegativeTotal or ErrExceedsBalance.
	Err error

	// TotalPaid is the sum of the rows that survived parsing.
	TotalPaid float64

	// Balance is the outstanding balance the batch was checked against.
	Balance float64
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrExceedsBalance) {
		return fmt.Sprintf("%s: total paid %.2f exceeds balance %.2f by %.2f", e.Err, e.TotalPaid, e.Balance, e.Excess())
	}
	return fmt.Sprintf("%s: total paid %.2f", e.Err, e.TotalPaid)
}

// Unwrap returns the underlying reason for errors.Is matching.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Reason returns the reason code ("zero-or-negative-total" or "exceeds-balance").
func (e *ValidationError) Reason() string {
	return e.Err.Error()
}

// Excess is how much the batch goes over the balance, or 0.
func (e *ValidationError) Excess() float64 {
	if e.TotalPaid > e.Balance {
		return e.TotalPaid - e.Balance
	}
	return 0
}
