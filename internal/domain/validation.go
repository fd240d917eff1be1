package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxBorrowerNameLength = 255
	MaxDescriptionLength  = 1024
)

// ValidateBorrowerName validates the borrower name of a loan.
func ValidateBorrowerName(name string) error {
	if name == "" {
		return ErrBorrowerNameRequired
	}

	if len(name) > MaxBorrowerNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrBorrowerNameRequired, MaxBorrowerNameLength)
	}

	return nil
}

// ValidateLoanAmount validates the amount text. The amount is stored as
// entered; numeric text must be positive, anything else is kept verbatim.
func ValidateLoanAmount(amount string) error {
	if amount == "" {
		return ErrAmountRequired
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// ParseAmount returns the numeric value of a stored amount, if it has one.
func ParseAmount(amount string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
