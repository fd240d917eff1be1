package domain

import "errors"

var (
	// Loan errors
	ErrLoanNotFound         = errors.New("loan not found")
	ErrBorrowerNameRequired = errors.New("borrower name is required")
	ErrAmountRequired       = errors.New("amount is required")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidStatus        = errors.New("invalid loan status")

	// Storage errors
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// Price errors
	ErrUnknownSymbol  = errors.New("symbol is not tracked")
	ErrZeroReference  = errors.New("reference price is zero")
	ErrMalformedQuote = errors.New("malformed ticker payload")
)
