package domain

import (
	"strings"
	"time"
)

// LoanStatus is the lifecycle state of a loan record.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "Pending"
	LoanStatusApproved LoanStatus = "Approved"
	LoanStatusRejected LoanStatus = "Rejected"
	LoanStatusPaid     LoanStatus = "Paid"
)

// DescriptionPlaceholder is stored when a loan is submitted without a description.
const DescriptionPlaceholder = "-"

// Date and time layouts follow the id-ID locale: 19/10/2026 and 14.05.
const (
	LoanDateLayout = "2/1/2006"
	LoanTimeLayout = "15.04"
)

// LoanStatuses lists every valid status in display order.
var LoanStatuses = []LoanStatus{
	LoanStatusPending,
	LoanStatusApproved,
	LoanStatusRejected,
	LoanStatusPaid,
}

// Valid reports whether s is one of the known statuses.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusPaid:
		return true
	}
	return false
}

// ParseLoanStatus resolves a status name case-insensitively.
func ParseLoanStatus(s string) (LoanStatus, error) {
	for _, status := range LoanStatuses {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// LoanRecord is one entry of the ledger. The JSON shape is the persisted format.
type LoanRecord struct {
	ID          int64      `json:"id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Name        string     `json:"name"`
	Amount      string     `json:"amount"`
	Description string     `json:"description"`
	Status      LoanStatus `json:"status"`
}

// LoanFields are the user-editable fields of a loan.
type LoanFields struct {
	Name        string
	Amount      string
	Description string
	Status      LoanStatus
}

// Normalize applies defaults and validates the fields.
func (f LoanFields) Normalize() (LoanFields, error) {
	if err := ValidateBorrowerName(f.Name); err != nil {
		return f, err
	}
	if err := ValidateLoanAmount(f.Amount); err != nil {
		return f, err
	}
	if f.Description == "" {
		f.Description = DescriptionPlaceholder
	}
	if f.Status == "" {
		f.Status = LoanStatusPending
	}
	if !f.Status.Valid() {
		return f, ErrInvalidStatus
	}
	return f, nil
}

// NewLoanRecord stamps a new record with its id and creation time.
func NewLoanRecord(id int64, createdAt time.Time, fields LoanFields) LoanRecord {
	return LoanRecord{
		ID:          id,
		Date:        createdAt.Format(LoanDateLayout),
		Time:        createdAt.Format(LoanTimeLayout),
		Name:        fields.Name,
		Amount:      fields.Amount,
		Description: fields.Description,
		Status:      fields.Status,
	}
}

// WithFields returns a copy with the editable fields replaced. ID and creation stamp are kept.
func (l LoanRecord) WithFields(fields LoanFields) LoanRecord {
	l.Name = fields.Name
	l.Amount = fields.Amount
	l.Description = fields.Description
	l.Status = fields.Status
	return l
}
