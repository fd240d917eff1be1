package domain

import "time"

// Event types
const (
	EventTypeLoanCreated       = "loan.created"
	EventTypeLoanUpdated       = "loan.updated"
	EventTypeLoanStatusChanged = "loan.status_changed"
	EventTypeLoanDeleted       = "loan.deleted"
)

// LoanEvent describes a ledger mutation after it has been persisted.
type LoanEvent struct {
	EventType      string     `json:"event_type"`
	LoanID         int64      `json:"loan_id"`
	Loan           LoanRecord `json:"loan"`
	PreviousStatus LoanStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
