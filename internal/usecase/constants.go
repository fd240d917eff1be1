package usecase

import "time"

const (
	// DefaultStorageKey is the fixed key the ledger snapshot is stored under.
	DefaultStorageKey = "thbLoans"

	// DefaultPollInterval is the REST snapshot poll period.
	DefaultPollInterval = 5 * time.Second

	// DefaultReconnectDelay is the first wait before reopening the stream.
	DefaultReconnectDelay = 5 * time.Second

	// DefaultReconnectMaxDelay caps the reconnect backoff.
	DefaultReconnectMaxDelay = time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Ledger operation names used for instrumentation and events.
const (
	OperationLoad      = "load"
	OperationCreate    = "create"
	OperationUpdate    = "update"
	OperationSetStatus = "set_status"
	OperationDelete    = "delete"
)
