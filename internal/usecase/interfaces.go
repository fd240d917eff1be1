package usecase

import (
	"context"
	"time"

	"github.com/iho/loanticker/internal/domain"
)

// SnapshotStore is a key-value store holding whole-collection snapshots.
type SnapshotStore interface {
	// Load returns domain.ErrSnapshotNotFound when key has never been saved.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
}

// IDGenerator issues loan ids that strictly increase in creation order.
type IDGenerator interface {
	Generate(now time.Time) int64
	// Seed makes every later id greater than maxID.
	Seed(maxID int64)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// EventPublisher hands ledger events to an external sink.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LoanEvent) error
}

// LedgerObserver receives ledger instrumentation.
type LedgerObserver interface {
	ObserveLoanOperation(operation string, err error)
	SetLoanCount(n int)
}

// TickerClient fetches REST ticker snapshots.
type TickerClient interface {
	FetchTicker(ctx context.Context, pair domain.Pair) (domain.Ticker, error)
}

// StreamDialer opens streaming connections.
type StreamDialer interface {
	Dial(ctx context.Context) (StreamConn, error)
}

// StreamConn is one open streaming connection.
type StreamConn interface {
	Subscribe(ctx context.Context, channels []string) error
	// ReadUpdate blocks until the next ticker message arrives or the connection fails.
	ReadUpdate(ctx context.Context) (domain.TickerUpdate, error)
	Close() error
}

// FeedObserver receives price feed instrumentation.
type FeedObserver interface {
	ObservePriceUpdate(source domain.PriceSource, symbol string, applied bool)
	ObserveFetchError(pair string)
	ObserveReconnect()
	SetStreamConnected(connected bool)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type noopLedgerObserver struct{}

func (noopLedgerObserver) ObserveLoanOperation(string, error) {}
func (noopLedgerObserver) SetLoanCount(int)                   {}

type noopFeedObserver struct{}

func (noopFeedObserver) ObservePriceUpdate(domain.PriceSource, string, bool) {}
func (noopFeedObserver) ObserveFetchError(string)                            {}
func (noopFeedObserver) ObserveReconnect()                                   {}
func (noopFeedObserver) SetStreamConnected(bool)                             {}
