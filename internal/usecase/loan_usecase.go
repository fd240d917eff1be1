package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/loanticker/internal/domain"
)

// Confirmation asks the caller whether a loan may really be deleted.
type Confirmation func(loan domain.LoanRecord) bool

// LoanUseCaseConfig holds dependencies for LoanUseCase.
type LoanUseCaseConfig struct {
	Store      SnapshotStore
	IDGen      IDGenerator
	Clock      Clock
	Publisher  EventPublisher
	Observer   LedgerObserver
	Logger     zerolog.Logger
	StorageKey string
	Location   *time.Location
}

// LoanUseCase owns the loan sequence and mirrors it to the snapshot store.
// All operations are serialized; a mutation is visible only after it was persisted.
type LoanUseCase struct {
	mu    sync.Mutex
	loans []domain.LoanRecord

	store     SnapshotStore
	idGen     IDGenerator
	clock     Clock
	publisher EventPublisher
	observer  LedgerObserver
	logger    zerolog.Logger
	key       string
	location  *time.Location
}

// NewLoanUseCase creates a new LoanUseCase with an empty ledger. Call Load to
// restore the persisted snapshot.
func NewLoanUseCase(cfg LoanUseCaseConfig) *LoanUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Observer == nil {
		cfg.Observer = noopLedgerObserver{}
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &LoanUseCase{
		loans:     []domain.LoanRecord{},
		store:     cfg.Store,
		idGen:     cfg.IDGen,
		clock:     cfg.Clock,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		key:       cfg.StorageKey,
		location:  cfg.Location,
	}
}

// Load replaces the in-memory ledger with the persisted snapshot. A missing or
// unreadable snapshot yields an empty ledger; no error is returned for it.
func (uc *LoanUseCase) Load(ctx context.Context) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	loans := []domain.LoanRecord{}

	data, err := uc.store.Load(ctx, uc.key)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		uc.logger.Info().Str("key", uc.key).Msg("no ledger snapshot, starting empty")
	case err != nil:
		uc.logger.Warn().Err(err).Str("key", uc.key).Msg("failed to read ledger snapshot, starting empty")
	default:
		if err := json.Unmarshal(data, &loans); err != nil || loans == nil {
			uc.logger.Warn().Err(err).Str("key", uc.key).Msg("malformed ledger snapshot, starting empty")
			loans = []domain.LoanRecord{}
		}
	}

	var maxID int64
	for _, l := range loans {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	uc.idGen.Seed(maxID)

	uc.loans = loans
	uc.observer.ObserveLoanOperation(OperationLoad, nil)
	uc.observer.SetLoanCount(len(loans))
	uc.logger.Info().Int("loans", len(loans)).Msg("ledger loaded")
}

// List returns a copy of the ledger in insertion order.
func (uc *LoanUseCase) List(ctx context.Context) []domain.LoanRecord {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]domain.LoanRecord, len(uc.loans))
	copy(out, uc.loans)
	return out
}

// Get returns the loan with the given id.
func (uc *LoanUseCase) Get(ctx context.Context, id int64) (domain.LoanRecord, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		return domain.LoanRecord{}, domain.ErrLoanNotFound
	}
	return uc.loans[i], nil
}

// Create appends a new loan. Invalid input leaves the ledger unchanged.
func (uc *LoanUseCase) Create(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error) {
	fields, err := fields.Normalize()
	if err != nil {
		uc.observer.ObserveLoanOperation(OperationCreate, err)
		return domain.LoanRecord{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.clock.Now().In(uc.location)
	loan := domain.NewLoanRecord(uc.idGen.Generate(now), now, fields)

	next := make([]domain.LoanRecord, 0, len(uc.loans)+1)
	next = append(next, uc.loans...)
	next = append(next, loan)

	if err := uc.commit(ctx, OperationCreate, next); err != nil {
		return domain.LoanRecord{}, err
	}

	uc.publish(ctx, domain.LoanEvent{EventType: domain.EventTypeLoanCreated, LoanID: loan.ID, Loan: loan})
	return loan, nil
}

// Update replaces every editable field of an existing loan. The id and the
// creation stamp are preserved.
func (uc *LoanUseCase) Update(ctx context.Context, id int64, fields domain.LoanFields) (domain.LoanRecord, error) {
	fields, err := fields.Normalize()
	if err != nil {
		uc.observer.ObserveLoanOperation(OperationUpdate, err)
		return domain.LoanRecord{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		uc.observer.ObserveLoanOperation(OperationUpdate, domain.ErrLoanNotFound)
		return domain.LoanRecord{}, domain.ErrLoanNotFound
	}

	loan := uc.loans[i].WithFields(fields)
	next := uc.replaced(i, loan)

	if err := uc.commit(ctx, OperationUpdate, next); err != nil {
		return domain.LoanRecord{}, err
	}

	uc.publish(ctx, domain.LoanEvent{EventType: domain.EventTypeLoanUpdated, LoanID: loan.ID, Loan: loan})
	return loan, nil
}

// SetStatus changes only the status of an existing loan.
func (uc *LoanUseCase) SetStatus(ctx context.Context, id int64, status domain.LoanStatus) (domain.LoanRecord, error) {
	if !status.Valid() {
		uc.observer.ObserveLoanOperation(OperationSetStatus, domain.ErrInvalidStatus)
		return domain.LoanRecord{}, domain.ErrInvalidStatus
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		uc.observer.ObserveLoanOperation(OperationSetStatus, domain.ErrLoanNotFound)
		return domain.LoanRecord{}, domain.ErrLoanNotFound
	}

	previous := uc.loans[i].Status
	loan := uc.loans[i]
	loan.Status = status
	next := uc.replaced(i, loan)

	if err := uc.commit(ctx, OperationSetStatus, next); err != nil {
		return domain.LoanRecord{}, err
	}

	uc.publish(ctx, domain.LoanEvent{
		EventType:      domain.EventTypeLoanStatusChanged,
		LoanID:         loan.ID,
		Loan:           loan,
		PreviousStatus: previous,
	})
	return loan, nil
}

// Delete removes a loan once confirm approves it. A declined confirmation is a
// normal cancellation and returns (false, nil).
func (uc *LoanUseCase) Delete(ctx context.Context, id int64, confirm Confirmation) (bool, error) {
	loan, err := uc.Get(ctx, id)
	if err != nil {
		uc.observer.ObserveLoanOperation(OperationDelete, err)
		return false, err
	}

	// The prompt may block on a human, so it runs outside the lock.
	if confirm == nil || !confirm(loan) {
		uc.logger.Debug().Int64("loan_id", id).Msg("delete not confirmed")
		return false, nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		uc.observer.ObserveLoanOperation(OperationDelete, domain.ErrLoanNotFound)
		return false, domain.ErrLoanNotFound
	}

	next := make([]domain.LoanRecord, 0, len(uc.loans)-1)
	next = append(next, uc.loans[:i]...)
	next = append(next, uc.loans[i+1:]...)

	if err := uc.commit(ctx, OperationDelete, next); err != nil {
		return false, err
	}

	uc.publish(ctx, domain.LoanEvent{EventType: domain.EventTypeLoanDeleted, LoanID: loan.ID, Loan: loan})
	return true, nil
}

// Persist writes the current ledger to the snapshot store.
func (uc *LoanUseCase) Persist(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.save(ctx, uc.loans)
}

// StatusSummary aggregates the loans sharing one status.
type StatusSummary struct {
	Status domain.LoanStatus
	Count  int
	// Total sums the numeric amounts; non-numeric amounts are counted in Unparsed.
	Total    decimal.Decimal
	Unparsed int
}

// Summary returns per-status counts and totals in status display order.
func (uc *LoanUseCase) Summary(ctx context.Context) []StatusSummary {
	loans := uc.List(ctx)

	byStatus := make(map[domain.LoanStatus]*StatusSummary, len(domain.LoanStatuses))
	out := make([]StatusSummary, len(domain.LoanStatuses))
	for i, s := range domain.LoanStatuses {
		out[i] = StatusSummary{Status: s, Total: decimal.Zero}
		byStatus[s] = &out[i]
	}

	for _, l := range loans {
		s, ok := byStatus[l.Status]
		if !ok {
			continue
		}
		s.Count++
		if amount, ok := domain.ParseAmount(l.Amount); ok {
			s.Total = s.Total.Add(amount)
		} else {
			s.Unparsed++
		}
	}

	return out
}

func (uc *LoanUseCase) indexOf(id int64) int {
	for i, l := range uc.loans {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (uc *LoanUseCase) replaced(i int, loan domain.LoanRecord) []domain.LoanRecord {
	next := make([]domain.LoanRecord, len(uc.loans))
	copy(next, uc.loans)
	next[i] = loan
	return next
}

// commit persists next and swaps it in. Callers hold uc.mu.
func (uc *LoanUseCase) commit(ctx context.Context, operation string, next []domain.LoanRecord) error {
	if err := uc.save(ctx, next); err != nil {
		uc.observer.ObserveLoanOperation(operation, err)
		uc.logger.Error().Err(err).Str("operation", operation).Msg("failed to persist ledger")
		return err
	}

	uc.loans = next
	uc.observer.ObserveLoanOperation(operation, nil)
	uc.observer.SetLoanCount(len(next))
	return nil
}

func (uc *LoanUseCase) save(ctx context.Context, loans []domain.LoanRecord) error {
	data, err := json.Marshal(loans)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := uc.store.Save(ctx, uc.key, data); err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	return nil
}

func (uc *LoanUseCase) publish(ctx context.Context, event domain.LoanEvent) {
	if uc.publisher == nil {
		return
	}

	event.OccurredAt = uc.clock.Now().UTC()
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn().Err(err).Str("event_type", event.EventType).Int64("loan_id", event.LoanID).Msg("failed to publish ledger event")
	}
}
