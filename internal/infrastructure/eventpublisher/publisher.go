package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/loanticker/internal/domain"
)

// ErrQueueFull is returned by Publish when the pending queue has no room.
var ErrQueueFull = errors.New("event queue is full")

// EventPublisher queues ledger events and hands them to a Sink from a
// background worker so ledger mutations never wait on the sink.
type EventPublisher struct {
	queue     chan domain.LoanEvent
	sink      Sink
	observer  Observer
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
}

// Sink delivers events to an external system.
type Sink interface {
	Publish(ctx context.Context, event domain.LoanEvent) error
}

// Observer receives delivery instrumentation.
type Observer interface {
	ObservePublish(err error)
	ObserveDrop()
}

// Config for EventPublisher.
type Config struct {
	Sink      Sink
	Observer  Observer
	Logger    zerolog.Logger
	QueueSize int           // Pending events kept before Publish starts refusing
	BatchSize int           // Number of events drained per tick
	Interval  time.Duration // Drain interval
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1024
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}

	return &EventPublisher{
		queue:     make(chan domain.LoanEvent, cfg.QueueSize),
		sink:      cfg.Sink,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Publish enqueues event without blocking.
func (ep *EventPublisher) Publish(_ context.Context, event domain.LoanEvent) error {
	select {
	case ep.queue <- event:
		return nil
	default:
		ep.observer.ObserveDrop()
		return ErrQueueFull
	}
}

// Pending returns the number of queued events.
func (ep *EventPublisher) Pending() int {
	return len(ep.queue)
}

// Start begins the event publishing worker.
// It runs until the context is cancelled, then flushes what is queued.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			ep.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			ep.processEvents(ctx)
		}
	}
}

// processEvents publishes at most one batch of queued events.
func (ep *EventPublisher) processEvents(ctx context.Context) int {
	n := 0
	for n < ep.batchSize {
		select {
		case event := <-ep.queue:
			ep.publishEvent(ctx, event)
			n++
		default:
			return n
		}
	}
	return n
}

func (ep *EventPublisher) flush(ctx context.Context) {
	for ep.processEvents(ctx) > 0 {
	}
}

// publishEvent publishes a single event. Failures are logged and dropped.
func (ep *EventPublisher) publishEvent(ctx context.Context, event domain.LoanEvent) {
	err := ep.sink.Publish(ctx, event)
	ep.observer.ObservePublish(err)
	if err != nil {
		ep.logger.Error().Err(err).
			Str("event_type", event.EventType).
			Int64("loan_id", event.LoanID).
			Msg("failed to publish event")
		return
	}

	ep.logger.Debug().
		Str("event_type", event.EventType).
		Int64("loan_id", event.LoanID).
		Msg("event published")
}

type noopObserver struct{}

func (noopObserver) ObservePublish(error) {}
func (noopObserver) ObserveDrop()         {}

// LogPublisher is a simple sink that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event domain.LoanEvent) error {
	payload, err := json.Marshal(event.Loan)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_type", event.EventType).
		Int64("loan_id", event.LoanID).
		Str("previous_status", string(event.PreviousStatus)).
		RawJSON("loan", payload).
		Msg("EVENT PUBLISHED")

	return nil
}
