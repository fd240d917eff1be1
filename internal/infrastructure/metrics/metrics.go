package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/loanticker/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LoanOperations *prometheus.CounterVec
	LoansTotal     prometheus.Gauge

	// Price feed metrics
	PriceUpdates     *prometheus.CounterVec
	FetchErrors      *prometheus.CounterVec
	StreamReconnects prometheus.Counter
	StreamConnected  prometheus.Gauge

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventsDropped   prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		LoanOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanticker_loan_operations_total",
				Help: "Total ledger operations by type and result",
			},
			[]string{"operation", "result"},
		),
		LoansTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loanticker_loans",
			Help: "Current number of loan records",
		}),

		// Price feed metrics
		PriceUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanticker_price_updates_total",
				Help: "Price table updates by source, symbol and whether they were applied",
			},
			[]string{"source", "symbol", "applied"},
		),
		FetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanticker_ticker_fetch_errors_total",
				Help: "Failed REST ticker fetches by pair",
			},
			[]string{"pair"},
		),
		StreamReconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "loanticker_stream_reconnects_total",
			Help: "Total price stream reconnect attempts",
		}),
		StreamConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loanticker_stream_connected",
			Help: "1 while the price stream is subscribed",
		}),

		// Event metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanticker_events_published_total",
				Help: "Ledger events handed to the sink by result",
			},
			[]string{"result"},
		),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "loanticker_events_dropped_total",
			Help: "Ledger events dropped because the queue was full",
		}),
	}
}

// ObserveLoanOperation implements usecase.LedgerObserver.
func (m *Metrics) ObserveLoanOperation(operation string, err error) {
	m.LoanOperations.WithLabelValues(operation, result(err)).Inc()
}

// SetLoanCount implements usecase.LedgerObserver.
func (m *Metrics) SetLoanCount(n int) {
	m.LoansTotal.Set(float64(n))
}

// ObservePriceUpdate implements usecase.FeedObserver.
func (m *Metrics) ObservePriceUpdate(source domain.PriceSource, symbol string, applied bool) {
	m.PriceUpdates.WithLabelValues(string(source), symbol, strconv.FormatBool(applied)).Inc()
}

// ObserveFetchError implements usecase.FeedObserver.
func (m *Metrics) ObserveFetchError(pair string) {
	m.FetchErrors.WithLabelValues(pair).Inc()
}

// ObserveReconnect implements usecase.FeedObserver.
func (m *Metrics) ObserveReconnect() {
	m.StreamReconnects.Inc()
}

// SetStreamConnected implements usecase.FeedObserver.
func (m *Metrics) SetStreamConnected(connected bool) {
	if connected {
		m.StreamConnected.Set(1)
		return
	}
	m.StreamConnected.Set(0)
}

// ObservePublish records the outcome of one event hand-off.
func (m *Metrics) ObservePublish(err error) {
	m.EventsPublished.WithLabelValues(result(err)).Inc()
}

// ObserveDrop records an event that never reached the sink.
func (m *Metrics) ObserveDrop() {
	m.EventsDropped.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
