package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/loanticker/internal/domain"
)

// ErrFeedRunning is returned by Start when the feed is already running.
var ErrFeedRunning = errors.New("price feed already running")

const (
	tickerChannelPrefix  = "ticker"
	maxConcurrentFetches = 4
)

// PriceFeedConfig holds dependencies for PriceFeed.
type PriceFeedConfig struct {
	Pairs        []domain.Pair
	Client       TickerClient
	Dialer       StreamDialer
	Table        *PriceTable
	PollInterval time.Duration
	// NewBackOff builds the reconnect policy. It must never return backoff.Stop
	// for good; a Stop is treated as the maximum delay.
	NewBackOff func() backoff.BackOff
	MaxDelay   time.Duration
	Observer   FeedObserver
	Clock      Clock
	Logger     zerolog.Logger
}

// FeedStatus reports the health of the feed.
type FeedStatus struct {
	Loading         bool
	StreamConnected bool
	LastPollAt      time.Time
	Reconnects      int
	SessionID       string
}

// PriceFeed keeps the price table fresh from periodic REST snapshots and a
// streaming subscription. It owns the poll ticker and the stream connection
// between Start and Stop.
type PriceFeed struct {
	pairs        []domain.Pair
	byChannel    map[string]domain.Pair
	client       TickerClient
	dialer       StreamDialer
	table        *PriceTable
	pollInterval time.Duration
	newBackOff   func() backoff.BackOff
	maxDelay     time.Duration
	observer     FeedObserver
	clock        Clock
	logger       zerolog.Logger

	mu     sync.Mutex
	status FeedStatus
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconnectBackOff returns an exponential policy with jitter that never gives up.
func NewReconnectBackOff(initial, maxDelay time.Duration, jitter float64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxDelay
	b.RandomizationFactor = jitter
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// NewPriceFeed creates a new PriceFeed.
func NewPriceFeed(cfg PriceFeedConfig) *PriceFeed {
	if len(cfg.Pairs) == 0 {
		cfg.Pairs = domain.DefaultPairs
	}
	if cfg.Table == nil {
		cfg.Table = NewPriceTable()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultReconnectMaxDelay
	}
	if cfg.NewBackOff == nil {
		maxDelay := cfg.MaxDelay
		cfg.NewBackOff = func() backoff.BackOff {
			return NewReconnectBackOff(DefaultReconnectDelay, maxDelay, backoff.DefaultRandomizationFactor)
		}
	}
	if cfg.Observer == nil {
		cfg.Observer = noopFeedObserver{}
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}

	byChannel := make(map[string]domain.Pair, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		byChannel[p.Channel] = p
	}

	return &PriceFeed{
		pairs:        cfg.Pairs,
		byChannel:    byChannel,
		client:       cfg.Client,
		dialer:       cfg.Dialer,
		table:        cfg.Table,
		pollInterval: cfg.PollInterval,
		newBackOff:   cfg.NewBackOff,
		maxDelay:     cfg.MaxDelay,
		observer:     cfg.Observer,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		status:       FeedStatus{Loading: true},
	}
}

// Table returns the table the feed writes to.
func (f *PriceFeed) Table() *PriceTable {
	return f.table
}

// Status returns a copy of the feed status.
func (f *PriceFeed) Status() FeedStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.status
}

// Start launches the poll loop and, when a dialer is configured, the stream loop.
func (f *PriceFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		return ErrFeedRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.pollLoop(ctx)
	}()

	if f.dialer != nil {
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.streamLoop(ctx)
		}()
	}

	f.logger.Info().
		Int("pairs", len(f.pairs)).
		Dur("poll_interval", f.pollInterval).
		Bool("stream", f.dialer != nil).
		Msg("price feed started")

	return nil
}

// Stop cancels the poll timer, closes the stream connection and waits for both loops.
func (f *PriceFeed) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	f.wg.Wait()
	f.logger.Info().Msg("price feed stopped")
}

func (f *PriceFeed) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	// Poll immediately on start
	f.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Poll(ctx)
		}
	}
}

type fetchResult struct {
	ticker domain.Ticker
	err    error
}

// Poll fetches every pair concurrently and writes the results once all have
// completed. Failed pairs keep their previous entry; the joined error lists them.
func (f *PriceFeed) Poll(ctx context.Context) error {
	seq := f.table.NextSeq()
	results := make([]fetchResult, len(f.pairs))

	// Per-pair failures go to results so one pair never cancels the others;
	// the group only bounds concurrency and joins.
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, pair := range f.pairs {
		g.Go(func() error {
			t, err := f.client.FetchTicker(ctx, pair)
			results[i] = fetchResult{ticker: t, err: err}
			return nil
		})
	}
	g.Wait()

	// Stopped mid-poll: the failures are ours, not the exchange's.
	if err := ctx.Err(); err != nil {
		return err
	}

	now := f.clock.Now()
	var errs []error
	for i, pair := range f.pairs {
		r := results[i]
		if r.err != nil {
			f.observer.ObserveFetchError(pair.Ticker)
			f.logger.Error().Err(r.err).Str("pair", pair.Ticker).Msg("failed to fetch ticker")
			errs = append(errs, fmt.Errorf("%s: %w", pair.Ticker, r.err))
			continue
		}

		q := domain.NewQuote(pair.Symbol, r.ticker.Last, r.ticker.PrevDay, domain.PriceSourceREST, now)
		q.Seq = seq
		applied := f.table.Apply(q)
		f.observer.ObservePriceUpdate(domain.PriceSourceREST, pair.Symbol, applied)
		if !applied {
			f.logger.Debug().Str("symbol", pair.Symbol).Uint64("seq", seq).Msg("discarded stale snapshot")
		}
	}

	f.mu.Lock()
	f.status.Loading = false
	f.status.LastPollAt = now
	f.mu.Unlock()

	return errors.Join(errs...)
}

func (f *PriceFeed) streamLoop(ctx context.Context) {
	b := f.newBackOff()

	for {
		err := f.runStream(ctx, b)
		if ctx.Err() != nil {
			return
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			delay = f.maxDelay
		}

		f.mu.Lock()
		f.status.Reconnects++
		f.mu.Unlock()
		f.observer.ObserveReconnect()
		f.logger.Warn().Err(err).Dur("retry_in", delay).Msg("price stream disconnected")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runStream holds one connection until it fails. The backoff is reset once the
// subscription is accepted.
func (f *PriceFeed) runStream(ctx context.Context, b backoff.BackOff) error {
	sessionID := ulid.Make().String()
	logger := f.logger.With().Str("session_id", sessionID).Logger()

	conn, err := f.dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	done := make(chan struct{})
	defer func() {
		close(done)
		_ = conn.Close()
		f.setConnected(false, "")
	}()

	// Unblock a pending read on teardown.
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	channels := make([]string, len(f.pairs))
	for i, p := range f.pairs {
		channels[i] = p.Channel
	}
	if err := conn.Subscribe(ctx, channels); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	b.Reset()
	f.setConnected(true, sessionID)
	logger.Info().Strs("channels", channels).Msg("price stream subscribed")

	for {
		upd, err := conn.ReadUpdate(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		f.HandleUpdate(upd)
	}
}

// HandleUpdate applies one streamed price to the table.
func (f *PriceFeed) HandleUpdate(upd domain.TickerUpdate) bool {
	if !strings.HasPrefix(upd.Channel, tickerChannelPrefix) {
		return false
	}

	pair, ok := f.byChannel[upd.Channel]
	if !ok {
		f.logger.Debug().Str("channel", upd.Channel).Msg("ignoring untracked channel")
		return false
	}

	seq := f.table.NextSeq()
	_, applied := f.table.ApplyPrice(pair.Symbol, upd.Price, domain.PriceSourceStream, seq, f.clock.Now())
	f.observer.ObservePriceUpdate(domain.PriceSourceStream, pair.Symbol, applied)
	return applied
}

func (f *PriceFeed) setConnected(connected bool, sessionID string) {
	f.mu.Lock()
	f.status.StreamConnected = connected
	f.status.SessionID = sessionID
	f.mu.Unlock()
	f.observer.SetStreamConnected(connected)
}
