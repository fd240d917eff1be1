package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/usecase"
)

// MockSnapshotStore is a mock implementation of SnapshotStore.
type MockSnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	LoadFunc func(ctx context.Context, key string) ([]byte, error)
	SaveFunc func(ctx context.Context, key string, data []byte) error
	PingFunc func(ctx context.Context) error

	Saves int
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		data: make(map[string][]byte),
	}
}

func (m *MockSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.data[key]; ok {
		return data, nil
	}
	return nil, domain.ErrSnapshotNotFound
}

func (m *MockSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, key, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MockSnapshotStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Raw returns the stored bytes for key.
func (m *MockSnapshotStore) Raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key]
}

// Put seeds key with data.
func (m *MockSnapshotStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

// MockIDGenerator is a mock implementation of IDGenerator. By default it
// returns 1, 2, 3... above the seeded maximum.
type MockIDGenerator struct {
	GenerateFunc func(now time.Time) int64
	last         int64
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate(now time.Time) int64 {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last++
	return m.last
}

func (m *MockIDGenerator) Seed(maxID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if maxID > m.last {
		m.last = maxID
	}
}

// MockClock is a settable clock.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []domain.LoanEvent

	PublishFunc func(ctx context.Context, event domain.LoanEvent) error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.LoanEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) Events() []domain.LoanEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LoanEvent(nil), m.events...)
}

// MockTickerClient is a mock implementation of TickerClient.
type MockTickerClient struct {
	mu      sync.Mutex
	tickers map[string]domain.Ticker
	errs    map[string]error

	FetchTickerFunc func(ctx context.Context, pair domain.Pair) (domain.Ticker, error)
}

func NewMockTickerClient() *MockTickerClient {
	return &MockTickerClient{
		tickers: make(map[string]domain.Ticker),
		errs:    make(map[string]error),
	}
}

func (m *MockTickerClient) SetTicker(pair string, t domain.Ticker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickers[pair] = t
	delete(m.errs, pair)
}

func (m *MockTickerClient) SetError(pair string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[pair] = err
}

func (m *MockTickerClient) FetchTicker(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	if m.FetchTickerFunc != nil {
		return m.FetchTickerFunc(ctx, pair)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[pair.Ticker]; ok {
		return domain.Ticker{}, err
	}
	t, ok := m.tickers[pair.Ticker]
	if !ok {
		return domain.Ticker{}, errors.New("no ticker for " + pair.Ticker)
	}
	return t, nil
}

// MockStreamDialer is a mock implementation of StreamDialer.
type MockStreamDialer struct {
	mu    sync.Mutex
	dials int

	DialFunc func(ctx context.Context, attempt int) (usecase.StreamConn, error)
}

func (m *MockStreamDialer) Dial(ctx context.Context) (usecase.StreamConn, error) {
	m.mu.Lock()
	m.dials++
	attempt := m.dials
	m.mu.Unlock()
	return m.DialFunc(ctx, attempt)
}

// Dials returns how many times Dial was called.
func (m *MockStreamDialer) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

// MockStreamConn replays updates from a channel. Closing Updates makes
// ReadUpdate fail as if the server hung up.
type MockStreamConn struct {
	Updates chan domain.TickerUpdate

	SubscribeFunc func(ctx context.Context, channels []string) error

	mu         sync.Mutex
	subscribed []string
	closed     chan struct{}
	closeOnce  sync.Once
}

func NewMockStreamConn() *MockStreamConn {
	return &MockStreamConn{
		Updates: make(chan domain.TickerUpdate, 16),
		closed:  make(chan struct{}),
	}
}

func (m *MockStreamConn) Subscribe(ctx context.Context, channels []string) error {
	m.mu.Lock()
	m.subscribed = append([]string(nil), channels...)
	m.mu.Unlock()
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, channels)
	}
	return nil
}

func (m *MockStreamConn) Subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed
}

func (m *MockStreamConn) ReadUpdate(ctx context.Context) (domain.TickerUpdate, error) {
	select {
	case upd, ok := <-m.Updates:
		if !ok {
			return domain.TickerUpdate{}, errors.New("connection closed by peer")
		}
		return upd, nil
	case <-m.closed:
		return domain.TickerUpdate{}, errors.New("use of closed connection")
	}
}

func (m *MockStreamConn) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

// Closed reports whether Close was called.
func (m *MockStreamConn) Closed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}
