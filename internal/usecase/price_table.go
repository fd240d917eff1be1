package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanticker/internal/domain"
)

// PriceTable holds one quote per symbol. Updates carry a sequence token and an
// update only lands when its token is newer than the entry's last applied one.
type PriceTable struct {
	mu      sync.RWMutex
	seq     uint64
	entries map[string]domain.PriceQuote
	subs    map[int]chan []domain.PriceQuote
	nextSub int
}

// NewPriceTable creates an empty table.
func NewPriceTable() *PriceTable {
	return &PriceTable{
		entries: make(map[string]domain.PriceQuote),
		subs:    make(map[int]chan []domain.PriceQuote),
	}
}

// NextSeq hands out the next ordering token.
func (t *PriceTable) NextSeq() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	return t.seq
}

// Apply stores q under q.Symbol if q.Seq is newer than the current entry.
func (t *PriceTable) Apply(q domain.PriceQuote) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.entries[q.Symbol]; ok && q.Seq <= cur.Seq {
		return false
	}
	t.entries[q.Symbol] = q
	t.notifyLocked(t.snapshotLocked())
	return true
}

// ApplyPrice stores price for symbol with the change computed against the
// entry's current price. Symbols without an entry have no reference and are
// left untouched.
func (t *PriceTable) ApplyPrice(symbol string, price decimal.Decimal, source domain.PriceSource, seq uint64, at time.Time) (domain.PriceQuote, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.entries[symbol]
	if !ok || seq <= cur.Seq {
		return domain.PriceQuote{}, false
	}

	q := domain.NewQuote(symbol, price, cur.LastPrice, source, at)
	q.Seq = seq
	t.entries[symbol] = q
	t.notifyLocked(t.snapshotLocked())
	return q, true
}

// Get returns the entry for symbol.
func (t *PriceTable) Get(symbol string) (domain.PriceQuote, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q, ok := t.entries[symbol]
	return q, ok
}

// Snapshot returns all entries ordered by symbol.
func (t *PriceTable) Snapshot() []domain.PriceQuote {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every applied update.
// Slow readers miss intermediate snapshots. Call cancel to release the channel.
func (t *PriceTable) Subscribe() (<-chan []domain.PriceQuote, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan []domain.PriceQuote, 1)
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (t *PriceTable) snapshotLocked() []domain.PriceQuote {
	out := make([]domain.PriceQuote, 0, len(t.entries))
	for _, q := range t.entries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (t *PriceTable) notifyLocked(snapshot []domain.PriceQuote) {
	for _, ch := range t.subs {
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
