package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource identifies which mechanism produced a quote.
type PriceSource string

const (
	PriceSourceREST   PriceSource = "rest"
	PriceSourceStream PriceSource = "stream"
)

// Pair is a tracked trading pair. Symbol is the base asset in upper case.
type Pair struct {
	Symbol  string
	Ticker  string // REST pair identifier, e.g. btc_idr
	Channel string // stream channel, e.g. ticker_btcidr
}

// LowValueSymbol is displayed with two fractional digits.
const LowValueSymbol = "THB"

// DefaultPairs are the pairs tracked by the price feed.
var DefaultPairs = []Pair{
	NewPair("btc", "idr"),
	NewPair("eth", "idr"),
	NewPair("xrp", "idr"),
	NewPair("thb", "idr"),
}

// NewPair builds a pair from its base and quote assets.
func NewPair(base, quote string) Pair {
	base = strings.ToLower(base)
	quote = strings.ToLower(quote)
	return Pair{
		Symbol:  strings.ToUpper(base),
		Ticker:  base + "_" + quote,
		Channel: "ticker_" + base + quote,
	}
}

// PriceQuote is the authoritative table entry for one symbol.
type PriceQuote struct {
	Symbol        string
	LastPrice     decimal.Decimal
	ChangePercent decimal.Decimal
	// ChangeDefined is false when the reference price was zero.
	ChangeDefined bool
	Source        PriceSource
	Seq           uint64
	UpdatedAt     time.Time
}

var hundred = decimal.NewFromInt(100)

// PercentChange computes (current - reference) / reference * 100.
func PercentChange(current, reference decimal.Decimal) (decimal.Decimal, error) {
	if reference.IsZero() {
		return decimal.Zero, ErrZeroReference
	}
	return current.Sub(reference).Div(reference).Mul(hundred), nil
}

// NewQuote builds a quote for current against reference.
func NewQuote(symbol string, current, reference decimal.Decimal, source PriceSource, at time.Time) PriceQuote {
	change, err := PercentChange(current, reference)
	return PriceQuote{
		Symbol:        symbol,
		LastPrice:     current,
		ChangePercent: change,
		ChangeDefined: err == nil,
		Source:        source,
		UpdatedAt:     at,
	}
}

// Ticker is one REST snapshot for a pair.
type Ticker struct {
	Last    decimal.Decimal
	PrevDay decimal.Decimal
}

// TickerUpdate is one streamed price for a channel.
type TickerUpdate struct {
	Channel string
	Price   decimal.Decimal
}
