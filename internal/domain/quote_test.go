package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		current   string
		reference string
		want      string
	}{
		{"up ten percent", "110", "100", "+10.00%"},
		{"down ten percent", "90", "100", "-10.00%"},
		{"unchanged", "100", "100", "+0.00%"},
		{"tiny drop rounds to zero", "99.9999", "100", "+0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuote("BTC", decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.reference), PriceSourceREST, time.Now())
			assert.True(t, q.ChangeDefined)
			assert.Equal(t, tt.want, FormatChange(q))
		})
	}
}

func TestPercentChange_ZeroReference(t *testing.T) {
	t.Parallel()

	_, err := PercentChange(decimal.NewFromInt(5), decimal.Zero)
	require.ErrorIs(t, err, ErrZeroReference)

	q := NewQuote("XRP", decimal.NewFromInt(5), decimal.Zero, PriceSourceStream, time.Now())
	assert.False(t, q.ChangeDefined)
	assert.Equal(t, UndefinedChange, FormatChange(q))
}

func TestNewPair(t *testing.T) {
	t.Parallel()

	p := NewPair("BTC", "IDR")
	assert.Equal(t, Pair{Symbol: "BTC", Ticker: "btc_idr", Channel: "ticker_btcidr"}, p)
	assert.Len(t, DefaultPairs, 4)
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.234.567", FormatPrice("BTC", decimal.RequireFromString("1234567.4")))
	assert.Equal(t, "512,37", FormatPrice("THB", decimal.RequireFromString("512.365")))
}
