package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// UndefinedChange is shown when a percent change has no reference price.
const UndefinedChange = "n/a"

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatPrice renders a price with id-ID digit grouping. The low-value symbol
// keeps two fractional digits, every other symbol is shown as an integer.
func FormatPrice(symbol string, price decimal.Decimal) string {
	if symbol == LowValueSymbol {
		f, _ := price.Round(2).Float64()
		return idPrinter.Sprintf("%.2f", f)
	}
	return idPrinter.Sprintf("%d", price.Round(0).IntPart())
}

// FormatChange renders a percent change with an explicit sign and two decimals.
func FormatChange(q PriceQuote) string {
	if !q.ChangeDefined {
		return UndefinedChange
	}
	rounded := q.ChangePercent.Round(2)
	s := rounded.StringFixed(2)
	if !rounded.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}
