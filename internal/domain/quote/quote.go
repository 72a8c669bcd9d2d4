package quote

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Unknown marks a price (or symbol) that has not been fetched yet
const Unknown = "--"

// Quote is the last known bid/ask/last snapshot for one ticker symbol.
// Prices are kept as the service returned them; only display code parses them.
type Quote struct {
	Symbol    string
	BidPrice  string
	AskPrice  string
	LastPrice string
}

// New returns a quote for symbol with every price unknown
func New(symbol string) Quote {
	return Quote{
		Symbol:    NormalizeSymbol(symbol),
		BidPrice:  Unknown,
		AskPrice:  Unknown,
		LastPrice: Unknown,
	}
}

// Empty returns a quote where every field, symbol included, is unknown
func Empty() Quote {
	return Quote{
		Symbol:    Unknown,
		BidPrice:  Unknown,
		AskPrice:  Unknown,
		LastPrice: Unknown,
	}
}

// NormalizeSymbol trims and uppercases a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Fetched reports whether the last price has been resolved
func (q Quote) Fetched() bool {
	return q.LastPrice != Unknown
}

// FormatPrice renders a price string as a comma grouped, two decimal value.
// Anything that does not parse as a number, including Unknown, yields "".
func FormatPrice(price string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return ""
	}
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// ParsePrice returns the numeric value of a price string, false when unknown or malformed
func ParsePrice(price string) (decimal.Decimal, bool) {
	if price == Unknown {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
