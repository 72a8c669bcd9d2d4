package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tick is one observed quote kept in the history store
type Tick struct {
	PassID     uuid.UUID       `ch:"pass_id"`
	UserID     string          `ch:"user_id"`
	Watchlist  string          `ch:"watchlist"`
	Symbol     string          `ch:"symbol"`
	Bid        decimal.Decimal `ch:"bid"`
	Ask        decimal.Decimal `ch:"ask"`
	Last       decimal.Decimal `ch:"last"`
	ObservedAt time.Time       `ch:"observed_at"`
}

// NewTick converts a fetched quote. It returns false when the last price is
// not a number; unknown bid or ask are stored as zero.
func NewTick(q Quote, observedAt time.Time) (Tick, bool) {
	last, ok := ParsePrice(q.LastPrice)
	if !ok {
		return Tick{}, false
	}
	bid, _ := ParsePrice(q.BidPrice)
	ask, _ := ParsePrice(q.AskPrice)

	return Tick{
		Symbol:     NormalizeSymbol(q.Symbol),
		Bid:        bid,
		Ask:        ask,
		Last:       last,
		ObservedAt: observedAt,
	}, true
}

// HistoryRepository stores quote ticks
type HistoryRepository interface {
	InsertTicks(ctx context.Context, ticks []Tick) error
	LatestTicks(ctx context.Context, userID, symbol string, limit int) ([]Tick, error)
}
