package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/domain/watchlist"
)

func TestRenderWatchlist(t *testing.T) {
	wl := watchlist.New("Tech", []quote.Quote{
		{Symbol: "AAPL", BidPrice: "100.00", AskPrice: "100.50", LastPrice: "1234.5"},
		quote.New("GOOG"),
	}, 0)

	var buf bytes.Buffer
	renderWatchlist(&buf, wl, true)

	out := buf.String()
	assert.Contains(t, out, "* Tech")
	assert.Contains(t, out, "1,234.50")
	assert.Contains(t, out, "GOOG")
	assert.Contains(t, out, quote.Unknown)
}

func TestRenderWatchlist_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderWatchlist(&buf, watchlist.New("Empty", nil, 0), false)

	assert.Equal(t, "  Empty\n    (empty)\n", buf.String())
}
