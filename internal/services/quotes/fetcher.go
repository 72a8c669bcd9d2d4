package quotes

import (
	"context"
	"encoding/csv"
	"io"
	"net/url"
	"os"
	"strings"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// Transport downloads a URL into a staged file owned by the caller
type Transport interface {
	Download(ctx context.Context, url string) (string, error)
}

// Column layout of a quote service row: symbol, bid, ask, last price
const (
	colSymbol = iota
	colBid
	colAsk
	colLast
	minColumns
)

// Fetcher turns a set of symbols into quotes with one batch request
type Fetcher struct {
	transport Transport
	baseURL   string
	log       *logger.Logger
}

// NewFetcher creates a fetcher requesting baseURL followed by the +-joined symbols
func NewFetcher(transport Transport, baseURL string) *Fetcher {
	return &Fetcher{
		transport: transport,
		baseURL:   baseURL,
		log:       logger.Get().With("component", "quote_fetcher"),
	}
}

// RequestURL returns the batch URL for symbols
func (f *Fetcher) RequestURL(symbols []string) string {
	return f.baseURL + strings.Join(requestSymbols(symbols), "+")
}

// requestSymbols normalizes and escapes symbols, skipping blanks and the
// unknown sentinel.
func requestSymbols(symbols []string) []string {
	parts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = quote.NormalizeSymbol(s)
		if s == "" || s == quote.Unknown {
			continue
		}
		parts = append(parts, url.QueryEscape(s))
	}
	return parts
}

// Fetch requests fresh quotes for symbols. Rows are not guaranteed to follow
// the requested order, so callers must match results by symbol.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) ([]quote.Quote, error) {
	parts := requestSymbols(symbols)
	if len(parts) == 0 {
		return []quote.Quote{}, nil
	}

	path, err := f.transport.Download(ctx, f.baseURL+strings.Join(parts, "+"))
	if path != "" {
		defer func() {
			if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
				f.log.Warnw("Failed to remove staged quote response", "path", path, "error", rerr)
			}
		}()
	}
	if err != nil {
		return nil, errors.Join(errors.ErrFetch, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(errors.ErrFetch, err)
	}
	defer file.Close()

	quotes, dropped, err := Parse(file)
	if err != nil {
		return nil, errors.Join(errors.ErrFetch, err)
	}

	if dropped > 0 {
		metrics.RowsDropped.Add(float64(dropped))
		f.log.Debugw("Dropped short quote rows", "dropped", dropped, "symbols", symbols)
	}

	return quotes, nil
}

// Parse reads a headerless quote table. Rows with fewer than four columns or
// an empty symbol are dropped and counted.
func Parse(r io.Reader) ([]quote.Quote, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	quotes := make([]quote.Quote, 0)
	dropped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dropped, errors.Wrap(err, "malformed quote table")
		}

		if len(row) < minColumns {
			dropped++
			continue
		}

		symbol := quote.NormalizeSymbol(row[colSymbol])
		if symbol == "" {
			dropped++
			continue
		}

		quotes = append(quotes, quote.Quote{
			Symbol:    symbol,
			BidPrice:  strings.TrimSpace(row[colBid]),
			AskPrice:  strings.TrimSpace(row[colAsk]),
			LastPrice: strings.TrimSpace(row[colLast]),
		})
	}

	return quotes, dropped, nil
}
