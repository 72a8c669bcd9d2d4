package watchlist

import (
	"sort"

	"quotewatch/internal/domain/quote"
)

// Watchlist is a named collection of tracked quotes.
// Quotes stays sorted ascending by symbol after every mutation made through its methods.
type Watchlist struct {
	Name         string
	Quotes       []quote.Quote
	DisplayOrder int
}

// New builds a watchlist and sorts its quotes
func New(name string, quotes []quote.Quote, displayOrder int) Watchlist {
	w := Watchlist{Name: name, DisplayOrder: displayOrder}
	w.SetQuotes(quotes)
	return w
}

// SetQuotes replaces the quote list with a sorted copy of quotes
func (w *Watchlist) SetQuotes(quotes []quote.Quote) {
	list := make([]quote.Quote, len(quotes))
	copy(list, quotes)
	sortQuotes(list)
	w.Quotes = list
}

// Add appends a record for symbol with unknown prices. It returns false when
// the symbol is already tracked.
func (w *Watchlist) Add(symbol string) bool {
	q := quote.New(symbol)
	if w.Has(q.Symbol) {
		return false
	}
	w.SetQuotes(append(w.Quotes, q))
	return true
}

// RemoveSymbol drops the record for symbol, reporting whether one existed
func (w *Watchlist) RemoveSymbol(symbol string) bool {
	symbol = quote.NormalizeSymbol(symbol)
	kept := make([]quote.Quote, 0, len(w.Quotes))
	for _, q := range w.Quotes {
		if q.Symbol != symbol {
			kept = append(kept, q)
		}
	}
	removed := len(kept) != len(w.Quotes)
	w.SetQuotes(kept)
	return removed
}

// Has reports whether symbol is tracked
func (w Watchlist) Has(symbol string) bool {
	for _, q := range w.Quotes {
		if q.Symbol == symbol {
			return true
		}
	}
	return false
}

// Symbols returns the tracked symbols in list order
func (w Watchlist) Symbols() []string {
	symbols := make([]string, 0, len(w.Quotes))
	for _, q := range w.Quotes {
		symbols = append(symbols, q.Symbol)
	}
	return symbols
}

// Merge replaces every tracked record whose symbol appears in fetched.
// Tracked symbols absent from fetched keep their record and untracked rows are
// ignored. It returns the number of records replaced.
func (w *Watchlist) Merge(fetched []quote.Quote) int {
	bySymbol := make(map[string]quote.Quote, len(fetched))
	for _, q := range fetched {
		bySymbol[quote.NormalizeSymbol(q.Symbol)] = q
	}

	updated := 0
	merged := make([]quote.Quote, len(w.Quotes))
	for i, q := range w.Quotes {
		if f, ok := bySymbol[q.Symbol]; ok {
			f.Symbol = q.Symbol
			merged[i] = f
			updated++
			continue
		}
		merged[i] = q
	}
	w.SetQuotes(merged)
	return updated
}

// Clone returns a deep copy
func (w Watchlist) Clone() Watchlist {
	return New(w.Name, w.Quotes, w.DisplayOrder)
}

func sortQuotes(quotes []quote.Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Symbol < quotes[j].Symbol
	})
}

// Ordered sorts watchlists by display order, breaking ties by name
func Ordered(lists []Watchlist) []Watchlist {
	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].DisplayOrder != lists[j].DisplayOrder {
			return lists[i].DisplayOrder < lists[j].DisplayOrder
		}
		return lists[i].Name < lists[j].Name
	})
	return lists
}
