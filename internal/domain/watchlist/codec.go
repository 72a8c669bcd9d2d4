package watchlist

import (
	"strconv"
	"strings"

	"quotewatch/internal/domain/quote"
)

// Separator joins encoded quotes inside the savedQuotes field.
// Every encoded quote is followed by it, the last one included.
const Separator = "@@"

const (
	keyName         = "name"
	keySavedQuotes  = "savedQuotes"
	keyDisplayOrder = "displayOrder"
)

type record struct {
	Name         string `json:"name"`
	SavedQuotes  string `json:"savedQuotes"`
	DisplayOrder string `json:"displayOrder"`
}

// Encode renders w as a JSON object of three string fields
func Encode(w Watchlist) string {
	var b strings.Builder
	for _, q := range w.Quotes {
		b.WriteString(quote.Encode(q))
		b.WriteString(Separator)
	}

	return quote.Marshal(record{
		Name:         w.Name,
		SavedQuotes:  b.String(),
		DisplayOrder: strconv.Itoa(w.DisplayOrder),
	})
}

// Decode parses a string produced by Encode. Missing or malformed fields fall
// back to an empty name, no quotes and display order 0.
func Decode(s string) Watchlist {
	var w Watchlist

	fields, ok := quote.Fields(s)
	if !ok {
		return w
	}

	quote.StringField(fields, keyName, &w.Name)

	var saved string
	if quote.StringField(fields, keySavedQuotes, &saved) {
		quotes := make([]quote.Quote, 0)
		for _, segment := range strings.Split(saved, Separator) {
			if segment == "" {
				continue
			}
			quotes = append(quotes, quote.Decode(segment))
		}
		w.SetQuotes(quotes)
	}

	var order string
	if quote.StringField(fields, keyDisplayOrder, &order) {
		if n, err := strconv.Atoi(order); err == nil {
			w.DisplayOrder = n
		}
	}

	return w
}

// EncodeAll encodes every watchlist keyed by name
func EncodeAll(lists []Watchlist) map[string]string {
	out := make(map[string]string, len(lists))
	for _, w := range lists {
		out[w.Name] = Encode(w)
	}
	return out
}
