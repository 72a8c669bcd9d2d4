package quotes

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// Getter reads a URL into memory
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Symbol is one symbol search match
type Symbol struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Searcher looks up tradable symbols by prefix
type Searcher struct {
	getter  Getter
	baseURL string
	log     *logger.Logger
}

// NewSearcher creates a searcher requesting baseURL followed by the query text
func NewSearcher(getter Getter, baseURL string) *Searcher {
	return &Searcher{
		getter:  getter,
		baseURL: baseURL,
		log:     logger.Get().With("component", "symbol_searcher"),
	}
}

// Search returns the matches for text. The service answers with an array of
// rows; rows with fewer than three string columns are skipped.
func (s *Searcher) Search(ctx context.Context, text string) ([]Symbol, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return []Symbol{}, nil
	}

	body, err := s.getter.Get(ctx, s.baseURL+url.PathEscape(text))
	if err != nil {
		return nil, errors.Join(errors.ErrFetch, err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Join(errors.ErrFetch, errors.Wrap(err, "search response is not an array"))
	}

	symbols := make([]Symbol, 0, len(rows))
	for _, raw := range rows {
		var cols []string
		if err := json.Unmarshal(raw, &cols); err != nil || len(cols) < 3 {
			continue
		}
		symbols = append(symbols, Symbol{Name: cols[0], Description: cols[1], Type: cols[2]})
	}

	s.log.Debugw("Symbol search", "text", text, "matches", len(symbols))
	return symbols, nil
}
