package quote

import (
	"bytes"
	"encoding/json"
)

// Persisted field keys. They are part of the stored format and must not change.
const (
	keySymbol    = "symbol"
	keyBid       = "bid"
	keyAsk       = "ask"
	keyLastPrice = "lastPrice"
)

type record struct {
	Symbol    string `json:"symbol"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	LastPrice string `json:"lastPrice"`
}

// Encode renders q as a JSON object with four string fields
func Encode(q Quote) string {
	return Marshal(record{
		Symbol:    q.Symbol,
		Bid:       q.BidPrice,
		Ask:       q.AskPrice,
		LastPrice: q.LastPrice,
	})
}

// Decode parses a string produced by Encode. It never fails: a field that is
// missing or not a JSON string keeps its Unknown default.
func Decode(s string) Quote {
	q := Empty()

	fields, ok := Fields(s)
	if !ok {
		return q
	}

	StringField(fields, keySymbol, &q.Symbol)
	StringField(fields, keyBid, &q.BidPrice)
	StringField(fields, keyAsk, &q.AskPrice)
	StringField(fields, keyLastPrice, &q.LastPrice)

	if q.Symbol == "" {
		q.Symbol = Unknown
	}
	return q
}

// Fields splits a JSON object into its raw members
func Fields(s string) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// StringField copies fields[key] into dst when it holds a JSON string.
// null counts as absent.
func StringField(fields map[string]json.RawMessage, key string, dst *string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return false
	}
	*dst = *v
	return true
}

// Marshal encodes v without HTML escaping and without the trailing newline
func Marshal(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
