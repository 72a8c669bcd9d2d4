package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_FieldOrder(t *testing.T) {
	q := Quote{Symbol: "AAPL", BidPrice: "100.00", AskPrice: "100.50", LastPrice: "100.25"}

	assert.Equal(t,
		`{"symbol":"AAPL","bid":"100.00","ask":"100.50","lastPrice":"100.25"}`,
		Encode(q),
	)
}

func TestDecode_RoundTrip(t *testing.T) {
	quotes := []Quote{
		New("aapl"),
		{Symbol: "GOOG", BidPrice: "1.5", AskPrice: "1.6", LastPrice: "1.55"},
		{Symbol: "BRK/B", BidPrice: "<1>", AskPrice: `"&"`, LastPrice: "@@"},
		Empty(),
	}

	for _, q := range quotes {
		t.Run(q.Symbol, func(t *testing.T) {
			assert.Equal(t, q, Decode(Encode(q)))
		})
	}
}

func TestDecode_Degrades(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Quote
	}{
		{
			name:  "not json",
			input: "garbage",
			want:  Empty(),
		},
		{
			name:  "empty object",
			input: "{}",
			want:  Empty(),
		},
		{
			name:  "missing prices",
			input: `{"symbol":"MSFT"}`,
			want:  New("MSFT"),
		},
		{
			name:  "non string field",
			input: `{"symbol":"MSFT","bid":12.5,"ask":"13","lastPrice":null}`,
			want:  Quote{Symbol: "MSFT", BidPrice: Unknown, AskPrice: "13", LastPrice: Unknown},
		},
		{
			name:  "null fields",
			input: `{"symbol":"AAPL","bid":null,"ask":null,"lastPrice":null}`,
			want:  New("AAPL"),
		},
		{
			name:  "escaped slash from legacy writer",
			input: `{"symbol":"BRK\/B","bid":"1","ask":"2","lastPrice":"3"}`,
			want:  Quote{Symbol: "BRK/B", BidPrice: "1", AskPrice: "2", LastPrice: "3"},
		},
		{
			name:  "empty symbol",
			input: `{"symbol":"","bid":"1"}`,
			want:  Quote{Symbol: Unknown, BidPrice: "1", AskPrice: Unknown, LastPrice: Unknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.input))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1,234.50", FormatPrice("1234.5"))
	assert.Equal(t, "100.25", FormatPrice("100.25"))
	assert.Equal(t, "", FormatPrice(Unknown))
	assert.Equal(t, "", FormatPrice("N/A"))
}

func TestParsePrice(t *testing.T) {
	d, ok := ParsePrice("100.25")
	assert.True(t, ok)
	assert.Equal(t, "100.25", d.String())

	_, ok = ParsePrice(Unknown)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	q := New(" msft ")
	assert.Equal(t, "MSFT", q.Symbol)
	assert.False(t, q.Fetched())
}
