package watchlist

import (
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/domain/quote"
	"quotewatch/pkg/errors"
)

func names(lists []Watchlist) []string {
	out := make([]string, 0, len(lists))
	for _, w := range lists {
		out = append(out, w.Name)
	}
	return out
}

func TestStore_OrderedView(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", nil, 1))
	s.Upsert(New("B", nil, 0))

	assert.Equal(t, []string{"B", "A"}, names(s.OrderedView()))
}

func TestStore_OrderedViewStaysSorted(t *testing.T) {
	s := NewStore()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		name := "L" + strconv.Itoa(rng.Intn(20))
		if rng.Intn(3) == 0 {
			_ = s.Remove(name)
		} else {
			s.Upsert(New(name, nil, rng.Intn(10)-5))
		}

		view := s.OrderedView()
		assert.True(t, sort.SliceIsSorted(view, func(i, j int) bool {
			return view[i].DisplayOrder < view[j].DisplayOrder
		}))
	}
}

func TestStore_RenameDuplicate(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", nil, 0))
	s.Upsert(New("B", nil, 1))

	err := s.Rename("A", "B")
	assert.ErrorIs(t, err, errors.ErrDuplicateName)

	_, ok := s.Get("A")
	assert.True(t, ok, "failed rename must leave the source untouched")
}

func TestStore_RenamePreservesContent(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", []quote.Quote{quote.New("MSFT"), quote.New("AAPL")}, 7))
	require.NoError(t, s.Select("A"))

	require.NoError(t, s.Rename("A", "Renamed"))

	_, ok := s.Get("A")
	assert.False(t, ok)

	w, ok := s.Get("Renamed")
	require.True(t, ok)
	assert.Equal(t, 7, w.DisplayOrder)
	assert.Equal(t, []string{"AAPL", "MSFT"}, w.Symbols())
	assert.Equal(t, "Renamed", s.Current())
}

func TestStore_RenameToSameName(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", nil, 0))

	assert.NoError(t, s.Rename("A", "A"))
}

func TestStore_RenameMissing(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Rename("nope", "X"), errors.ErrNotFound)
}

func TestStore_Create(t *testing.T) {
	s := NewStore()

	first, err := s.Create("First")
	require.NoError(t, err)
	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, "First", s.Current())

	second, err := s.Create("Second")
	require.NoError(t, err)
	assert.Equal(t, 1, second.DisplayOrder)

	_, err = s.Create("First")
	assert.ErrorIs(t, err, errors.ErrDuplicateName)

	_, err = s.Create("  ")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestStore_RemoveMovesSelection(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", nil, 0))
	s.Upsert(New("B", nil, 1))
	require.NoError(t, s.Select("A"))

	require.NoError(t, s.Remove("A"))
	assert.Equal(t, "B", s.Current())

	require.NoError(t, s.Remove("B"))
	assert.Equal(t, "", s.Current())

	assert.ErrorIs(t, s.Remove("B"), errors.ErrNotFound)
}

func TestStore_LoadFromSelectsFirst(t *testing.T) {
	s := NewStore()
	s.Upsert(New("stale", nil, 0))

	s.LoadFrom(map[string]string{
		"A": Encode(New("A", []quote.Quote{quote.New("GOOG")}, 5)),
		"B": Encode(New("B", nil, 2)),
	})

	assert.Equal(t, []string{"B", "A"}, names(s.OrderedView()))
	assert.Equal(t, "B", s.Current())

	s.LoadFrom(map[string]string{})
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.Current())
}

func TestStore_LoadFromFallsBackToKey(t *testing.T) {
	s := NewStore()
	s.LoadFrom(map[string]string{"Keyed": "not json"})

	_, ok := s.Get("Keyed")
	assert.True(t, ok)
}

func TestStore_LoadFromKeepsCollidingNames(t *testing.T) {
	tests := []struct {
		name        string
		serialized  map[string]string
		wantNames   []string
		wantRenamed []string
	}{
		{
			name: "entry under its own name wins",
			serialized: map[string]string{
				"Same":  Encode(New("Same", nil, 0)),
				"Other": Encode(New("Same", []quote.Quote{quote.New("XOM")}, 1)),
			},
			wantNames:   []string{"Same", "Other"},
			wantRenamed: []string{"Other"},
		},
		{
			name: "neither under its own name",
			serialized: map[string]string{
				"A": Encode(New("C", nil, 0)),
				"B": Encode(New("C", nil, 1)),
			},
			wantNames:   []string{"C", "B"},
			wantRenamed: []string{"B"},
		},
		{
			name: "key already taken gets a suffix",
			serialized: map[string]string{
				"A": Encode(New("K", nil, 0)),
				"K": Encode(New("N", nil, 1)),
				"N": Encode(New("N", nil, 2)),
			},
			wantNames:   []string{"K", "K (2)", "N"},
			wantRenamed: []string{"K (2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			renamed := s.LoadFrom(tt.serialized)

			assert.Equal(t, tt.wantRenamed, renamed)
			assert.Equal(t, len(tt.serialized), s.Len())
			assert.Equal(t, tt.wantNames, names(s.OrderedView()))
			assert.Len(t, s.SerializeAll(), len(tt.serialized))
		})
	}
}

func TestStore_SerializeAllRoundTrip(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", []quote.Quote{{Symbol: "AAPL", BidPrice: "1", AskPrice: "2", LastPrice: "3"}}, 1))
	s.Upsert(New("B", nil, 0))

	restored := NewStore()
	restored.LoadFrom(s.SerializeAll())

	assert.Equal(t, s.OrderedView(), restored.OrderedView())
}

func TestStore_UpdateKeepsNameAndOrder(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", nil, 0))

	require.NoError(t, s.Update("A", func(w *Watchlist) {
		w.Name = "sneaky"
		w.Quotes = append(w.Quotes, quote.New("ZZZ"), quote.New("AAA"))
	}))

	w, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, []string{"AAA", "ZZZ"}, w.Symbols())

	assert.ErrorIs(t, s.Update("missing", func(*Watchlist) {}), errors.ErrNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Upsert(New("A", []quote.Quote{quote.New("AAPL")}, 0))

	w, _ := s.Get("A")
	w.Quotes[0].LastPrice = "999"

	again, _ := s.Get("A")
	assert.Equal(t, quote.Unknown, again.Quotes[0].LastPrice)
}
