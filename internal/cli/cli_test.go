package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/events"
)

func TestCommands_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Commands {
		assert.NotEmpty(t, c.Synopsis(), c.Name())
		assert.NotEmpty(t, c.Usage(), c.Name())
		assert.False(t, seen[c.Name()], "duplicate command %s", c.Name())
		seen[c.Name()] = true
	}
	assert.True(t, seen["serve"])
	assert.True(t, seen["refresh"])
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })

	event := events.WatchlistsRefreshed{
		ID:         uuid.New(),
		UserID:     "u-1",
		Watchlists: 2,
		Updated:    5,
		DurationMS: 120,
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, printEvent(context.Background(), kafkago.Message{Value: value}))
	assert.Equal(t, "2024-03-01T12:00:00Z user=u-1 watchlists=2 updated=5 failed=0 took=120ms\n", buf.String())
}

func TestPrintEvent_Malformed(t *testing.T) {
	err := printEvent(context.Background(), kafkago.Message{Value: []byte("{")})
	assert.Error(t, err)
}
