package clickhouse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (c *collector) flush(_ context.Context, batch []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.batches = append(c.batches, batch)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestBatchWriter_FlushOnMaxSize(t *testing.T) {
	c := &collector{}
	bw := NewBatchWriter(BatchWriterConfig[string]{
		FlushFunc:    c.flush,
		TableName:    "test_table",
		MaxBatchSize: 3,
		MaxAge:       10 * time.Second,
	})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, "a", "b"))
	assert.Equal(t, 0, c.count())

	require.NoError(t, bw.Add(ctx, "c"))
	require.Equal(t, 1, c.count())
	assert.Equal(t, []string{"a", "b", "c"}, c.batches[0])
	assert.Equal(t, 0, bw.BufferSize())
}

func TestBatchWriter_FlushOnTimer(t *testing.T) {
	c := &collector{}
	bw := NewBatchWriter(BatchWriterConfig[string]{
		FlushFunc:    c.flush,
		TableName:    "test_table",
		MaxBatchSize: 100,
		MaxAge:       50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, "a", "b"))

	assert.Eventually(t, func() bool { return c.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))
}

func TestBatchWriter_StopFlushesRemaining(t *testing.T) {
	c := &collector{}
	bw := NewBatchWriter(BatchWriterConfig[string]{
		FlushFunc:    c.flush,
		TableName:    "test_table",
		MaxBatchSize: 100,
		MaxAge:       10 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, "a"))
	require.NoError(t, bw.Stop(context.Background()))

	require.Equal(t, 1, c.count())
	assert.Equal(t, []string{"a"}, c.batches[0])
	assert.False(t, bw.Stats().Running)
}

func TestBatchWriter_FailedFlushCountsDropped(t *testing.T) {
	c := &collector{err: assert.AnError}
	bw := NewBatchWriter(BatchWriterConfig[string]{
		FlushFunc:    c.flush,
		TableName:    "test_table",
		MaxBatchSize: 2,
	})

	err := bw.Add(context.Background(), "a", "b")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, bw.Stats().Dropped)
	assert.Equal(t, 0, bw.BufferSize())
}
