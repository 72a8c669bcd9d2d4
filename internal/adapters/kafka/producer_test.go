package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer() (*Producer, map[string]*fakeWriter) {
	writers := make(map[string]*fakeWriter)
	p := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})
	p.newWriter = func(topic string) MessageWriter {
		w := &fakeWriter{}
		writers[topic] = w
		return w
	}
	return p, writers
}

func TestProducer_PublishJSON(t *testing.T) {
	p, writers := newTestProducer()

	err := p.Publish(context.Background(), "topic.a", "user-1", map[string]int{"updated": 3})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), "topic.a", "user-1", map[string]int{"updated": 4}))

	w := writers["topic.a"]
	require.NotNil(t, w)
	require.Len(t, w.messages, 2)
	assert.Equal(t, "user-1", string(w.messages[0].Key))

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &body))
	assert.Equal(t, 3, body["updated"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	p, writers := newTestProducer()
	require.NoError(t, p.Publish(context.Background(), "t", "k", 1))
	writers["t"].err = assert.AnError

	assert.ErrorIs(t, p.Publish(context.Background(), "t", "k", 1), assert.AnError)
}
