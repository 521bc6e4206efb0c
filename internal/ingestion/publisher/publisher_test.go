package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

type fakeProducer struct {
	events []kafka.Event
	err    error
}

func (f *fakeProducer) Publish(_ context.Context, event kafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func TestPublishAddAndRemove(t *testing.T) {
	producer := &fakeProducer{}
	p := New(producer)
	ctx := context.Background()

	resp, err := p.AddDocument(ctx, ingestion.DocumentEvent{ID: 7, Text: "fluffy cat", Status: "ACTUAL"})
	require.NoError(t, err)
	require.Equal(t, ingestion.DocumentResponse{ID: 7, Status: ingestion.StatusQueued}, resp)

	_, err = p.RemoveDocument(ctx, 7)
	require.NoError(t, err)

	require.Len(t, producer.events, 2)
	require.Equal(t, "7", producer.events[0].Key)
	added := producer.events[0].Value.(ingestion.DocumentEvent)
	require.Equal(t, ingestion.OpAdd, added.Op)
	require.Equal(t, "fluffy cat", added.Text)
	require.False(t, added.Timestamp.IsZero())
	removed := producer.events[1].Value.(ingestion.DocumentEvent)
	require.Equal(t, ingestion.OpRemove, removed.Op)
}

func TestPublishError(t *testing.T) {
	broker := errors.New("broker down")
	p := New(&fakeProducer{err: broker})
	_, err := p.AddDocument(context.Background(), ingestion.DocumentEvent{ID: 1})
	require.ErrorIs(t, err, broker)
}
