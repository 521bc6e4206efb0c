package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	e, err := indexer.New(config.Default().Search)
	require.NoError(t, err)
	return service.New(e, nil, nil)
}

func encode(t *testing.T, event ingestion.DocumentEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestApply(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	resp, err := Apply(ctx, svc, ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 4, Text: "fluffy cat", Status: "banned", Ratings: []int{3, 5}})
	require.NoError(t, err)
	require.Equal(t, ingestion.StatusIndexed, resp.Status)
	doc, ok := svc.Document(4)
	require.True(t, ok)
	require.Equal(t, indexer.StatusBanned, doc.Status)
	require.Equal(t, 4, doc.Rating)

	_, err = Apply(ctx, svc, ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 4, Text: "again"})
	require.ErrorIs(t, err, apperrors.ErrInvalidID)

	_, err = Apply(ctx, svc, ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 5, Status: "lost"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Apply(ctx, svc, ingestion.DocumentEvent{Op: "update", ID: 4})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	resp, err = Apply(ctx, svc, ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: 4})
	require.NoError(t, err)
	require.Equal(t, ingestion.StatusRemoved, resp.Status)
	resp, err = Apply(ctx, svc, ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: 4})
	require.NoError(t, err)
	require.Equal(t, ingestion.StatusAbsent, resp.Status)
}

func TestDirect(t *testing.T) {
	svc := newService(t)
	d := NewDirect(svc)
	ctx := context.Background()

	resp, err := d.AddDocument(ctx, ingestion.DocumentEvent{ID: 1, Text: "white cat"})
	require.NoError(t, err)
	require.Equal(t, ingestion.DocumentResponse{ID: 1, Status: ingestion.StatusIndexed}, resp)
	require.Equal(t, 1, svc.DocumentCount())

	resp, err = d.RemoveDocument(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, ingestion.StatusRemoved, resp.Status)
	require.Equal(t, 0, svc.DocumentCount())
}

func TestHandleMessageSkipsBadEvents(t *testing.T) {
	svc := newService(t)
	handle := HandleMessage(svc)
	ctx := context.Background()

	require.NoError(t, handle(ctx, []byte("1"), encode(t, ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 1, Text: "cat"})))
	require.NoError(t, handle(ctx, []byte("1"), encode(t, ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 1, Text: "dog"})))
	require.NoError(t, handle(ctx, []byte("x"), []byte("{not json")))
	require.NoError(t, handle(ctx, []byte("2"), encode(t, ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 2, Text: "dog"})))

	require.Equal(t, []int{1, 2}, svc.DocumentIDs())
	doc, _ := svc.Document(1)
	require.Equal(t, "cat", doc.Text)

	require.NoError(t, handle(ctx, []byte("1"), encode(t, ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: 1})))
	require.Equal(t, []int{2}, svc.DocumentIDs())
}
