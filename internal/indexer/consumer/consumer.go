// Package consumer applies document events to the index, either straight
// from HTTP requests or from the documents Kafka topic.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// Indexer is the mutation side of service.Service.
type Indexer interface {
	AddDocument(ctx context.Context, id int, text string, status indexer.Status, ratings []int) error
	RemoveDocument(ctx context.Context, id int) bool
}

// Apply performs event against idx.
func Apply(ctx context.Context, idx Indexer, event ingestion.DocumentEvent) (ingestion.DocumentResponse, error) {
	switch event.Op {
	case ingestion.OpAdd:
		status := indexer.StatusActual
		if event.Status != "" {
			parsed, err := indexer.ParseStatus(event.Status)
			if err != nil {
				return ingestion.DocumentResponse{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
					"document %d: %v", event.ID, err)
			}
			status = parsed
		}
		if err := idx.AddDocument(ctx, event.ID, event.Text, status, event.Ratings); err != nil {
			return ingestion.DocumentResponse{}, fmt.Errorf("adding document %d: %w", event.ID, err)
		}
		return ingestion.DocumentResponse{ID: event.ID, Status: ingestion.StatusIndexed}, nil
	case ingestion.OpRemove:
		if !idx.RemoveDocument(ctx, event.ID) {
			return ingestion.DocumentResponse{ID: event.ID, Status: ingestion.StatusAbsent}, nil
		}
		return ingestion.DocumentResponse{ID: event.ID, Status: ingestion.StatusRemoved}, nil
	default:
		return ingestion.DocumentResponse{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"unknown document op %q", event.Op)
	}
}

// Direct applies mutations synchronously. It is used when no broker is
// configured.
type Direct struct {
	idx Indexer
}

func NewDirect(idx Indexer) *Direct {
	return &Direct{idx: idx}
}

func (d *Direct) AddDocument(ctx context.Context, event ingestion.DocumentEvent) (ingestion.DocumentResponse, error) {
	event.Op = ingestion.OpAdd
	return Apply(ctx, d.idx, event)
}

func (d *Direct) RemoveDocument(ctx context.Context, id int) (ingestion.DocumentResponse, error) {
	return Apply(ctx, d.idx, ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: id})
}

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that applies document events
// to idx. Undecodable payloads and rejected documents are logged and
// skipped: retrying them can never succeed.
func HandleMessage(idx Indexer) kafka.MessageHandler {
	log := logger.WithComponent("index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			log.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		resp, err := Apply(ctx, idx, event)
		if err != nil {
			log.Warn("document event rejected",
				"op", event.Op,
				"doc_id", event.ID,
				"error", err,
			)
			return nil
		}
		log.Debug("document event applied",
			"op", event.Op,
			"doc_id", resp.ID,
			"result", resp.Status,
		)
		return nil
	}
}
