// Package publisher queues document mutations on the documents topic. The
// indexer consumer applies them in order, keeping a single writer per index.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Publisher struct {
	producer EventPublisher
	logger   *slog.Logger
}

func New(producer EventPublisher) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// AddDocument publishes an add event. The document is searchable once the
// consumer has applied it.
func (p *Publisher) AddDocument(ctx context.Context, event ingestion.DocumentEvent) (ingestion.DocumentResponse, error) {
	event.Op = ingestion.OpAdd
	if err := p.publish(ctx, event); err != nil {
		return ingestion.DocumentResponse{}, err
	}
	return ingestion.DocumentResponse{ID: event.ID, Status: ingestion.StatusQueued}, nil
}

func (p *Publisher) RemoveDocument(ctx context.Context, id int) (ingestion.DocumentResponse, error) {
	if err := p.publish(ctx, ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: id}); err != nil {
		return ingestion.DocumentResponse{}, err
	}
	return ingestion.DocumentResponse{ID: id, Status: ingestion.StatusQueued}, nil
}

func (p *Publisher) publish(ctx context.Context, event ingestion.DocumentEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	// Keyed by id so every event for one document lands on one partition.
	err := p.producer.Publish(ctx, kafka.Event{
		Key:   strconv.Itoa(event.ID),
		Value: event,
	})
	if err != nil {
		return fmt.Errorf("publishing %s event for document %d: %w", event.Op, event.ID, err)
	}
	p.logger.Debug("document event published", "op", event.Op, "doc_id", event.ID)
	return nil
}
