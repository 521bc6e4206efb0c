package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

// Event is one message to publish. Key selects the partition; Value is
// encoded as JSON.
type Event struct {
	Key   string
	Value any
}

// Message encodes e for the writer.
func (e Event) Message() (kafka.Message, error) {
	value, err := json.Marshal(e.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling event %q: %w", e.Key, err)
	}
	return kafka.Message{Key: []byte(e.Key), Value: value}, nil
}

type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewProducer writes to topic. Document mutations must be acknowledged by
// every in-sync replica before the write is reported as queued, so the
// documents topic uses synchronous writes. Request events tolerate loss and
// are written asynchronously when async is set.
func NewProducer(cfg config.KafkaConfig, topic string, async bool) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
		Async:        async,
	}
	logger := slog.Default().With("component", "kafka-producer", "topic", topic)
	if async {
		w.RequiredAcks = kafka.RequireOne
		w.Completion = func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("async publish failed", "count", len(messages), "error", err)
			}
		}
	}
	return &Producer{writer: w, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	msg, err := event.Message()
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish message", "key", event.Key, "error", err)
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	p.logger.Debug("message published", "key", event.Key, "value_size", len(msg.Value))
	return nil
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	return p.writer.Close()
}
