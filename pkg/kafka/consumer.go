// Package kafka wraps segmentio/kafka-go for the two streams the search
// server uses: the documents log that feeds the index and the request event
// stream produced by the tracker. Payloads are JSON.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// MessageHandler is invoked once per fetched message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer replays one topic to a MessageHandler. It reads every partition
// from its first retained offset without a consumer group and commits
// nothing, so each process start sees the whole log. Messages of one
// partition are handled in order; partitions are read concurrently.
type Consumer struct {
	readers []*kafka.Reader
	handler MessageHandler
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// NewConsumer looks up the partitions of topic and opens one reader per
// partition. The topic must already exist.
func NewConsumer(ctx context.Context, cfg config.KafkaConfig, topic string, handler MessageHandler) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("consuming %s: no brokers configured", topic)
	}
	var partitions []kafka.Partition
	err := resilience.Retry(ctx, "lookup partitions", resilience.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
	}, func(ctx context.Context) error {
		var err error
		partitions, err = kafka.LookupPartitions(ctx, "tcp", cfg.Brokers[0], topic)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("looking up partitions of %s: %w", topic, err)
	}
	ids := make([]int, 0, len(partitions))
	for _, p := range partitions {
		ids = append(ids, p.ID)
	}
	slices.Sort(ids)
	return newConsumer(ReaderConfigs(cfg, topic, ids), handler), nil
}

// ReaderConfigs returns one group-less reader config per partition.
func ReaderConfigs(cfg config.KafkaConfig, topic string, partitions []int) []kafka.ReaderConfig {
	configs := make([]kafka.ReaderConfig, 0, len(partitions))
	for _, partition := range partitions {
		configs = append(configs, kafka.ReaderConfig{
			Brokers:   cfg.Brokers,
			Topic:     topic,
			Partition: partition,
			MinBytes:  1,
			MaxBytes:  10e6,
		})
	}
	return configs
}

func newConsumer(configs []kafka.ReaderConfig, handler MessageHandler) *Consumer {
	c := &Consumer{
		handler: handler,
		retry:   resilience.RetryConfig{MaxAttempts: 3},
	}
	for _, rc := range configs {
		c.readers = append(c.readers, kafka.NewReader(rc))
	}
	topic := ""
	if len(configs) > 0 {
		topic = configs[0].Topic
	}
	c.logger = slog.Default().With("component", "kafka-consumer", "topic", topic)
	return c
}

// Start runs one read loop per partition until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", "partitions", len(c.readers))
	defer c.logger.Info("consumer stopped")
	var wg sync.WaitGroup
	for _, r := range c.readers {
		wg.Go(func() { c.consume(ctx, r) })
	}
	wg.Wait()
	return nil
}

// consume reads r from the first offset. A message whose handler keeps
// failing is logged and skipped so one bad record cannot stall the
// partition.
func (c *Consumer) consume(ctx context.Context, r *kafka.Reader) {
	if err := r.SetOffset(kafka.FirstOffset); err != nil {
		c.logger.Error("failed to rewind partition", "partition", r.Config().Partition, "error", err)
		return
	}
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			c.logger.Error("failed to fetch message", "partition", r.Config().Partition, "error", err)
			continue
		}
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		err = resilience.Retry(ctx, "handle message", c.retry, func(ctx context.Context) error {
			return c.handler(ctx, msg.Key, msg.Value)
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("giving up on message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) Close() error {
	var errs []error
	for _, r := range c.readers {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
