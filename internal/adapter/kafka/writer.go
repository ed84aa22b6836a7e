package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/tree-inventory-etl/internal/config"
	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

const (
	// chunkSize bounds a single WriteMessages call.
	chunkSize      = 500
	maxAttempts    = 3
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes cleaned records to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Load serializes and publishes records, keyed by identifier so a re-run
// lands each tree on the same partition.
func (w *Writer) Load(ctx context.Context, records []domain.TreeRecord) error {
	processedAt := domain.Now().UTC()
	for start := 0; start < len(records); start += chunkSize {
		end := min(start+chunkSize, len(records))
		msgs := make([]kafkago.Message, 0, end-start)
		for i := start; i < end; i++ {
			msg, err := serializeToMessage(records[i], processedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.write(ctx, msgs); err != nil {
			return err
		}
	}
	return nil
}

// write retries transient broker failures with exponential backoff.
func (w *Writer) write(ctx context.Context, msgs []kafkago.Message) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		w.logger.Warn("kafka write failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish %d records: %w", len(msgs), err)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a TreeRecord into a Kafka message.
func serializeToMessage(record domain.TreeRecord, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize tree record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(record.Identifier)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "genus", Value: []byte(record.Genus)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
