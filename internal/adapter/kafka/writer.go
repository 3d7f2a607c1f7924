// Package kafka streams persisted forest observations to the configured
// topic. Publishing is best effort: the request path never waits on a retry.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kamalsai369/EcoMind/internal/domain"
)

// Writer produces observation records to a Kafka topic.
// It implements forest.ObservationPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the observation topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one observation and writes it to the topic. Messages are
// keyed by location id so a location's history lands in one partition, in
// order.
func (w *Writer) Publish(ctx context.Context, rec domain.Record) error {
	msg, err := serializeRecord(rec)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeRecord marshals an observation into a Kafka message.
func serializeRecord(rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.LocationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_id", Value: []byte(rec.ID)},
			{Key: "location", Value: []byte(rec.Location)},
			{Key: "captured_at", Value: []byte(rec.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
