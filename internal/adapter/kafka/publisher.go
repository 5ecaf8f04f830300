// Package kafka publishes served predictions to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Publisher produces prediction events to the configured topic.
// It implements predictor.Publisher.
//
// Writes are asynchronous so a slow or unreachable broker never delays a
// prediction response; delivery outcomes are counted in the completion hook.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the prediction topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	p := &Publisher{logger: logger, metrics: metrics}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaPredictionTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

// Publish enqueues one event. It only fails if the event cannot be encoded.
func (p *Publisher) Publish(ctx context.Context, event domain.PredictionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and releases the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) completed(messages []kafkago.Message, err error) {
	if err != nil {
		p.metrics.PublishErrors.Add(float64(len(messages)))
		p.logger.Warn("prediction events not delivered", "count", len(messages), "error", err)
		return
	}
	p.metrics.EventsPublished.Add(float64(len(messages)))
}

// serializeToMessage marshals a PredictionEvent into a Kafka message keyed by
// ward so one ward's predictions stay ordered on a single partition.
func serializeToMessage(event domain.PredictionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Request.WardName),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "trend", Value: []byte(event.Prediction.Trend)},
			{Key: "predicted_at", Value: []byte(event.PredictedAt.Format(time.RFC3339))},
		},
	}, nil
}
