//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/gbm"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/predictor"
	"github.com/couchcryptid/flood-risk-service/internal/synth"
)

const testTopic = "test-flood-predictions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		tckafka.WithClusterID("flood-risk-test"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type publishedMessage struct {
	Event   domain.PredictionEvent
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read prediction topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal prediction event")

	return publishedMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

// TestPredictionEventsReachKafka serves predictions through a real model and
// publisher and reads the resulting events back off the topic.
func TestPredictionEventsReachKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	x, y := synth.Design(synth.New(11).Generate(1000))
	params := gbm.DefaultParams()
	params.NEstimators = 30
	model, err := gbm.Fit(ctx, domain.FeatureNames(), x, y, params, discardLogger())
	require.NoError(t, err)

	cfg := &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaPredictionTopic: testTopic,
	}
	metrics := observability.NewMetricsForTesting()
	publisher := kafka.NewPublisher(cfg, discardLogger(), metrics)

	svc, err := predictor.New(model, nil, publisher, discardLogger(), metrics)
	require.NoError(t, err)

	requests := []domain.PredictionRequest{
		{WardName: "ITO", Conditions: domain.Conditions{Month: 8, Temperature: 30, Humidity: 70, Pressure: 1008, CloudCover: 80, Elevation: 205, Siltation: 70, DrainageCapacity: 20}},
		{WardName: "Dwarka", Conditions: domain.Conditions{Month: 1, Temperature: 14, Humidity: 40, Pressure: 1016, CloudCover: 3, Elevation: 230, Siltation: 10, DrainageCapacity: 92}},
	}
	served := make(map[string]domain.Prediction, len(requests))
	for _, req := range requests {
		pred, err := svc.Predict(ctx, req)
		require.NoError(t, err)
		served[req.WardName] = pred
	}

	// Close flushes the async batch.
	require.NoError(t, publisher.Close())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for range requests {
		pm := readPublished(ctx, t, consumer)

		want, ok := served[pm.Key]
		require.True(t, ok, "unexpected key %q", pm.Key)
		assert.Equal(t, want, pm.Event.Prediction)
		assert.Equal(t, pm.Key, pm.Event.Request.WardName)
		assert.Equal(t, model.Version(), pm.Event.ModelVersion)
		assert.Equal(t, predictor.SourceRequest, pm.Event.Source)

		assert.Equal(t, string(want.Trend), pm.Headers["trend"])
		_, err := time.Parse(time.RFC3339, pm.Headers["predicted_at"])
		assert.NoError(t, err, "predicted_at should be valid RFC3339")
	}

	assert.InDelta(t, float64(len(requests)), testutil.ToFloat64(metrics.EventsPublished), 0)
}
