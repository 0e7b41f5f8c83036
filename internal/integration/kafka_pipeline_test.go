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

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/station-digest-service/internal/adapter/kafka"
	"github.com/couchcryptid/station-digest-service/internal/config"
	"github.com/couchcryptid/station-digest-service/internal/domain"
	"github.com/couchcryptid/station-digest-service/internal/observability"
	"github.com/couchcryptid/station-digest-service/internal/pipeline"
)

const testTopic = "test-digests"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker for the duration of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("station-digest-test"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// publishedDigest holds a deserialized message read from the digest topic.
type publishedDigest struct {
	Digest  domain.Digest
	Key     string
	Headers map[string]string
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// readDigest reads a single message from the consumer and deserializes it.
func readDigest(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedDigest {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from digest topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var d domain.Digest
	require.NoError(t, json.Unmarshal(msg.Value, &d), "unmarshal digest")

	return publishedDigest{Digest: d, Key: string(msg.Key), Headers: headers}
}

// TestWriterPublish verifies that kafka.Writer round-trips a digest.
func TestWriterPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	generated := time.Date(2024, 10, 18, 15, 0, 0, 0, time.UTC)
	d := domain.NewDigest(domain.DigestInput{
		StationID:   "IMONCT42",
		GeneratedAt: generated,
		Reading: &domain.Reading{
			ObservedAt:   generated.Add(-time.Minute),
			TemperatureF: 68,
			Humidity:     55,
		},
	})
	require.NoError(t, writer.Publish(ctx, d))

	got := readDigest(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "IMONCT42", got.Key)
	assert.Equal(t, "IMONCT42", got.Headers["station_id"])
	assert.Equal(t, "2024-10-18T15:00:00Z", got.Headers["generated_at"])
	require.NotNil(t, got.Digest.Conditions)
	assert.Equal(t, 20.0, *got.Digest.Conditions.Temperature)
}

type staticReading struct{ r domain.Reading }

func (s staticReading) Reading(_ context.Context) (domain.Reading, error) { return s.r, nil }

type staticWarnings struct {
	region  string
	entries []domain.WarningEntry
}

func (s staticWarnings) Region() string { return s.region }

func (s staticWarnings) Warnings(_ context.Context) ([]domain.WarningEntry, error) {
	return s.entries, nil
}

// TestPipelineEndToEnd runs the refresh pipeline against real Kafka and
// checks that every applied refresh produces a digest on the topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	sources := pipeline.Sources{
		Reading: staticReading{r: domain.Reading{
			ObservedAt:   time.Now().UTC(),
			TemperatureF: 50,
			Humidity:     80,
			WindSpeedMPH: 12,
		}},
		Warnings: []pipeline.WarningSource{
			staticWarnings{region: "kent", entries: []domain.WarningEntry{{Summary: "Wind warning in effect"}}},
		},
	}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(sources, writer, clockwork.NewRealClock(), discardLogger(), metrics, pipeline.Options{
		StationID: "IMONCT42",
		// Long intervals: only the immediate first refreshes run.
		ReadingInterval: time.Hour,
		WarningInterval: time.Hour,
	})

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newConsumer(t, broker)
	first := readDigest(ctx, t, consumer)
	second := readDigest(ctx, t, consumer)

	pipelineCancel()
	require.NoError(t, <-errCh)

	// Refresh order is not fixed; the later digest carries both updates.
	assert.Equal(t, "IMONCT42", first.Key)
	final := second.Digest
	require.NotNil(t, final.Conditions)
	assert.Equal(t, 10.0, *final.Conditions.Temperature)
	require.NotNil(t, final.Comfort)
	assert.Equal(t, "wind_chill", final.Comfort.Kind)
	require.Len(t, final.Warnings, 1)
	assert.Equal(t, domain.SeverityRed, final.Warnings[0].Level)
}
