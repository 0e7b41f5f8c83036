// Package mqtt receives station readings pushed to an MQTT broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/station-digest-service/internal/adapter/station"
	"github.com/couchcryptid/station-digest-service/internal/config"
	"github.com/couchcryptid/station-digest-service/internal/domain"
	"github.com/couchcryptid/station-digest-service/internal/observability"
)

var errStopped = errors.New("subscriber stopped")

// Subscriber listens on the configured topic for current-conditions records.
type Subscriber struct {
	client  pahomqtt.Client
	topic   string
	logger  *slog.Logger
	metrics *observability.Metrics

	mu        sync.RWMutex
	connected bool
	handler   func(domain.Reading)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSubscriber creates a subscriber; call Connect to start receiving.
func NewSubscriber(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Subscriber {
	s := &Subscriber{
		topic:   cfg.MQTTTopic,
		logger:  logger,
		metrics: metrics,
		stopCh:  make(chan struct{}),
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Subscriptions are not kept across clean-session reconnects, so
	// subscribe from the connect handler.
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if err := s.subscribe(c); err != nil {
			logger.Error("mqtt subscribe failed", "topic", s.topic, "error", err)
		}
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = pahomqtt.NewClient(opts)
	return s
}

// SetHandler sets the function called for each valid reading.
func (s *Subscriber) SetHandler(h func(domain.Reading)) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Connect establishes the broker connection. It returns once connected, or
// when ctx is done or the subscriber is stopped.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return errStopped
	default:
	}
	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()
	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return errStopped
		default:
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Subscriber) subscribe(c pahomqtt.Client) error {
	const qos = byte(1)
	token := c.Subscribe(s.topic, qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", s.topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	r, err := ParsePayload(payload)
	if err != nil {
		s.metrics.MQTTReadings.WithLabelValues("invalid").Inc()
		s.logger.Warn("invalid station payload", "topic", topic, "error", err)
		return
	}

	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h != nil {
		h(r)
	}
}

// ParsePayload decodes a pushed current-conditions record. A record must
// carry a timestamp and at least one measurement.
func ParsePayload(payload []byte) (domain.Reading, error) {
	fields, err := station.DecodeFields(payload)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("decode payload: %w", err)
	}
	r := domain.ParseReading(fields)
	if r.ObservedAt.IsZero() {
		return domain.Reading{}, errors.New("dateutc is required")
	}
	if r.Empty() {
		return domain.Reading{}, errors.New("no measurements in payload")
	}
	return r, nil
}

// IsConnected reports whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the connection. Safe to call more than once.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.IsConnected() {
		s.client.Unsubscribe(s.topic).WaitTimeout(2 * time.Second)
	}
	s.client.Disconnect(250)
	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
