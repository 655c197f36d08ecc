package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// TopicPrefix is the prefix for every Dividis topic.
const TopicPrefix = "dividis"

// Topic constructs a fully-qualified topic name.
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}

// ActivityTopic carries all dashboard activity events.
var ActivityTopic = Topic("dashboard", "activity")

var (
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dividis_events_published_total",
		Help: "Activity events handed to Kafka, by type and result (ok or error).",
	}, []string{"topic", "event_type", "result"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dividis_events_publish_duration_seconds",
		Help:    "Time spent in WriteMessages per activity event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
)

// Publisher sends activity events somewhere. Producer writes them to Kafka,
// NopPublisher discards them.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }
func (NopPublisher) Close() error                          { return nil }

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig returns defaults for the activity producer.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		Topic:        ActivityTopic,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes activity events to a single topic.
type Producer struct {
	writer  messageWriter
	topic   string
	brokers []string
	logger  *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a producer. No connection is made until the first
// publish.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Topic == "" {
		cfg.Topic = ActivityTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer:  w,
		topic:   cfg.Topic,
		brokers: cfg.Brokers,
		logger:  logger,
	}
}

// Publish writes event keyed by its user so one user's activity stays in
// order. The active trace travels in the message headers.
func (p *Producer) Publish(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("kafka: nil event")
	}
	msg, err := event.message()
	if err != nil {
		return err
	}
	injectTrace(ctx, &msg)

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	publishDuration.WithLabelValues(p.topic).Observe(time.Since(start).Seconds())

	attrs := []any{slog.String("topic", p.topic), slog.String("event_type", event.EventType)}
	if err != nil {
		publishTotal.WithLabelValues(p.topic, event.EventType, "error").Inc()
		p.logger.ErrorContext(ctx, "failed to publish event", append(attrs, slog.String("error", err.Error()))...)
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}
	publishTotal.WithLabelValues(p.topic, event.EventType, "ok").Inc()
	p.logger.DebugContext(ctx, "event published", append(attrs, slog.String("subject_id", event.SubjectID))...)
	return nil
}

// Ping checks broker connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers dials the given brokers and returns nil if at least one is
// reachable.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
