// Package events announces finished sync runs to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/segmentio/kafka-go"
)

// RunEvent is the message body published for every orchestration run.
type RunEvent struct {
	RunID        string               `json:"runId"`
	StartedAt    time.Time            `json:"startedAt"`
	FinishedAt   time.Time            `json:"finishedAt"`
	Cancelled    bool                 `json:"cancelled,omitempty"`
	Failed       int                  `json:"failed"`
	Repositories []schema.RepoOutcome `json:"repositories"`
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes run summaries to a Kafka topic keyed by run id.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

var _ contract.EventPublisher = &KafkaPublisher{}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: no kafka brokers configured", contract.ErrConfig)
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaPublisher{writer: writer, now: time.Now}, nil
}

// PublishRun writes one message describing summary.
func (p *KafkaPublisher) PublishRun(ctx context.Context, summary schema.RunSummary) error {
	body, err := json.Marshal(RunEvent{
		RunID:        summary.RunID,
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.FinishedAt,
		Cancelled:    summary.Cancelled,
		Failed:       summary.Failed(),
		Repositories: summary.Results,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(summary.RunID),
		Value: body,
		Time:  p.now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write run event to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

var _ contract.EventPublisher = NopPublisher{}

// PublishRun does nothing.
func (NopPublisher) PublishRun(context.Context, schema.RunSummary) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when brokers are configured and a no-op otherwise.
func NewPublisher(cfg *contract.Config) (contract.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return NopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
