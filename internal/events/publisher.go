package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

const EventOrderGroupCommitted = "order_group.committed"

type Envelope struct {
	EventType  string           `json:"event_type"`
	Version    int              `json:"version"`
	OccurredAt time.Time        `json:"occurred_at"`
	EntityID   string           `json:"entity_id"`
	RunID      string           `json:"run_id,omitempty"`
	Payload    types.OrderGroup `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	RunID        string
	BatchTimeout time.Duration
}

// Publisher emits one message per committed order group, keyed by order id.
type Publisher struct {
	w     messageWriter
	topic string
	runID string
	now   func() time.Time
}

func NewPublisher(cfg Config) *Publisher {
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, cfg)
}

func newPublisher(w messageWriter, cfg Config) *Publisher {
	return &Publisher{w: w, topic: cfg.Topic, runID: cfg.RunID, now: time.Now}
}

func (p *Publisher) Committed(ctx context.Context, group types.OrderGroup) error {
	key := strconv.FormatInt(group.Order.ID, 10)
	env := Envelope{
		EventType:  EventOrderGroupCommitted,
		Version:    1,
		OccurredAt: p.now().UTC(),
		EntityID:   key,
		RunID:      p.runID,
		Payload:    group,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode order group %d: %w", group.Order.ID, err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: data,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderGroupCommitted)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order group %d: %w", group.Order.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
