package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gebeyalink/storefront/pkg/config"
	"github.com/gebeyalink/storefront/pkg/logger"
	kafkago "github.com/segmentio/kafka-go"
)

// Event names emitted on the storefront analytics stream.
const (
	EventCartConverted    = "cart_converted"
	EventPaymentInitiated = "payment_initiated"
	EventPaymentConfirmed = "payment_confirmed"
)

// Publisher emits storefront funnel events. Publishing is fire-and-forget;
// a failed publish is logged, never surfaced to the shopper.
type Publisher interface {
	Publish(ctx context.Context, key, event string, payload any)
	Close() error
}

type kafkaPublisher struct {
	writer *kafkago.Writer
	logg   *logger.Logger
}

// NewPublisher builds a Kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(cfg config.KafkaConfig, logg *logger.Logger) Publisher {
	if !cfg.Enabled() {
		return noopPublisher{}
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
	return &kafkaPublisher{writer: writer, logg: logg}
}

type envelope struct {
	Event      string    `json:"event"`
	SessionKey string    `json:"session_key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func (p *kafkaPublisher) Publish(ctx context.Context, key, event string, payload any) {
	body, err := json.Marshal(envelope{
		Event:      event,
		SessionKey: key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.warn(ctx, event, fmt.Errorf("marshal event: %w", err))
		return
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: body,
	}); err != nil {
		p.warn(ctx, event, err)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *kafkaPublisher) warn(ctx context.Context, event string, err error) {
	if p.logg == nil {
		return
	}
	ctx = p.logg.WithField(ctx, "event", event)
	p.logg.Error(ctx, "analytics publish failed", err)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) {}
func (noopPublisher) Close() error                                 { return nil }
