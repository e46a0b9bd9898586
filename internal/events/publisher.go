package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tshirt-orders/internal/config"
	"tshirt-orders/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventType classifies order events on the wire.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderRedeemed      EventType = "order.redeemed"
)

// OrderEvent is the envelope published for every successful order mutation.
// Publishing is best-effort: failures are logged and never roll back the
// transaction that produced them.
type OrderEvent struct {
	ID             string        `json:"id"`
	Type           EventType     `json:"type"`
	OrderID        int64         `json:"order_id"`
	BuyerKey       string        `json:"buyer_key"`
	PreviousStatus domain.Status `json:"previous_status,omitempty"`
	NewStatus      domain.Status `json:"new_status,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
	Order          domain.Order  `json:"order"`
}

type Publisher interface {
	OrderCreated(ctx context.Context, order domain.Order)
	StatusChanged(ctx context.Context, order domain.Order, previous domain.Status)
	OrderRedeemed(ctx context.Context, order domain.Order)
	Close() error
}

// KafkaPublisher writes order events to a Kafka topic keyed by order id.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *log.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *log.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order domain.Order) {
	p.publish(ctx, newEvent(EventTypeOrderCreated, order, ""))
}

func (p *KafkaPublisher) StatusChanged(ctx context.Context, order domain.Order, previous domain.Status) {
	p.publish(ctx, newEvent(EventTypeOrderStatusChanged, order, previous))
}

func (p *KafkaPublisher) OrderRedeemed(ctx context.Context, order domain.Order) {
	p.publish(ctx, newEvent(EventTypeOrderRedeemed, order, ""))
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, event OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Printf("marshal event %s: %v", event.Type, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Printf("publish %s for order %d: %v", event.Type, event.OrderID, err)
	}
}

func newEvent(eventType EventType, order domain.Order, previous domain.Status) OrderEvent {
	return OrderEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		OrderID:        order.ID,
		BuyerKey:       order.BuyerKey,
		PreviousStatus: previous,
		NewStatus:      order.Status,
		Timestamp:      time.Now().UTC(),
		Order:          order,
	}
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(context.Context, domain.Order) {}

func (NoopPublisher) StatusChanged(context.Context, domain.Order, domain.Status) {}

func (NoopPublisher) OrderRedeemed(context.Context, domain.Order) {}

func (NoopPublisher) Close() error { return nil }

// MockPublisher records events for tests.
type MockPublisher struct {
	Events []OrderEvent
}

func (m *MockPublisher) OrderCreated(_ context.Context, order domain.Order) {
	m.Events = append(m.Events, newEvent(EventTypeOrderCreated, order, ""))
}

func (m *MockPublisher) StatusChanged(_ context.Context, order domain.Order, previous domain.Status) {
	m.Events = append(m.Events, newEvent(EventTypeOrderStatusChanged, order, previous))
}

func (m *MockPublisher) OrderRedeemed(_ context.Context, order domain.Order) {
	m.Events = append(m.Events, newEvent(EventTypeOrderRedeemed, order, ""))
}

func (m *MockPublisher) Close() error { return nil }
