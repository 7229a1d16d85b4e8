package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"

	"storefront-checkout/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

const EventOrderPlaced = "order.placed"

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPlaced is the payload published for every placed order.
type OrderPlaced struct {
	OrderID       string                  `json:"order_id"`
	Status        domain.OrderStatus      `json:"status"`
	PaymentMethod domain.PaymentMethodID  `json:"payment_method"`
	Total         decimal.Decimal         `json:"total_amount"`
	Currency      string                  `json:"currency"`
	CustomerEmail string                  `json:"customer_email"`
	Items         []domain.CartItem       `json:"items"`
	Shipping      *domain.ShippingDetails `json:"shipping,omitempty"`
	PlacedAt      time.Time               `json:"placed_at"`
}

// Publisher writes order events to Kafka behind a circuit breaker so a broker
// outage fails fast instead of stalling every checkout.
type Publisher struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *log.Logger
}

// NewWriter builds the Kafka writer for the orders topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewPublisher(w MessageWriter, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	p := &Publisher{writer: w, logger: logger}
	p.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-orders",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("events: breaker=%s state %s -> %s", name, from, to)
		},
	})
	return p
}

// PlaceOrder publishes order.placed keyed by order id.
func (p *Publisher) PlaceOrder(ctx context.Context, o domain.Order) error {
	payload, err := json.Marshal(OrderPlaced{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Currency:      o.Currency,
		CustomerEmail: strings.ToLower(o.CustomerEmail),
		Items:         o.Items,
		Shipping:      o.ShippingDetails,
		PlacedAt:      o.Date,
	})
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(o.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
		Time: time.Now().UTC(),
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		p.logger.Printf("events: publish order_id=%s error=%v", o.ID, err)
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
