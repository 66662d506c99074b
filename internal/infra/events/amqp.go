// Package events publishes result events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// Event kinds.
const (
	KindSpendingAnalyzed  = "spending.analyzed"
	KindBudgetRecommended = "budget.recommended"
	KindChallengeCreated  = "challenge.created"
	KindChallengeUpdated  = "challenge.status_updated"
)

// NewEvent builds an event for a persisted result.
func NewEvent(kind, userID, resultID string, now time.Time) domain.ResultEvent {
	return domain.ResultEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserID:    userID,
		ResultID:  resultID,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// Channel is the part of *amqp091.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher implements port.EventPublisher on a direct exchange.
type Publisher struct {
	conn       *amqp091.Connection
	channel    Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// Dial connects to the broker and declares the exchange, the queue and the
// binding between them.
func Dial(url, exchange, queue string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setup(ch, exchange, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	p := NewPublisher(ch, exchange, queue, logger)
	p.conn = conn
	return p, nil
}

// NewPublisher wraps an already configured channel. The queue name is the
// routing key.
func NewPublisher(ch Channel, exchange, queue string, logger *zap.Logger) *Publisher {
	return &Publisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: queue,
		logger:     logger,
	}
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends the event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event domain.ResultEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Type:         event.Kind,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "amqp", Err: err}
	}

	p.logger.Debug("published result event",
		zap.String("kind", event.Kind),
		zap.String("result_id", event.ResultID),
		zap.String("exchange", p.exchange),
	)
	return nil
}

// Close closes the channel and the connection opened by Dial.
func (p *Publisher) Close() error {
	if ch, ok := p.channel.(*amqp091.Channel); ok {
		ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, domain.ResultEvent) error { return nil }
