package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"projecttracker/pkg/circuitbreaker"
	"projecttracker/pkg/metrics"
)

// Publisher sends JSON events to the topic exchange. An amqp channel is not
// safe for concurrent publishes, so calls are serialized. After repeated
// failures the breaker opens and publishes fail fast with
// circuitbreaker.ErrOpen.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("RabbitMQ publisher ready", zap.String("exchange", ExchangeName))
	return &Publisher{
		conn:    conn,
		channel: ch,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// IsConnected checks if the publisher connection is still alive
func (p *Publisher) IsConnected() bool {
	if p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed()
}

// Publish publishes payload to the exchange with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.breaker.Execute(func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.channel.PublishWithContext(ctx,
			ExchangeName,
			routingKey,
			false,
			false,
			amqp091.Publishing{
				ContentType:  "application/json",
				MessageId:    uuid.NewString(),
				Timestamp:    time.Now().UTC(),
				Body:         body,
				DeliveryMode: amqp091.Persistent,
			},
		)
	})

	if errors.Is(err, circuitbreaker.ErrOpen) {
		metrics.IncrementEventPublish(routingKey, "skipped")
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	if err != nil {
		metrics.IncrementEventPublish(routingKey, "failed")
		p.logger.Error("Failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	metrics.IncrementEventPublish(routingKey, "success")
	p.logger.Debug("Event published", zap.String("routing_key", routingKey))
	return nil
}
