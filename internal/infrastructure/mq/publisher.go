package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TicketLine is one line of a kitchen ticket message.
type TicketLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// OrderEvent is the message published to the kitchen exchange whenever an
// order is created or its status changes. Consumers (kitchen displays,
// notification workers) key off the routing key "order.<status>".
type OrderEvent struct {
	OrderID     string       `json:"order_id"`
	TableNumber int          `json:"table_number"`
	Status      string       `json:"status"`
	Total       float64      `json:"total"`
	Lines       []TicketLine `json:"lines,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// Publisher sends order events to the message broker.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error
	Close()
}

// Client wraps an AMQP connection with publisher confirms enabled. Publish
// waits for the broker's ack so a dropped ticket is reported, not silently
// lost.
type Client struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes Publish while using confirms
}

// Dial connects to RabbitMQ and declares the order exchange.
func Dial(url, exchange string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mq: failed to connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq: failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("mq: failed to declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("mq: failed to enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Client{conn: conn, ch: ch, exchange: exchange, acks: acks}, nil
}

// PublishOrderEvent publishes the event as persistent JSON and waits for the
// broker ack or context cancellation.
func (c *Client) PublishOrderEvent(ctx context.Context, event *OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("mq: failed to marshal event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(
		ctx,
		c.exchange,
		"order."+event.Status,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("mq: publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the channel and connection.
func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
