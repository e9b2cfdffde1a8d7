// Package service provides adapters that publish domain events to
// RabbitMQ.  Publishing is best effort: errors are logged and returned so
// callers can ignore them without interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/food-ordering-assistant/internal/queue"
)

// OrderPublisher publishes order events to the broker at url.  A new
// connection is dialed for every publish; order placement is rare enough
// per process that a pooled channel is not needed.
type OrderPublisher struct {
	url    string
	logger *slog.Logger
}

// NewOrderPublisher returns a publisher for the broker at url.
func NewOrderPublisher(url string, logger *slog.Logger) *OrderPublisher {
	return &OrderPublisher{url: url, logger: logger}
}

// OrderPlaced publishes event to the "order.placed" queue.  Messages are
// marked as persistent.
func (p *OrderPublisher) OrderPlaced(ctx context.Context, event queue.OrderPlacedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq: dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.OrderPlacedQueue, // name
		true,                   // durable
		false,                  // autoDelete
		false,                  // exclusive
		false,                  // noWait
		nil,                    // args
	); err != nil {
		p.logger.Warn("rabbitmq: queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    event.OrderID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                     // default exchange
		queue.OrderPlacedQueue, // routing key = queue name
		false,                  // mandatory
		false,                  // immediate
		pub,
	); err != nil {
		p.logger.Warn("rabbitmq: publish failed", "err", err, "order_id", event.OrderID)
		return err
	}
	return nil
}
