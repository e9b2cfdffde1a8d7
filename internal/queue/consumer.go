// Package queue contains the background consumer that listens to the
// order.placed queue and writes one line per order to logs/orders.log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to RabbitMQ, declares the order.placed queue
// (durable), and starts consuming messages.  Each message is appended to
// <logDir>/orders.log in a single-line, human-friendly format.  The
// function runs a reconnect loop and only returns once ctx is cancelled;
// processing errors are logged and the offending message is rejected.
func StartOrderConsumer(ctx context.Context, url, logDir string, logger *slog.Logger) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("order-consumer: failed to dial broker", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logDir, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("order-consumer: consume loop ended; reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("order-consumer: set QoS failed", "err", err)
	}

	if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, OrderPlacedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleOrderPlaced(logDir, d.Body); err != nil {
			logger.Error("order-consumer: handle message failed", "err", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleOrderPlaced decodes an OrderPlacedEvent and appends it to
// <logDir>/orders.log.
func HandleOrderPlaced(logDir string, body []byte) error {
	var ev OrderPlacedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.OrderID == "" {
		return errors.New("event without order_id")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatOrderLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatOrderLine renders ev as one log line terminated by a newline.
func FormatOrderLine(ev OrderPlacedEvent) string {
	items := make([]string, 0, len(ev.Items))
	for _, it := range ev.Items {
		s := fmt.Sprintf("%dx %s", it.Quantity, it.Name)
		if len(it.Customizations) > 0 {
			s += " (" + strings.Join(it.Customizations, ", ") + ")"
		}
		items = append(items, s)
	}
	line := fmt.Sprintf("[%s] Order placed | order_id=%s | user_id=%s | restaurant=%q | total=%.2f | items=[%s]",
		ev.PlacedAt, ev.OrderID, ev.UserID, ev.RestaurantName, ev.TotalAmount, strings.Join(items, "; "))
	if ev.PickupTime != "" {
		line += " | pickup=" + ev.PickupTime
	}
	return line + "\n"
}
