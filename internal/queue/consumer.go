package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded booking event.
type Handler interface {
	HandleBookingEvent(ctx context.Context, ev BookingEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev BookingEvent) error

func (f HandlerFunc) HandleBookingEvent(ctx context.Context, ev BookingEvent) error {
	return f(ctx, ev)
}

// StartBookingConsumer connects to RabbitMQ, declares the booking queue
// and dispatches every message to the handlers in order.  It runs a
// reconnect loop and only returns once ctx is cancelled.  A message whose
// handlers fail is rejected without requeue so a poison message cannot
// spin the loop.
func StartBookingConsumer(ctx context.Context, url string, handlers ...Handler) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		conn, err := dial(dialCtx, url)
		cancel()
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, handlers)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, handlers []Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}
	if err := declare(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := Dispatch(ctx, d.Body, handlers...); err != nil {
				log.Printf("booking-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Dispatch decodes a message body and runs every handler on it.  All
// handlers run even if an earlier one fails; the first error is returned.
func Dispatch(ctx context.Context, body []byte, handlers ...Handler) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	var first error
	for _, h := range handlers {
		if err := h.HandleBookingEvent(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Journal appends one human-readable line per event to a log file.
type Journal struct {
	Dir string
	mu  sync.Mutex
}

// NewJournal writes to dir/booking.log.
func NewJournal(dir string) *Journal { return &Journal{Dir: dir} }

func (j *Journal) HandleBookingEvent(_ context.Context, ev BookingEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(j.Dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s | booking_id=%s | kind=%s | resource_id=%s | name=%q | title=%q | date=%s %s | price=%.2f DH | status=%s\n",
		ev.OccurredAt, ev.Type, ev.BookingID, ev.Kind, ev.ResourceID, ev.Name, ev.Title, ev.Date, ev.StartTime, ev.Price, ev.Status)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
