package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp091.Channel the forwarder uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Forwarder republishes broker events to a RabbitMQ topic exchange, routed by event type.
type Forwarder struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
}

// NewForwarder dials RabbitMQ and declares the exchange.
func NewForwarder(url, exchangeName string) (*Forwarder, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	f := &Forwarder{conn: conn, channel: ch, exchangeName: exchangeName}
	if err := f.setup(); err != nil {
		f.Close()
		return nil, fmt.Errorf("setup exchange: %w", err)
	}
	return f, nil
}

func newForwarderWithChannel(ch channel, exchangeName string) (*Forwarder, error) {
	f := &Forwarder{channel: ch, exchangeName: exchangeName}
	if err := f.setup(); err != nil {
		return nil, fmt.Errorf("setup exchange: %w", err)
	}
	return f, nil
}

func (f *Forwarder) setup() error {
	err := f.channel.ExchangeDeclare(
		f.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// Forward publishes one event, using its type as routing key.
func (f *Forwarder) Forward(ctx context.Context, evt events.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchangeName,   // exchange
		string(evt.Type), // routing key
		false,            // mandatory
		false,            // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    evt.ID,
			Timestamp:    evt.OccurredAt,
			Type:         string(evt.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Run forwards events from a broker subscription until ctx is done.
// Publish failures are logged and the event is dropped.
func (f *Forwarder) Run(ctx context.Context, broker *events.Broker) {
	sub := broker.Subscribe(ctx)
	defer sub.Close()

	slog.InfoContext(ctx, "Forwarding ledger events to AMQP", "exchange", f.exchangeName)
	for evt := range sub.Events() {
		if err := f.Forward(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "Failed to forward event",
				"error", err,
				"event_id", evt.ID,
				"event_type", evt.Type)
			continue
		}
		slog.DebugContext(ctx, "Forwarded event", "event_id", evt.ID, "event_type", evt.Type)
	}
	slog.InfoContext(ctx, "Stopped forwarding ledger events", "reason", ctx.Err())
}

func (f *Forwarder) Close() error {
	if f.channel != nil {
		f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
