package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the durable topic exchange booking events are
	// published to, routed by event type.
	ExchangeName = "booking.events"
	// QueueName is the durable queue the consumer drains.
	QueueName = "booking.events.log"
	// BindingKey binds QueueName to every booking event type.
	BindingKey = "booking.#"

	// DefaultPublishTimeout bounds one Publish call, dialing included.
	DefaultPublishTimeout = 2 * time.Second
)

// ErrBrokerUnavailable is returned while the publisher waits out the pause
// after a failed dial.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// Publisher sends booking events to RabbitMQ.  It keeps one connection and
// channel open and redials after the broker drops them.  Publish is safe
// for concurrent use and never blocks longer than the publish timeout.
type Publisher struct {
	url     string
	timeout time.Duration

	// sem guards the fields below; a buffered channel so waiters can
	// give up when their deadline passes.
	sem     chan struct{}
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

// NewPublisher returns a Publisher for the broker at url.  A zero timeout
// means DefaultPublishTimeout.  No connection is made until the first
// Publish.
func NewPublisher(url string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Publisher{url: url, timeout: timeout, sem: make(chan struct{}, 1)}
}

// Publish marshals ev and sends it as a persistent message on ExchangeName
// with the event type as routing key.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.lock(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	defer p.unlock()

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, ExchangeName, string(ev.Type), false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.sem <- struct{}{}
	defer p.unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	return err
}

func (p *Publisher) lock(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) unlock() { <-p.sem }

// channel returns the open channel, dialing and declaring the topology when
// needed.  After a failed dial it reports ErrBrokerUnavailable until the
// pause is over.  Callers hold the lock.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if time.Now().Before(p.retryAt) {
		return nil, ErrBrokerUnavailable
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.timeout),
	})
	if err != nil {
		p.retryAt = time.Now().Add(5 * p.timeout)
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch); err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// declare makes sure the events exchange and the consumer queue exist and
// are bound.  Declaring is idempotent.
func declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(QueueName, BindingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}
