// Package queue publishes ingestion events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultDialTimeout bounds the TCP connect plus AMQP handshake
	DefaultDialTimeout = 3 * time.Second
	// DefaultRedialBackoff is how long publishing is skipped after a failed dial
	DefaultRedialBackoff = 10 * time.Second
)

// ErrBrokerBackoff is returned while a failed broker is not re-dialled yet
var ErrBrokerBackoff = errors.New("rabbitmq: waiting before redial")

// RabbitPublisher sends SchedulesIngested events to a durable queue. The
// connection is dialled lazily and re-dialled after a failure, at most
// once per backoff period. A publish never waits past its context.
type RabbitPublisher struct {
	url    string
	queue  string
	logger logger.Logger

	dialTimeout   time.Duration
	redialBackoff time.Duration
	now           func() time.Time

	// sem guards the connection; a one-slot channel so waiters can give up
	sem        chan struct{}
	conn       *amqp.Connection
	ch         *amqp.Channel
	nextDialAt time.Time
}

// NewRabbitPublisher creates a publisher for the given queue
func NewRabbitPublisher(url, queue string, log logger.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		url:           url,
		queue:         queue,
		logger:        log,
		dialTimeout:   DefaultDialTimeout,
		redialBackoff: DefaultRedialBackoff,
		now:           time.Now,
		sem:           make(chan struct{}, 1),
	}
}

func (p *RabbitPublisher) lock(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *RabbitPublisher) unlock() { <-p.sem }

// dialer connects within the dial timeout or the context deadline,
// whichever comes first. amqp clears the deadline once the handshake is done.
func (p *RabbitPublisher) dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := p.now().Add(p.dialTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		d := net.Dialer{Deadline: deadline}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (p *RabbitPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	if p.now().Before(p.nextDialAt) {
		return nil, ErrBrokerBackoff
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      p.dialer(ctx),
	})
	if err != nil {
		p.nextDialAt = p.now().Add(p.redialBackoff)
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.nextDialAt = p.now().Add(p.redialBackoff)
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.nextDialAt = p.now().Add(p.redialBackoff)
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

// PublishSchedulesIngested publishes one persistent JSON message. A done
// context skips the publish.
func (p *RabbitPublisher) PublishSchedulesIngested(ctx context.Context, event entity.SchedulesIngested) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.lock(ctx); err != nil {
		return err
	}
	defer p.unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		if !errors.Is(err, ErrBrokerBackoff) {
			p.logger.Warn("RabbitMQ unavailable", "error", err)
		}
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.closeLocked()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Close releases the broker connection
func (p *RabbitPublisher) Close() error {
	p.sem <- struct{}{}
	defer p.unlock()
	p.closeLocked()
	return nil
}

func (p *RabbitPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishSchedulesIngested(context.Context, entity.SchedulesIngested) error {
	return nil
}

var (
	_ repository.EventPublisher = (*RabbitPublisher)(nil)
	_ repository.EventPublisher = NopPublisher{}
)
