package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/notify"
)

const (
	// DefaultExchange is the topic exchange the events are published on.
	DefaultExchange = "events"
	// RoutingKeyTaskBlocked is the routing key of the task blocked events.
	RoutingKeyTaskBlocked = "task.blocked"
)

// Channel is the subset of an AMQP channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// PublisherConfig is the configuration of the AMQP publisher.
type PublisherConfig struct {
	// URL is the broker URL, used when Channel is missing.
	URL      string
	Channel  Channel
	Exchange string
	Logger   log.Logger
}

func (c *PublisherConfig) defaults() error {
	if c.Channel == nil && c.URL == "" {
		return fmt.Errorf("amqp url or channel is required")
	}
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.AMQP"})
	return nil
}

// Publisher publishes manager notifications as JSON events on an AMQP topic exchange.
type Publisher struct {
	conn     *amqp091.Connection
	ch       Channel
	exchange string
	logger   log.Logger
}

// NewPublisher connects to the broker (when no channel is given) and declares the exchange.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &Publisher{ch: cfg.Channel, exchange: cfg.Exchange, logger: cfg.Logger}
	if p.ch == nil {
		conn, err := amqp091.Dial(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("could not connect to broker: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("could not open channel: %w", err)
		}
		p.conn, p.ch = conn, ch
	}

	if err := p.ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return p, nil
}

// NotifyTaskBlocked publishes the notification.
func (p *Publisher) NotifyTaskBlocked(ctx context.Context, n notify.TaskBlocked) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("could not encode notification: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyTaskBlocked, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    n.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("could not publish notification: %w", err)
	}

	p.logger.Debugf("Published %s event for task %s", RoutingKeyTaskBlocked, n.TaskID)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

var _ notify.Notifier = &Publisher{}
