package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

// binding is a durable queue and the routing key it is bound with.
type binding struct {
	queue      string
	routingKey string
	args       amqp091.Table
}

// maxReloadedBacklog bounds the reload announcements kept for slow consumers.
const maxReloadedBacklog = 1000

// ReloadedQueueName is the queue holding dataset reloaded events for the
// given seed request queue.
func ReloadedQueueName(seedQueue string) string {
	return seedQueue + "." + DatasetReloadedRoutingKey
}

// bindings lists the queues the client declares. Seed requests are routed on
// the queue name, as usual for a direct exchange; reload events go to a
// length-bounded queue so they are kept until someone reads them.
func (c *Client) bindings() []binding {
	return []binding{
		{queue: c.queueName, routingKey: c.queueName},
		{
			queue:      ReloadedQueueName(c.queueName),
			routingKey: DatasetReloadedRoutingKey,
			args:       amqp091.Table{"x-max-length": int32(maxReloadedBacklog)},
		},
	}
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, b := range c.bindings() {
		_, err = c.channel.QueueDeclare(
			b.queue, // name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			b.args,  // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}

		if err := c.channel.QueueBind(b.queue, b.routingKey, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// PublishSeedRequest asks a seed worker to reload the store
func (c *Client) PublishSeedRequest(ctx context.Context, requestedBy string) error {
	body, err := NewSeedRequestMessage(requestedBy).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.queueName, body); err != nil {
		return fmt.Errorf("publish seed request: %w", err)
	}

	slog.InfoContext(ctx, "Published seed request",
		"requested_by", requestedBy,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishDatasetReloaded implements seed.Publisher. The event lands on the
// queue named by ReloadedQueueName.
func (c *Client) PublishDatasetReloaded(ctx context.Context, count int) error {
	body, err := NewDatasetReloadedMessage(count).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, DatasetReloadedRoutingKey, body); err != nil {
		return fmt.Errorf("publish dataset reloaded: %w", err)
	}

	slog.InfoContext(ctx, "Published dataset reloaded event",
		"count", count,
		"exchange", c.exchangeName,
		"routing_key", DatasetReloadedRoutingKey)
	return nil
}

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	// Reject drops the delivery without requeueing it. Seed requests are
	// never retried.
	Reject
)

// HandleSeedRequest decodes one delivery body and runs handler on it.
func HandleSeedRequest(ctx context.Context, body []byte, handler func(context.Context, *SeedRequestMessage) error) Outcome {
	msg, err := SeedRequestMessageFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal seed request", "error", err)
		return Reject
	}

	slog.InfoContext(ctx, "Processing seed request", "requested_by", msg.RequestedBy)

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to handle seed request",
			"error", err,
			"requested_by", msg.RequestedBy)
		return Reject
	}
	return Ack
}

// ConsumeSeedRequests consumes seed requests until ctx is done
func (c *Client) ConsumeSeedRequests(ctx context.Context, handler func(context.Context, *SeedRequestMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming seed requests", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			switch HandleSeedRequest(ctx, delivery.Body, handler) {
			case Ack:
				delivery.Ack(false)
			default:
				delivery.Nack(false, false)
			}
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
