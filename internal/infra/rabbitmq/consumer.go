package rabbitmq

import (
	"context"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"go.uber.org/zap"
)

type BatchHandler func(ctx context.Context, envelopes []entity.Envelope) entity.BatchSummary

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	handler BatchHandler
	logger  *zap.Logger
}

type ConsumerConfig struct {
	URL         string
	Queue       string
	Exchange    string
	DLQ         string
	OutputQueue string
	RoutingKey  string
}

// NewConsumer declares the topology (input queue, DLQ and the output queue
// bound to the exchange) and prepares an in-order consumer on the input queue.
func NewConsumer(cfg ConsumerConfig, handler BatchHandler, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.Queue, cfg.DLQ, cfg.OutputQueue} {
		_, err = ch.QueueDeclare(q, true, false, false, false, nil)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	err = ch.QueueBind(cfg.OutputQueue, cfg.RoutingKey, cfg.Exchange, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind output queue: %w", err)
	}

	// One unacked delivery at a time keeps publish order equal to input order.
	err = ch.Qos(1, 0, false)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		handler: handler,
		logger:  logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue,
		"",
		false, // autoAck=false
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("consuming frame envelopes", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer shutting down")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Info("delivery channel closed")
				return nil
			}
			c.processDelivery(ctx, d)
		}
	}
}

func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery) {
	env := entity.Envelope{
		SequenceNumber: d.MessageId,
		Data:           string(d.Body),
	}
	if env.SequenceNumber == "" {
		env.SequenceNumber = strconv.FormatUint(d.DeliveryTag, 10)
	}
	if pk, ok := d.Headers["x-partition-key"].(string); ok {
		env.PartitionKey = pk
	}

	summary := c.handler(ctx, []entity.Envelope{env})

	if requeue(summary) {
		if err := d.Nack(false, true); err != nil {
			c.logger.Warn("nack failed", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		c.logger.Warn("ack failed", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
	}
}

// requeue reports whether a delivery must go back to the input queue. Failed
// records are normally parked on the DLQ by the failure reporter; a record
// interrupted by shutdown, or one the DLQ did not accept, would otherwise be lost.
func requeue(summary entity.BatchSummary) bool {
	for _, r := range summary.Failures() {
		if r.Kind == entity.ErrorKindCanceled || r.ReportErr != nil {
			return true
		}
	}
	return false
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
