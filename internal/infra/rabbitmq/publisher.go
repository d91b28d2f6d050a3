package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/port"
)

type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// RecordPublisher writes output records to the exchange. Every record carries
// the same partition key header so consumers can keep a single ordered stream.
type RecordPublisher struct {
	pub          *Publisher
	routingKey   string
	partitionKey string
}

func NewRecordPublisher(pub *Publisher, routingKey, partitionKey string) *RecordPublisher {
	return &RecordPublisher{pub: pub, routingKey: routingKey, partitionKey: partitionKey}
}

func (rp *RecordPublisher) Publish(ctx context.Context, record entity.OutputRecord) (entity.PublishReceipt, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return entity.PublishReceipt{}, fmt.Errorf("%w: marshal record: %v", entity.ErrPublish, err)
	}

	err = rp.pub.channel.PublishWithContext(ctx,
		rp.pub.exchange,
		rp.routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    record.FrameID.String(),
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"x-partition-key": rp.partitionKey,
			},
		},
	)
	if err != nil {
		return entity.PublishReceipt{}, fmt.Errorf("%w: exchange %s: %w", entity.ErrPublish, rp.pub.exchange, err)
	}
	return entity.PublishReceipt{Destination: rp.pub.exchange + "/" + rp.routingKey}, nil
}

// DLQPublisher parks failed envelopes, unchanged, with the context needed to replay them.
type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

func (dp *DLQPublisher) ReportFailure(ctx context.Context, report port.FailureReport) error {
	reason := string(report.Kind)
	if report.Err != nil {
		reason = report.Err.Error()
	}
	return dp.pub.channel.PublishWithContext(ctx,
		"",
		dp.queue,
		false, false,
		amqp.Publishing{
			ContentType:  "text/plain",
			Body:         []byte(report.Envelope.Data),
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"x-dlq-reason":      reason,
				"x-error-kind":      string(report.Kind),
				"x-record-index":    strconv.Itoa(report.Envelope.Index),
				"x-sequence-number": report.Envelope.SequenceNumber,
				"x-partition-key":   report.Envelope.PartitionKey,
				"x-processed-local": report.ProcessedLocal,
			},
		},
	)
}
