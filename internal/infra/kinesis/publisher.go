package kinesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/smithy-go"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

// DefaultPartitionKey routes every record to the same shard, which keeps
// downstream ordering equal to publish order.
const DefaultPartitionKey = "partitionkey"

type Client interface {
	PutRecord(ctx context.Context, params *kinesis.PutRecordInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error)
}

type Publisher struct {
	client       Client
	stream       string
	partitionKey string
}

func NewPublisher(client Client, stream, partitionKey string) *Publisher {
	if partitionKey == "" {
		partitionKey = DefaultPartitionKey
	}
	return &Publisher{client: client, stream: stream, partitionKey: partitionKey}
}

func NewClient(cfg aws.Config, endpoint string) *kinesis.Client {
	return kinesis.NewFromConfig(cfg, func(o *kinesis.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func (p *Publisher) Publish(ctx context.Context, record entity.OutputRecord) (entity.PublishReceipt, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return entity.PublishReceipt{}, fmt.Errorf("%w: marshal record: %v", entity.ErrPublish, err)
	}

	out, err := p.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(p.stream),
		Data:         data,
		PartitionKey: aws.String(p.partitionKey),
	})
	if err != nil {
		code := "unknown"
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code = apiErr.ErrorCode()
		}
		return entity.PublishReceipt{}, fmt.Errorf("%w: stream %s: %s: %w", entity.ErrPublish, p.stream, code, err)
	}

	return entity.PublishReceipt{
		Destination:    p.stream,
		ShardID:        aws.ToString(out.ShardId),
		SequenceNumber: aws.ToString(out.SequenceNumber),
	}, nil
}
