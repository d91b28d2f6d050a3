// Package awslambda adapts the Kinesis-triggered Lambda invocation to the
// batch use case and reports failed records through partial batch responses.
package awslambda

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"go.uber.org/zap"
)

// KinesisEvent mirrors events.KinesisEvent but keeps record data as the raw
// base64 text, so a malformed record fails on its own instead of failing the
// unmarshal of the whole event.
type KinesisEvent struct {
	Records []KinesisEventRecord `json:"Records"`
}

type KinesisEventRecord struct {
	AwsRegion      string        `json:"awsRegion"`
	EventID        string        `json:"eventID"`
	EventName      string        `json:"eventName"`
	EventSource    string        `json:"eventSource"`
	EventSourceArn string        `json:"eventSourceARN"`
	Kinesis        KinesisRecord `json:"kinesis"`
}

type KinesisRecord struct {
	ApproximateArrivalTimestamp events.SecondsEpochTime `json:"approximateArrivalTimestamp"`
	Data                        string                  `json:"data"`
	PartitionKey                string                  `json:"partitionKey"`
	SequenceNumber              string                  `json:"sequenceNumber"`
}

type BatchProcessor interface {
	Execute(ctx context.Context, envelopes []entity.Envelope) entity.BatchSummary
}

type Handler struct {
	processor      BatchProcessor
	reportFailures bool
	logger         *zap.Logger
}

// NewHandler builds the Lambda handler. With reportFailures set, failed
// sequence numbers are returned as batch item failures and Lambda redelivers
// from the first of them; otherwise failures are only logged and the batch
// is checkpointed.
func NewHandler(processor BatchProcessor, reportFailures bool, logger *zap.Logger) *Handler {
	return &Handler{processor: processor, reportFailures: reportFailures, logger: logger}
}

func Envelopes(event KinesisEvent) []entity.Envelope {
	out := make([]entity.Envelope, 0, len(event.Records))
	for i, r := range event.Records {
		out = append(out, entity.Envelope{
			Index:          i,
			SequenceNumber: r.Kinesis.SequenceNumber,
			PartitionKey:   r.Kinesis.PartitionKey,
			Data:           r.Kinesis.Data,
		})
	}
	return out
}

func (h *Handler) Handle(ctx context.Context, event KinesisEvent) (events.KinesisEventResponse, error) {
	log := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With(zap.String("aws_request_id", lc.AwsRequestID))
	}

	summary := h.processor.Execute(ctx, Envelopes(event))

	resp := events.KinesisEventResponse{BatchItemFailures: []events.KinesisBatchItemFailure{}}
	failures := summary.Failures()
	if len(failures) == 0 {
		return resp, nil
	}

	if !h.reportFailures {
		log.Warn("failed records dropped, partial batch responses disabled", zap.Int("failed", len(failures)))
		return resp, nil
	}
	for _, f := range failures {
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.KinesisBatchItemFailure{
			ItemIdentifier: f.SequenceNumber,
		})
	}
	log.Info("reporting batch item failures",
		zap.Int("failed", len(failures)),
		zap.String("first_sequence_number", failures[0].SequenceNumber),
	)
	return resp, nil
}
