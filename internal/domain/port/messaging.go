package port

import (
	"context"

	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

type RecordPublisher interface {
	Publish(ctx context.Context, record entity.OutputRecord) (entity.PublishReceipt, error)
}

// FailureReport carries enough context to replay a failed envelope.
type FailureReport struct {
	Envelope       entity.Envelope
	Kind           entity.ErrorKind
	Err            error
	ProcessedLocal string
}

type FailureReporter interface {
	ReportFailure(ctx context.Context, report FailureReport) error
}
