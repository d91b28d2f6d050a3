package entity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDecode    = errors.New("decode frame package")
	ErrDetection = errors.New("detection service")
	ErrPublish   = errors.New("publish record")

	// ErrThrottled accompanies ErrDetection when the service rejected the
	// call for quota or rate reasons.
	ErrThrottled = errors.New("throttled")
)

type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindDecode    ErrorKind = "decode"
	ErrorKindDetection ErrorKind = "detection"
	ErrorKindPublish   ErrorKind = "publish"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindUnknown   ErrorKind = "unknown"
)

// KindOf classifies a per-record error. Cancellation wins over the stage
// that observed it, so an interrupted record is retried instead of parked.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCanceled
	case errors.Is(err, ErrDecode):
		return ErrorKindDecode
	case errors.Is(err, ErrDetection):
		return ErrorKindDetection
	case errors.Is(err, ErrPublish):
		return ErrorKindPublish
	default:
		return ErrorKindUnknown
	}
}

// RecordResult is the outcome of one envelope.
type RecordResult struct {
	Index          int
	SequenceNumber string
	FrameID        uuid.UUID
	FrameCount     int64
	FaceCount      int
	Receipt        PublishReceipt
	Kind           ErrorKind
	Err            error
	// ReportErr is set when the failure could not be handed to the reporter,
	// so the record is neither processed nor parked anywhere.
	ReportErr error
}

func (r RecordResult) OK() bool {
	return r.Err == nil
}

// BatchSummary aggregates the results of one batch, in input order.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []RecordResult
}

func (s *BatchSummary) Add(r RecordResult) {
	s.Total++
	if r.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Failures returns the failed results in input order.
func (s BatchSummary) Failures() []RecordResult {
	var out []RecordResult
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
