package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/port"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProcessBatchUseCase struct {
	decoder   port.FrameDecoder
	localizer port.Localizer
	detector  port.FaceDetector
	publisher port.RecordPublisher
	reporter  port.FailureReporter
	logger    *zap.Logger
	now       func() time.Time
	newID     func() uuid.UUID
	onRecord  func(entity.RecordResult)
}

// ProcessBatchConfig holds optional hooks. Zero values fall back to the wall
// clock and random UUIDs.
type ProcessBatchConfig struct {
	Now      func() time.Time
	NewID    func() uuid.UUID
	OnRecord func(entity.RecordResult)
}

// NewProcessBatchUseCase wires the pipeline. reporter may be nil, in which
// case failures are only logged.
func NewProcessBatchUseCase(
	decoder port.FrameDecoder,
	localizer port.Localizer,
	detector port.FaceDetector,
	publisher port.RecordPublisher,
	reporter port.FailureReporter,
	logger *zap.Logger,
	cfg ProcessBatchConfig,
) *ProcessBatchUseCase {
	uc := &ProcessBatchUseCase{
		decoder:   decoder,
		localizer: localizer,
		detector:  detector,
		publisher: publisher,
		reporter:  reporter,
		logger:    logger,
		now:       cfg.Now,
		newID:     cfg.NewID,
		onRecord:  cfg.OnRecord,
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = uuid.New
	}
	return uc
}

// Execute processes envelopes strictly in order. A failing record never
// stops the batch; only context cancellation does, and the records left
// over are returned as canceled.
func (uc *ProcessBatchUseCase) Execute(ctx context.Context, envelopes []entity.Envelope) entity.BatchSummary {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessBatchUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(envelopes)))

	metrics.InFlightBatches.Inc()
	defer metrics.InFlightBatches.Dec()
	metrics.BatchSize.Observe(float64(len(envelopes)))

	summary := entity.BatchSummary{Results: make([]entity.RecordResult, 0, len(envelopes))}
	for _, env := range envelopes {
		var result entity.RecordResult
		if err := ctx.Err(); err != nil {
			result = entity.RecordResult{
				Index:          env.Index,
				SequenceNumber: env.SequenceNumber,
				Kind:           entity.ErrorKindCanceled,
				Err:            err,
			}
			metrics.RecordsProcessedTotal.WithLabelValues(string(entity.ErrorKindCanceled)).Inc()
		} else {
			result = uc.processRecord(ctx, env)
		}

		summary.Add(result)
		if uc.onRecord != nil {
			uc.onRecord(result)
		}
	}

	span.SetAttributes(
		attribute.Int("batch.succeeded", summary.Succeeded),
		attribute.Int("batch.failed", summary.Failed),
	)
	if summary.Failed > 0 {
		span.SetStatus(codes.Error, "batch had failed records")
		uc.logger.Warn("batch finished with failures",
			zap.Int("total", summary.Total),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
		)
	}
	uc.logger.Info("Successfully processed records",
		zap.Int("count", summary.Succeeded),
		zap.Int("total", summary.Total),
	)

	return summary
}

func (uc *ProcessBatchUseCase) processRecord(ctx context.Context, env entity.Envelope) entity.RecordResult {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "process_record")
	defer span.End()
	span.SetAttributes(
		attribute.Int("record.index", env.Index),
		attribute.String("record.sequence_number", env.SequenceNumber),
	)

	log := uc.logger.With(
		zap.Int("record_index", env.Index),
		zap.String("sequence_number", env.SequenceNumber),
	)
	result := entity.RecordResult{Index: env.Index, SequenceNumber: env.SequenceNumber}

	decStart := time.Now()
	pkg, err := uc.decoder.Decode(env.Data)
	metrics.StageDuration.WithLabelValues("decode").Observe(time.Since(decStart).Seconds())
	if err != nil {
		return uc.fail(ctx, span, result, env, err, "", log)
	}
	result.FrameCount = pkg.FrameCount

	now := uc.now()
	local := uc.localizer.In(now).Format(time.RFC3339Nano)
	span.SetAttributes(
		attribute.Int64("frame.count", pkg.FrameCount),
		attribute.String("frame.processed_local", local),
	)
	log = log.With(zap.Int64("frame_count", pkg.FrameCount), zap.String("processed_local", local))

	detStart := time.Now()
	ctxDet, spanDet := tracer.Start(ctx, "detect_faces")
	det, err := uc.detector.DetectFaces(ctxDet, pkg.ImageBytes)
	spanDet.End()
	metrics.StageDuration.WithLabelValues("detect").Observe(time.Since(detStart).Seconds())
	if err != nil {
		return uc.fail(ctx, span, result, env, err, local, log)
	}
	metrics.FacesDetectedTotal.Add(float64(len(det.FaceDetails)))

	record := Assemble(pkg, det, now, uc.newID())
	result.FrameID = record.FrameID
	result.FaceCount = len(record.RekogFaceDetails)

	pubStart := time.Now()
	ctxPub, spanPub := tracer.Start(ctx, "publish_record")
	receipt, err := uc.publisher.Publish(ctxPub, record)
	spanPub.End()
	metrics.StageDuration.WithLabelValues("publish").Observe(time.Since(pubStart).Seconds())
	if err != nil {
		return uc.fail(ctx, span, result, env, err, local, log)
	}
	result.Receipt = receipt

	metrics.RecordsProcessedTotal.WithLabelValues("success").Inc()
	log.Info("frame processed",
		zap.String("frame_id", record.FrameID.String()),
		zap.Int("faces", result.FaceCount),
		zap.String("orientation", record.RekogOrientationCorrection),
		zap.String("shard_id", receipt.ShardID),
	)
	return result
}

func (uc *ProcessBatchUseCase) fail(
	ctx context.Context,
	span trace.Span,
	result entity.RecordResult,
	env entity.Envelope,
	err error,
	processedLocal string,
	log *zap.Logger,
) entity.RecordResult {
	result.Err = err
	result.Kind = entity.KindOf(err)
	throttled := errors.Is(err, entity.ErrThrottled)

	span.RecordError(err)
	span.SetStatus(codes.Error, string(result.Kind))
	span.SetAttributes(attribute.Bool("record.throttled", throttled))
	metrics.RecordsProcessedTotal.WithLabelValues(string(result.Kind)).Inc()
	log.Error("record failed",
		zap.String("error_kind", string(result.Kind)),
		zap.Bool("throttled", throttled),
		zap.Error(err),
	)

	// Interrupted records go back to the transport, not to the reporter.
	if uc.reporter != nil && result.Kind != entity.ErrorKindCanceled {
		report := port.FailureReport{
			Envelope:       env,
			Kind:           result.Kind,
			Err:            err,
			ProcessedLocal: processedLocal,
		}
		if rerr := uc.reporter.ReportFailure(ctx, report); rerr != nil {
			result.ReportErr = rerr
			log.Error("failed to report record failure", zap.Error(rerr))
		}
	}
	return result
}
