package rekognition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"go.uber.org/zap"
)

// Client is the subset of the Rekognition API used here.
type Client interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

type DetectorConfig struct {
	Attributes       []string
	ExcludedFeatures []string
	ApplyExclusions  bool
}

type Detector struct {
	client     Client
	attributes []types.Attribute
	excluded   []string
	apply      bool
	logger     *zap.Logger
}

func NewDetector(client Client, cfg DetectorConfig, logger *zap.Logger) *Detector {
	attrs := make([]types.Attribute, 0, len(cfg.Attributes))
	for _, a := range cfg.Attributes {
		attrs = append(attrs, types.Attribute(a))
	}
	if len(attrs) == 0 {
		attrs = []types.Attribute{types.AttributeAll}
	}
	return &Detector{
		client:     client,
		attributes: attrs,
		excluded:   cfg.ExcludedFeatures,
		apply:      cfg.ApplyExclusions,
		logger:     logger,
	}
}

func (d *Detector) DetectFaces(ctx context.Context, image []byte) (entity.DetectionResult, error) {
	out, err := d.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: d.attributes,
	})
	if err != nil {
		return entity.DetectionResult{}, wrapServiceError(err)
	}

	details := make([]entity.FaceDetail, 0, len(out.FaceDetails))
	for i := range out.FaceDetails {
		fd, err := toFaceDetail(out.FaceDetails[i])
		if err != nil {
			return entity.DetectionResult{}, fmt.Errorf("%w: convert face detail: %v", entity.ErrDetection, err)
		}
		if d.apply {
			for _, name := range d.excluded {
				delete(fd, name)
			}
		}
		details = append(details, fd)
	}

	d.logger.Debug("faces detected",
		zap.Int("faces", len(details)),
		zap.String("orientation", string(out.OrientationCorrection)),
	)

	return entity.DetectionResult{
		FaceDetails:           details,
		OrientationCorrection: string(out.OrientationCorrection),
	}, nil
}

// toFaceDetail renders the SDK struct the way the service returns it on the
// wire: PascalCase keys, absent members omitted.
func toFaceDetail(fd types.FaceDetail) (entity.FaceDetail, error) {
	raw, err := json.Marshal(fd)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	pruneNulls(m)
	return entity.FaceDetail(m), nil
}

func pruneNulls(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			pruneNulls(val)
		}
	case []any:
		for _, val := range t {
			pruneNulls(val)
		}
	}
}

func wrapServiceError(err error) error {
	code := "unknown"
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	if IsThrottled(err) {
		return fmt.Errorf("%w: %w: %s: %w", entity.ErrDetection, entity.ErrThrottled, code, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrDetection, code, err)
}

// IsThrottled reports whether err came from a quota or throttling rejection.
func IsThrottled(err error) bool {
	var throttling *types.ThrottlingException
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.LimitExceededException
	return errors.As(err, &throttling) || errors.As(err, &throughput) || errors.As(err, &limit)
}
