package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

// Assemble builds the output record for one frame. Timestamps are carried as
// decimals so the serialized value is not subject to float formatting.
func Assemble(pkg entity.FramePackage, det entity.DetectionResult, now time.Time, frameID uuid.UUID) entity.OutputRecord {
	details := det.FaceDetails
	if details == nil {
		details = []entity.FaceDetail{}
	}

	orientation := det.OrientationCorrection
	if orientation == "" {
		orientation = entity.DefaultOrientationCorrection
	}

	return entity.OutputRecord{
		FrameID:                    frameID,
		ProcessedTimestamp:         decimal.New(now.UnixNano(), -9),
		ApproxCaptureTimestamp:     decimal.NewFromFloat(pkg.ApproximateCaptureTime),
		RekogFaceDetails:           details,
		RekogOrientationCorrection: orientation,
	}
}
