package port

import (
	"context"

	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) (entity.DetectionResult, error)
}

type FrameDecoder interface {
	Decode(envelope string) (entity.FramePackage, error)
}
