package usecase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

func TestAssemble(t *testing.T) {
	id := uuid.New()
	now := time.Unix(1507150257, 500_000_000)
	pkg := entity.FramePackage{ApproximateCaptureTime: 1507150256.125, FrameCount: 3}

	t.Run("default orientation", func(t *testing.T) {
		rec := Assemble(pkg, entity.DetectionResult{}, now, id)
		assert.Equal(t, id, rec.FrameID)
		assert.Equal(t, "ROTATE_0", rec.RekogOrientationCorrection)
		assert.NotNil(t, rec.RekogFaceDetails)
		assert.Empty(t, rec.RekogFaceDetails)
		assert.Equal(t, "1507150257.5", rec.ProcessedTimestamp.String())
		assert.Equal(t, "1507150256.125", rec.ApproxCaptureTimestamp.String())
	})

	t.Run("orientation passed through", func(t *testing.T) {
		det := entity.DetectionResult{
			FaceDetails:           []entity.FaceDetail{{"Confidence": 99.0}},
			OrientationCorrection: "ROTATE_270",
		}
		rec := Assemble(pkg, det, now, id)
		assert.Equal(t, "ROTATE_270", rec.RekogOrientationCorrection)
		assert.Equal(t, det.FaceDetails, rec.RekogFaceDetails)
	})

	t.Run("capture time value preserved", func(t *testing.T) {
		for _, ts := range []float64{0, 1.1, 1700000000.123456, 1507150256} {
			rec := Assemble(entity.FramePackage{ApproximateCaptureTime: ts}, entity.DetectionResult{}, now, id)
			got, _ := rec.ApproxCaptureTimestamp.Float64()
			assert.Equal(t, ts, got)
		}
	})
}
