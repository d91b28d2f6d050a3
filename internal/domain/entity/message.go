package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultOrientationCorrection is used when the detector does not report one.
const DefaultOrientationCorrection = "ROTATE_0"

// FaceDetail is the JSON object of a single detected face, as returned by the detector.
type FaceDetail map[string]any

type DetectionResult struct {
	FaceDetails           []FaceDetail
	OrientationCorrection string
}

// OutputRecord is the enriched message published to the output stream.
type OutputRecord struct {
	FrameID                    uuid.UUID       `json:"frame_id"`
	ProcessedTimestamp         decimal.Decimal `json:"processed_timestamp"`
	ApproxCaptureTimestamp     decimal.Decimal `json:"approx_capture_timestamp"`
	RekogFaceDetails           []FaceDetail    `json:"rekog_face_details"`
	RekogOrientationCorrection string          `json:"rekog_orientation_correction"`
}

// PublishReceipt acknowledges delivery of one OutputRecord.
type PublishReceipt struct {
	Destination    string
	ShardID        string
	SequenceNumber string
}
