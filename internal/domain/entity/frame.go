package entity

// FrameSchemaVersion is the only frame package schema this stage understands.
const FrameSchemaVersion = 1

// Envelope is one record as delivered by the ingestion transport, before decoding.
type Envelope struct {
	Index          int
	SequenceNumber string
	PartitionKey   string
	Data           string
}

// FramePackage is the decoded unit produced by the frame fetcher.
type FramePackage struct {
	SchemaVersion          int     `json:"schema_version" validate:"eq=1"`
	ImageBytes             []byte  `json:"ImageBytes" validate:"required,min=1"`
	ApproximateCaptureTime float64 `json:"ApproximateCaptureTime" validate:"gte=0"`
	FrameCount             int64   `json:"FrameCount" validate:"gte=0"`
}
