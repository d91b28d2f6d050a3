// Package framecodec reads and writes the frame package envelope exchanged
// between the frame producer and this stage.
//
// An envelope is base64 text wrapping a JSON document:
//
//	{"schema_version":1,"ImageBytes":"<base64>","ApproximateCaptureTime":1507150256.12,"FrameCount":42}
//
// Producers and consumers must agree on schema_version; unknown versions are rejected.
package framecodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

// wirePackage is the decode-side view of entity.FramePackage. Pointers let
// validation tell an omitted field apart from an explicit zero.
type wirePackage struct {
	SchemaVersion          *int     `json:"schema_version" validate:"required"`
	ImageBytes             []byte   `json:"ImageBytes" validate:"required,min=1"`
	ApproximateCaptureTime *float64 `json:"ApproximateCaptureTime" validate:"required,gte=0"`
	FrameCount             *int64   `json:"FrameCount" validate:"required,gte=0"`
}

type Codec struct {
	validate *validator.Validate
}

func New() *Codec {
	return &Codec{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (c *Codec) Decode(envelope string) (entity.FramePackage, error) {
	var pkg entity.FramePackage

	raw, err := decodeBase64(envelope)
	if err != nil {
		return pkg, fmt.Errorf("%w: base64: %v", entity.ErrDecode, err)
	}

	var wire wirePackage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return pkg, fmt.Errorf("%w: payload: %v", entity.ErrDecode, err)
	}

	if wire.SchemaVersion != nil && *wire.SchemaVersion != entity.FrameSchemaVersion {
		return pkg, fmt.Errorf("%w: unsupported schema_version %d", entity.ErrDecode, *wire.SchemaVersion)
	}
	if err := c.validate.Struct(wire); err != nil {
		return pkg, fmt.Errorf("%w: invalid frame package: %v", entity.ErrDecode, err)
	}

	return entity.FramePackage{
		SchemaVersion:          *wire.SchemaVersion,
		ImageBytes:             wire.ImageBytes,
		ApproximateCaptureTime: *wire.ApproximateCaptureTime,
		FrameCount:             *wire.FrameCount,
	}, nil
}

// Encode is the producer side of Decode. A zero SchemaVersion is filled in.
func (c *Codec) Encode(pkg entity.FramePackage) (string, error) {
	if pkg.SchemaVersion == 0 {
		pkg.SchemaVersion = entity.FrameSchemaVersion
	}
	if err := c.validate.Struct(pkg); err != nil {
		return "", fmt.Errorf("invalid frame package: %w", err)
	}
	data, err := json.Marshal(pkg)
	if err != nil {
		return "", fmt.Errorf("marshal frame package: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty envelope")
	}
	if len(s)%4 != 0 && !strings.HasSuffix(s, "=") {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.StdEncoding.DecodeString(s)
}
