package rekognition

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// NewClient builds the SDK client; endpoint overrides the resolved service
// endpoint when non-empty (LocalStack and similar).
func NewClient(cfg aws.Config, endpoint string) *rekognition.Client {
	return rekognition.NewFromConfig(cfg, func(o *rekognition.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
