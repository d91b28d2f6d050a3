package rekognition

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"go.uber.org/zap"
)

type fakeClient struct {
	input *rekognition.DetectFacesInput
	out   *rekognition.DetectFacesOutput
	err   error
}

func (f *fakeClient) DetectFaces(_ context.Context, in *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	f.input = in
	return f.out, f.err
}

func sampleOutput() *rekognition.DetectFacesOutput {
	return &rekognition.DetectFacesOutput{
		FaceDetails: []types.FaceDetail{{
			Confidence: aws.Float32(99.5),
			BoundingBox: &types.BoundingBox{
				Height: aws.Float32(0.25),
				Left:   aws.Float32(0.5),
				Top:    aws.Float32(0.125),
				Width:  aws.Float32(0.25),
			},
			Landmarks: []types.Landmark{{
				Type: types.LandmarkTypeEyeLeft,
				X:    aws.Float32(0.5),
				Y:    aws.Float32(0.5),
			}},
		}},
		OrientationCorrection: types.OrientationCorrectionRotate90,
	}
}

func TestDetectFaces_RequestsAllAttributes(t *testing.T) {
	client := &fakeClient{out: sampleOutput()}
	d := NewDetector(client, DetectorConfig{}, zap.NewNop())

	image := []byte{1, 2, 3}
	res, err := d.DetectFaces(context.Background(), image)
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, image, client.input.Image.Bytes)
	assert.Equal(t, []types.Attribute{types.AttributeAll}, client.input.Attributes)

	assert.Equal(t, "ROTATE_90", res.OrientationCorrection)
	require.Len(t, res.FaceDetails, 1)
	fd := res.FaceDetails[0]
	assert.Equal(t, 99.5, fd["Confidence"])
	assert.Contains(t, fd, "BoundingBox")
	assert.Contains(t, fd, "Landmarks")
	assert.NotContains(t, fd, "AgeRange", "absent members are omitted")
	assert.NotContains(t, fd, "Emotions")
}

func TestDetectFaces_PassThroughByDefault(t *testing.T) {
	client := &fakeClient{out: sampleOutput()}
	d := NewDetector(client, DetectorConfig{
		Attributes:       []string{"ALL"},
		ExcludedFeatures: []string{"Landmarks", "BoundingBox", "Confidence"},
	}, zap.NewNop())

	res, err := d.DetectFaces(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Contains(t, res.FaceDetails[0], "Landmarks")
	assert.Contains(t, res.FaceDetails[0], "Confidence")
}

func TestDetectFaces_AppliesExclusions(t *testing.T) {
	client := &fakeClient{out: sampleOutput()}
	d := NewDetector(client, DetectorConfig{
		Attributes:       []string{"ALL"},
		ExcludedFeatures: []string{"Landmarks", "BoundingBox", "Confidence"},
		ApplyExclusions:  true,
	}, zap.NewNop())

	res, err := d.DetectFaces(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Empty(t, res.FaceDetails[0])
}

func TestDetectFaces_NoOrientation(t *testing.T) {
	client := &fakeClient{out: &rekognition.DetectFacesOutput{}}
	d := NewDetector(client, DetectorConfig{}, zap.NewNop())

	res, err := d.DetectFaces(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Empty(t, res.OrientationCorrection)
	assert.NotNil(t, res.FaceDetails)
	assert.Empty(t, res.FaceDetails)
}

func TestDetectFaces_ServiceError(t *testing.T) {
	client := &fakeClient{err: &types.ThrottlingException{Message: aws.String("slow down")}}
	d := NewDetector(client, DetectorConfig{}, zap.NewNop())

	_, err := d.DetectFaces(context.Background(), []byte{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDetection)
	assert.Contains(t, err.Error(), "ThrottlingException")
	assert.ErrorIs(t, err, entity.ErrThrottled)
	assert.True(t, IsThrottled(err))
	assert.False(t, IsThrottled(errors.New("boom")))
}
