package kinesis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
)

type fakeClient struct {
	inputs []*kinesis.PutRecordInput
	err    error
}

func (f *fakeClient) PutRecord(_ context.Context, in *kinesis.PutRecordInput, _ ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &kinesis.PutRecordOutput{
		ShardId:        aws.String("shardId-000000000000"),
		SequenceNumber: aws.String("49590338271490256608559692538361571095921575989136588898"),
	}, nil
}

func sampleRecord() entity.OutputRecord {
	return entity.OutputRecord{
		FrameID:                    uuid.MustParse("8a5f0e3e-6c1c-4f8e-9a53-0bb1f1f1c0de"),
		ProcessedTimestamp:         decimal.RequireFromString("1507150257.5"),
		ApproxCaptureTimestamp:     decimal.NewFromFloat(1507150256.125),
		RekogFaceDetails:           []entity.FaceDetail{},
		RekogOrientationCorrection: "ROTATE_90",
	}
}

func TestPublish_PutRecordShape(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "frames-out", "")

	receipt, err := p.Publish(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "frames-out", receipt.Destination)
	assert.Equal(t, "shardId-000000000000", receipt.ShardID)
	assert.NotEmpty(t, receipt.SequenceNumber)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "frames-out", aws.ToString(in.StreamName))
	assert.Equal(t, DefaultPartitionKey, aws.ToString(in.PartitionKey))

	var got map[string]any
	require.NoError(t, json.Unmarshal(in.Data, &got))
	assert.Equal(t, map[string]any{
		"frame_id":                     "8a5f0e3e-6c1c-4f8e-9a53-0bb1f1f1c0de",
		"processed_timestamp":          "1507150257.5",
		"approx_capture_timestamp":     "1507150256.125",
		"rekog_face_details":           []any{},
		"rekog_orientation_correction": "ROTATE_90",
	}, got)
}

func TestPublish_SamePartitionKeyForEveryRecord(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "frames-out", "")

	for i := 0; i < 3; i++ {
		_, err := p.Publish(context.Background(), sampleRecord())
		require.NoError(t, err)
	}
	for _, in := range client.inputs {
		assert.Equal(t, "partitionkey", aws.ToString(in.PartitionKey))
	}
}

func TestPublish_TransportError(t *testing.T) {
	client := &fakeClient{err: &types.ProvisionedThroughputExceededException{Message: aws.String("rate exceeded")}}
	p := NewPublisher(client, "frames-out", "custom")

	_, err := p.Publish(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrPublish)
	assert.Contains(t, err.Error(), "ProvisionedThroughputExceededException")
	assert.Equal(t, "custom", aws.ToString(client.inputs[0].PartitionKey))
}
