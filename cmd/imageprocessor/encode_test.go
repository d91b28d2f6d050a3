package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/framecodec"
)

func TestEncodeImage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "frame.jpg")
	require.NoError(t, os.WriteFile(img, []byte{0xff, 0xd8, 0xff, 0xe0}, 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"encode", "--image", img, "--capture-time", "1507150256.5", "--frame-count", "42"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		encodeImage, encodeCaptureTime, encodeFrameCount = "", 0, 0
	})
	require.NoError(t, rootCmd.Execute())

	pkg, err := framecodec.New().Decode(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, pkg.ImageBytes)
	assert.Equal(t, 1507150256.5, pkg.ApproximateCaptureTime)
	assert.Equal(t, int64(42), pkg.FrameCount)
}

func TestWriterPublisher(t *testing.T) {
	var out bytes.Buffer
	p := &writerPublisher{w: &out}

	rec := entity.OutputRecord{
		FrameID:                    uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		ProcessedTimestamp:         decimal.New(time.Unix(1700000000, 0).UnixNano(), -9),
		ApproxCaptureTimestamp:     decimal.NewFromFloat(1699999999.25),
		RekogOrientationCorrection: entity.DefaultOrientationCorrection,
	}
	receipt, err := p.Publish(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "stdout", receipt.Destination)
	assert.Equal(t, "1", receipt.SequenceNumber)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", got["frame_id"])
}
