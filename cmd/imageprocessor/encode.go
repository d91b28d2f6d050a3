package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/ffmpeg"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/framecodec"
	"github.com/videoanalyzer/imageprocessor-service/pkg/logger"
)

var (
	encodeImage       string
	encodeVideo       string
	encodeFPS         int
	encodeCaptureTime float64
	encodeFrameCount  int64
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Wrap an image, or frames sampled from a video, into frame envelopes",
	Long: "Prints one envelope per line. With --video, frames are sampled with ffmpeg " +
		"and their capture times are --capture-time plus the offset into the video.",
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeImage, "image", "", "path to a JPEG or PNG frame")
	encodeCmd.Flags().StringVar(&encodeVideo, "video", "", "path to a video to sample frames from")
	encodeCmd.Flags().IntVar(&encodeFPS, "fps", 1, "frames sampled per second of video")
	encodeCmd.Flags().Float64Var(&encodeCaptureTime, "capture-time", 0, "approximate capture time, seconds since epoch")
	encodeCmd.Flags().Int64Var(&encodeFrameCount, "frame-count", 0, "frame counter of the first frame")
	encodeCmd.MarkFlagsMutuallyExclusive("image", "video")
	encodeCmd.MarkFlagsOneRequired("image", "video")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, _ []string) error {
	codec := framecodec.New()
	out := cmd.OutOrStdout()

	if encodeImage != "" {
		img, err := os.ReadFile(encodeImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		env, err := codec.Encode(entity.FramePackage{
			ImageBytes:             img,
			ApproximateCaptureTime: encodeCaptureTime,
			FrameCount:             encodeFrameCount,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, env)
		return err
	}

	log, err := logger.New("warn")
	if err != nil {
		return err
	}
	defer log.Sync()

	dir, err := os.MkdirTemp("", "imageprocessor-frames-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	frames, err := ffmpeg.NewSampler(encodeFPS, log).Sample(cmd.Context(), encodeVideo, dir)
	if err != nil {
		return err
	}

	var errs []error
	for _, f := range frames {
		img, err := os.ReadFile(f.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", f.Path, err))
			continue
		}
		env, err := codec.Encode(entity.FramePackage{
			ImageBytes:             img,
			ApproximateCaptureTime: encodeCaptureTime + f.Offset,
			FrameCount:             encodeFrameCount + f.Count,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("encode %s: %w", f.Path, err))
			continue
		}
		if _, err := fmt.Fprintln(out, env); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
