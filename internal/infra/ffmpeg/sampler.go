// Package ffmpeg samples still frames out of a video file so they can be
// wrapped into frame envelopes by the encode command.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var ErrNoFrames = errors.New("no frames extracted from video")

// Frame is one sampled image. Offset is seconds from the start of the video.
type Frame struct {
	Path   string
	Offset float64
	Count  int64
}

type Sampler struct {
	fps    int
	logger *zap.Logger
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewSampler(fps int, logger *zap.Logger) *Sampler {
	if fps <= 0 {
		fps = 1
	}
	return &Sampler{fps: fps, logger: logger, run: runCombined}
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Sample writes JPEG frames into outputDir at the configured rate and returns
// them in playback order.
func (s *Sampler) Sample(ctx context.Context, videoPath, outputDir string) ([]Frame, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}

	duration, err := s.Duration(ctx, videoPath)
	if err != nil {
		s.logger.Warn("could not get video duration", zap.Error(err))
	}

	pattern := filepath.Join(outputDir, "frame_%06d.jpg")
	output, err := s.run(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d", s.fps),
		"-y",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	paths, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(paths) == 0 {
		return nil, ErrNoFrames
	}
	sort.Strings(paths)

	frames := make([]Frame, 0, len(paths))
	for i, p := range paths {
		frames = append(frames, Frame{
			Path:   p,
			Offset: float64(i) / float64(s.fps),
			Count:  int64(i),
		})
	}

	s.logger.Info("frames sampled",
		zap.String("video", videoPath),
		zap.Int("count", len(frames)),
		zap.Int("fps", s.fps),
		zap.Float64("video_duration", duration),
	)
	return frames, nil
}

// Duration asks ffprobe for the container duration in seconds.
func (s *Sampler) Duration(ctx context.Context, videoPath string) (float64, error) {
	output, err := s.run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return d, nil
}
