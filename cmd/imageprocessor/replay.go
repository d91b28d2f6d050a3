package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/entity"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/port"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/awslambda"
	"github.com/videoanalyzer/imageprocessor-service/internal/usecase"
	"go.uber.org/zap"
)

var (
	replayEventFile string
	replayDryRun    bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a saved Kinesis Lambda event through the pipeline",
	Long: "Reads an event in the Lambda Kinesis trigger shape and processes it " +
		"exactly as an invocation would. With --dry-run the output records are " +
		"written to stdout instead of the configured transport.",
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayEventFile, "event", "", "path to the event JSON file")
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "write output records to stdout")
	_ = replayCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(replayCmd)
}

type replayResult struct {
	Index          int    `json:"index"`
	SequenceNumber string `json:"sequence_number,omitempty"`
	FrameID        string `json:"frame_id,omitempty"`
	FaceCount      int    `json:"face_count"`
	Kind           string `json:"error_kind,omitempty"`
	Error          string `json:"error,omitempty"`
}

type replaySummary struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []replayResult `json:"results"`
}

func runReplay(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(replayEventFile)
	if err != nil {
		return fmt.Errorf("read event file: %w", err)
	}
	var event awslambda.KinesisEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("parse event file: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var publisher port.RecordPublisher
	if replayDryRun {
		publisher = &writerPublisher{w: cmd.OutOrStdout()}
	} else if publisher, err = a.recordPublisher(); err != nil {
		return err
	}

	envelopes := awslambda.Envelopes(event)
	bar := progressbar.NewOptions(len(envelopes),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("replaying"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	uc := a.useCase(publisher, nil, usecase.ProcessBatchConfig{
		OnRecord: func(entity.RecordResult) { _ = bar.Add(1) },
	})
	summary := uc.Execute(ctx, envelopes)
	_ = bar.Finish()

	out := replaySummary{Total: summary.Total, Succeeded: summary.Succeeded, Failed: summary.Failed}
	for _, r := range summary.Results {
		res := replayResult{
			Index:          r.Index,
			SequenceNumber: r.SequenceNumber,
			FaceCount:      r.FaceCount,
			Kind:           string(r.Kind),
		}
		if r.FrameID != uuid.Nil {
			res.FrameID = r.FrameID.String()
		}
		if r.Err != nil {
			res.Error = r.Err.Error()
		}
		out.Results = append(out.Results, res)
	}

	enc := json.NewEncoder(cmd.ErrOrStderr())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if summary.Failed > 0 {
		a.log.Warn("replay finished with failures", zap.Int("failed", summary.Failed))
		return fmt.Errorf("%d of %d records failed", summary.Failed, summary.Total)
	}
	return nil
}

// writerPublisher emits one JSON document per line.
type writerPublisher struct {
	mu  sync.Mutex
	w   io.Writer
	seq int
}

func (p *writerPublisher) Publish(_ context.Context, record entity.OutputRecord) (entity.PublishReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payload, err := json.Marshal(record)
	if err != nil {
		return entity.PublishReceipt{}, fmt.Errorf("%w: marshal record: %w", entity.ErrPublish, err)
	}
	if _, err := fmt.Fprintf(p.w, "%s\n", payload); err != nil {
		return entity.PublishReceipt{}, fmt.Errorf("%w: %w", entity.ErrPublish, err)
	}
	p.seq++
	return entity.PublishReceipt{Destination: "stdout", SequenceNumber: fmt.Sprint(p.seq)}, nil
}
