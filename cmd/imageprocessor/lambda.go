package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/awslambda"
	"github.com/videoanalyzer/imageprocessor-service/internal/usecase"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve the AWS Lambda runtime API for a Kinesis trigger",
	RunE:  runLambda,
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}

// runLambda performs the cold start once: configuration and clients are
// built here and reused by every invocation of the handler.
func runLambda(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	fatalOnErr(err, "init")
	defer a.Close()

	tp, stopTracing := a.startTracing(ctx)
	defer stopTracing()

	publisher, err := a.recordPublisher()
	fatalOnErr(err, "create record publisher")

	uc := a.useCase(publisher, nil, usecase.ProcessBatchConfig{})
	h := awslambda.NewHandler(uc, a.cfg.ReportBatchItemFailures, a.log)

	handle := h.Handle
	if tp != nil {
		handle = flushAfter(tp, a.log, handle)
	}

	a.log.Info("starting lambda handler", zap.Bool("report_batch_item_failures", a.cfg.ReportBatchItemFailures))
	lambda.Start(handle)
	return nil
}

type kinesisHandler func(context.Context, awslambda.KinesisEvent) (events.KinesisEventResponse, error)

// flushAfter exports buffered spans before each response. The execution
// environment may be frozen between invocations and never reach exit.
func flushAfter(tp *sdktrace.TracerProvider, log *zap.Logger, next kinesisHandler) kinesisHandler {
	return func(ctx context.Context, event awslambda.KinesisEvent) (events.KinesisEventResponse, error) {
		defer func() {
			if err := tp.ForceFlush(ctx); err != nil {
				log.Warn("flush spans", zap.Error(err))
			}
		}()
		return next(ctx, event)
	}
}
