package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/videoanalyzer/imageprocessor-service/internal/domain/port"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/config"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/framecodec"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/kinesis"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/rabbitmq"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/rekognition"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/timeconv"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/tracing"
	"github.com/videoanalyzer/imageprocessor-service/internal/usecase"
	"github.com/videoanalyzer/imageprocessor-service/pkg/logger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// app holds everything built once per process: configuration, clients
// and the logger. Nothing here is reloaded per batch.
type app struct {
	cfg       *config.Config
	params    *config.Params
	log       *zap.Logger
	converter *timeconv.Converter
	detector  port.FaceDetector
	awsCfg    aws.Config

	rmqConn *amqp.Connection
	rmqPub  *rabbitmq.Publisher
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	params, err := config.LoadParams(cfg.ParamsFile)
	if err != nil {
		return nil, err
	}

	converter, err := timeconv.New(params.Timezone)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	detector := rekognition.NewDetector(
		rekognition.NewClient(awsCfg, cfg.AWSEndpoint),
		rekognition.DetectorConfig{
			Attributes:       params.RekogAttributes,
			ExcludedFeatures: params.RekogFeaturesBlacklist,
			ApplyExclusions:  params.ApplyFeaturesBlacklist,
		},
		log,
	)

	a := &app{
		cfg:       cfg,
		params:    params,
		log:       log,
		converter: converter,
		detector:  detector,
		awsCfg:    awsCfg,
	}

	log.Info("configuration loaded",
		zap.String("params_file", cfg.ParamsFile),
		zap.String("timezone", params.Timezone),
		zap.String("output_transport", cfg.OutputTransport),
		zap.String("output_stream", params.OutputKinesisStream),
		zap.Strings("rekog_attributes", params.RekogAttributes),
		zap.Bool("apply_features_blacklist", params.ApplyFeaturesBlacklist),
	)

	return a, nil
}

// startTracing installs the OTLP tracer provider when an endpoint is
// configured. It never fails startup: the provider is nil when tracing is
// off, and the returned func shuts it down.
func (a *app) startTracing(ctx context.Context) (*sdktrace.TracerProvider, func()) {
	if a.cfg.JaegerEndpoint == "" {
		return nil, func() {}
	}
	tp, err := tracing.InitTracer(ctx, a.cfg.JaegerEndpoint)
	if err != nil {
		a.log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		return nil, func() {}
	}
	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			a.log.Warn("tracer shutdown", zap.Error(err))
		}
	}
}

// rabbit dials RabbitMQ on first use.
func (a *app) rabbit() (*rabbitmq.Publisher, error) {
	if a.rmqPub != nil {
		return a.rmqPub, nil
	}
	conn, err := amqp.Dial(a.cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq for publisher: %w", err)
	}
	pub, err := rabbitmq.NewPublisher(conn, a.cfg.RabbitMQExchange)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create rabbitmq publisher: %w", err)
	}
	a.rmqConn, a.rmqPub = conn, pub
	return pub, nil
}

func (a *app) recordPublisher() (port.RecordPublisher, error) {
	switch a.cfg.OutputTransport {
	case config.TransportRabbitMQ:
		pub, err := a.rabbit()
		if err != nil {
			return nil, err
		}
		return rabbitmq.NewRecordPublisher(pub, a.cfg.RabbitMQRoutingKey, a.params.PartitionKey), nil
	default:
		client := kinesis.NewClient(a.awsCfg, a.cfg.AWSEndpoint)
		return kinesis.NewPublisher(client, a.params.OutputKinesisStream, a.params.PartitionKey), nil
	}
}

func (a *app) useCase(publisher port.RecordPublisher, reporter port.FailureReporter, cfg usecase.ProcessBatchConfig) *usecase.ProcessBatchUseCase {
	return usecase.NewProcessBatchUseCase(
		framecodec.New(),
		a.converter,
		a.detector,
		publisher,
		reporter,
		a.log,
		cfg,
	)
}

func (a *app) Close() {
	if a.rmqPub != nil {
		a.rmqPub.Close()
	}
	if a.rmqConn != nil {
		a.rmqConn.Close()
	}
	a.log.Sync()
}
