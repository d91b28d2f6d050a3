package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/metrics"
	"github.com/videoanalyzer/imageprocessor-service/internal/infra/rabbitmq"
	"github.com/videoanalyzer/imageprocessor-service/internal/usecase"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume frame envelopes from RabbitMQ until interrupted",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	fatalOnErr(err, "init")
	defer a.Close()

	log := a.log
	log.Info("starting imageprocessor worker")

	// Tracing (non-fatal if the collector is unavailable)
	_, stopTracing := a.startTracing(ctx)
	defer stopTracing()

	publisher, err := a.recordPublisher()
	fatalOnErr(err, "create record publisher")

	dlqPub, err := a.rabbit()
	fatalOnErr(err, "create dlq publisher")

	uc := a.useCase(publisher, rabbitmq.NewDLQPublisher(dlqPub, a.cfg.RabbitMQDLQ), usecase.ProcessBatchConfig{})

	metricsSrv := metrics.StartMetricsServer(ctx, a.cfg.MetricsPort, log)

	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         a.cfg.RabbitMQURL,
		Queue:       a.cfg.RabbitMQInputQueue,
		Exchange:    a.cfg.RabbitMQExchange,
		DLQ:         a.cfg.RabbitMQDLQ,
		OutputQueue: a.cfg.RabbitMQOutputQueue,
		RoutingKey:  a.cfg.RabbitMQRoutingKey,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("imageprocessor worker stopped")
	return nil
}
