package worker

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"orderpipeline/internal/dal/postgres"
	"orderpipeline/internal/dal/rabbitmq"
	orderrepo "orderpipeline/internal/dal/repositories/order/postgres"
	"orderpipeline/internal/otel"
	"orderpipeline/internal/service/services/processorsvc"
	"orderpipeline/internal/transport/consumer"
)

// App represents the order processor application.
type App struct {
	processorSvc   *processorsvc.ProcessorService
	consumerTransp *consumer.Consumer
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new worker application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("order-processor")
	rabbitMqClient := rabbitmq.MustNewClient()
	postgresClient := postgres.MustNewClient()

	orderRepository := orderrepo.NewOrderRepository(postgresClient.Pool())

	processorSvc := processorsvc.MustNewProcessorService(
		processorsvc.WithOrderRepository(orderRepository),
	)

	consumerTransp := consumer.NewConsumer(rabbitMqClient, processorSvc)

	return &App{
		processorSvc:   processorSvc,
		consumerTransp: consumerTransp,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown shuts down components sequentially: consumer, RabbitMQ,
// PostgreSQL and the trace provider. A message still unacked at this point
// is redelivered by the broker once its lock expires.
func (a *App) gracefulShutdown() {
	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider close error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
