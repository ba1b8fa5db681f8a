package api

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderpipeline/internal/dal/postgres"
	"orderpipeline/internal/dal/rabbitmq"
	orderrepo "orderpipeline/internal/dal/repositories/order/postgres"
	"orderpipeline/internal/otel"
	"orderpipeline/internal/service/services/ordersvc"
	httptransport "orderpipeline/internal/transport/http"
)

// App represents the API application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new API application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("order-api")
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	orderRepository := orderrepo.NewOrderRepository(postgresClient.Pool())

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithOrderRepository(orderRepository),
		ordersvc.WithPublisher(rabbitMqClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
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

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
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
