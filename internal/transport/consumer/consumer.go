package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"orderpipeline/internal/dal/rabbitmq"
	"orderpipeline/internal/service/models/order"
)

// service represents the service layer interface.
type service interface {
	ProcessOrder(ctx context.Context, snapshot order.Order) error
}

// Consumer represents the RabbitMQ consumer transport. Deliveries are
// handled one at a time: the channel prefetch and the handler group are
// both limited to a single in-flight message.
type Consumer struct {
	client  *rabbitmq.Client
	service service
	queue   amqp.Queue
	stop    chan struct{}
	done    chan struct{}
}

// NewConsumer creates a new Consumer.
func NewConsumer(client *rabbitmq.Client, service service) *Consumer {
	queueName := viper.GetString("rabbitmq.queue")
	if queueName == "" {
		panic("rabbitmq.queue is not set in config")
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    false,
		AutoDelete: false,
		Exclusive:  false,
		NoWait:     false,
	})
	if err != nil {
		panic(err)
	}

	if err := client.Qos(1); err != nil {
		panic(err)
	}

	return &Consumer{
		client:  client,
		service: service,
		queue:   queue,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts consuming messages from RabbitMQ.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "order-processor"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:     c.queue.Name,
		Consumer:  consumerTag,
		AutoAck:   false,
		Exclusive: false,
		NoLocal:   false,
		NoWait:    false,
	})
	if err != nil {
		return err
	}

	// Broker-level errors are only logged, no corrective action.
	go func() {
		for amqpErr := range c.client.NotifyClose() {
			slog.Error("RabbitMQ channel error", "error", amqpErr)
		}
	}()

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	return c.handleDeliveries(ctx, msgs)
}

// handleDeliveries dispatches deliveries to the service with at most one
// message in flight.
func (c *Consumer) handleDeliveries(ctx context.Context, msgs <-chan amqp.Delivery) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)

	go func() {
		for {
			select {
			case <-c.stop:
				slog.Info("Stopping consumer")
				close(c.done)

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")
					close(c.done)

					return
				}

				g.Go(func() error {
					// Handler errors are not propagated to the group:
					// the failed message is already nacked for
					// redelivery and must not stop the consumer.
					_ = c.processMessage(gctx, msg)

					return nil
				})
			}
		}
	}()

	<-c.done

	return g.Wait()
}

// processMessage processes a single message from RabbitMQ. A message that
// cannot be handled is abandoned: it is nacked back onto the queue and
// redelivered without limit.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	slog.Info("Received message", "delivery_tag", msg.DeliveryTag)

	var snapshot order.Order
	if err := json.Unmarshal(msg.Body, &snapshot); err != nil {
		slog.Error("Failed to unmarshal order", "error", err)
		if err := msg.Nack(false, true); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	if err := c.service.ProcessOrder(ctx, snapshot); err != nil {
		slog.Error("Failed to process order", "error", err, "order_id", snapshot.ID)
		if err := msg.Nack(false, true); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return err
	}

	slog.Info("Message processed successfully", "order_id", snapshot.ID)

	return nil
}

// Shutdown gracefully shuts down the consumer.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	// Wait for processing to finish with timeout
	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
