package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
	"orderpipeline/internal/service/models/order"
)

// ErrIDMismatch is returned when the id in a replace request body differs
// from the id of the targeted resource.
var ErrIDMismatch = errors.New("order id mismatch")

// publisher is an interface for the queue broker.
type publisher interface {
	Publish(queue string, body []byte) error
}

// OrderService is a service for managing orders.
type OrderService struct {
	orderRepo iorderrepo.IOrderRepository
	publisher publisher
	queueName string
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.queueName == "" {
		s.queueName = viper.GetString("rabbitmq.queue")
	}
	if s.queueName == "" {
		panic("rabbitmq.queue is not set in config")
	}

	return s
}

// WithOrderRepository sets the order repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(orderRepo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = orderRepo
	}
}

// WithPublisher sets the queue publisher for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p publisher) option {
	return func(s *OrderService) {
		s.publisher = p
	}
}

// WithQueueName sets the queue the service publishes created orders to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithQueueName(name string) option {
	return func(s *OrderService) {
		s.queueName = name
	}
}

// List retrieves all orders.
func (s *OrderService) List(ctx context.Context) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.List")
	defer span.End()

	return s.orderRepo.List(ctx)
}

// Get retrieves a single order by id.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.Get")
	defer span.End()

	return s.orderRepo.Get(ctx, id)
}

// Create persists a new order with a generated id and publishes its
// snapshot to the queue. The database write is not rolled back when the
// publish fails: the caller gets the error and the order stays Pending
// with no queue message, matching the behavior of the original system.
func (s *OrderService) Create(ctx context.Context, o order.Order) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.Create")
	defer span.End()

	o.ID = uuid.New()
	o.Status = order.StatusPending
	o.CreatedAt = time.Now().UTC()

	if err := s.orderRepo.Insert(ctx, o); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order for publishing: %w", err)
	}

	if err := s.publisher.Publish(s.queueName, payload); err != nil {
		return nil, fmt.Errorf("failed to publish order %s: %w", o.ID, err)
	}

	slog.Info("Order created and queued", "order_id", o.ID, "queue", s.queueName)

	return &o, nil
}

// Replace overwrites all fields of the stored order.
func (s *OrderService) Replace(ctx context.Context, id uuid.UUID, o order.Order) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.Replace")
	defer span.End()

	if id != o.ID {
		return ErrIDMismatch
	}

	found, err := s.orderRepo.Update(ctx, o)
	if err != nil {
		return err
	}
	if !found {
		return iorderrepo.ErrOrderNotFound
	}

	return nil
}

// Delete removes the order.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.Delete")
	defer span.End()

	found, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return iorderrepo.ErrOrderNotFound
	}

	return nil
}
