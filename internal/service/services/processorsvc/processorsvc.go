package processorsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
	"orderpipeline/internal/service/models/order"
)

const defaultDelaySeconds = 5

// ProcessorService advances an order through its lifecycle when its
// creation message is consumed from the queue.
type ProcessorService struct {
	orderRepo iorderrepo.IOrderRepository
	delay     time.Duration
}

// option is a function that configures the ProcessorService.
type option func(*ProcessorService)

// MustNewProcessorService creates a new ProcessorService.
func MustNewProcessorService(opts ...option) *ProcessorService {
	s := &ProcessorService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.delay == 0 {
		delaySeconds := viper.GetInt("processor.delay_seconds")
		if delaySeconds == 0 {
			delaySeconds = defaultDelaySeconds
		}
		s.delay = time.Duration(delaySeconds) * time.Second
	}

	return s
}

// WithOrderRepository sets the order repository for the ProcessorService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(orderRepo iorderrepo.IOrderRepository) option {
	return func(s *ProcessorService) {
		s.orderRepo = orderRepo
	}
}

// WithDelay overrides the simulated processing delay.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDelay(delay time.Duration) option {
	return func(s *ProcessorService) {
		s.delay = delay
	}
}

// ProcessOrder runs the two-phase status transition for the order named by
// the snapshot. Only the snapshot's id is trusted; the current record is
// loaded from the store. Both writes are compare-and-set guarded, so a
// redelivered message for an already processed order is a no-op and a
// concurrent client edit during the simulated delay cannot be regressed.
//
// A nil return means the delivery can be acknowledged; an error means the
// message must be abandoned for redelivery.
func (s *ProcessorService) ProcessOrder(ctx context.Context, snapshot order.Order) error {
	ctx, span := otel.Tracer("service").Start(ctx, "ProcessorService.ProcessOrder")
	defer span.End()

	stored, err := s.orderRepo.Get(ctx, snapshot.ID)
	if err != nil {
		return err
	}

	if stored.Status != order.StatusPending {
		// At-least-once delivery: the same message was already handled.
		slog.Info("Order is past Pending, treating delivery as duplicate",
			"order_id", snapshot.ID,
			"status", stored.Status,
		)

		return nil
	}

	moved, err := s.orderRepo.UpdateStatus(ctx, snapshot.ID, order.StatusPending, order.StatusProcessing)
	if err != nil {
		return err
	}
	if !moved {
		slog.Info("Order advanced concurrently, treating delivery as duplicate", "order_id", snapshot.ID)

		return nil
	}

	slog.Info("Order status updated", "order_id", snapshot.ID, "status", order.StatusProcessing)

	// Simulated processing work, interruptible on shutdown.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
	}

	moved, err = s.orderRepo.UpdateStatus(ctx, snapshot.ID, order.StatusProcessing, order.StatusCompleted)
	if err != nil {
		return err
	}
	if !moved {
		// The row was deleted or rewritten by a client while we waited.
		// Last writer wins; completing now would overwrite their change.
		slog.Warn("Order changed externally during processing", "order_id", snapshot.ID)

		return nil
	}

	slog.Info("Order status updated", "order_id", snapshot.ID, "status", order.StatusCompleted)

	return nil
}
