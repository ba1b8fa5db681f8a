package iorderrepo

import (
	"context"
	"errors"

	"orderpipeline/internal/service/models/order"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when no order exists for the given id.
var ErrOrderNotFound = errors.New("order not found")

// IOrderRepository defines the interface for order storage operations.
type IOrderRepository interface {
	// List retrieves all orders
	List(ctx context.Context) ([]order.Order, error)

	// Get retrieves a single order by id, ErrOrderNotFound when absent
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// Insert persists a new order
	Insert(ctx context.Context, o order.Order) error

	// Update overwrites all fields of the stored order, reporting whether
	// a row was affected
	Update(ctx context.Context, o order.Order) (bool, error)

	// UpdateStatus advances the status only if the stored status still
	// equals from, reporting whether a row was affected
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) (bool, error)

	// Delete removes the order, reporting whether a row was affected
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
