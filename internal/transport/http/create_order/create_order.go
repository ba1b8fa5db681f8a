package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"orderpipeline/internal/service/models/order"
)

// service is an interface for the service layer.
type service interface {
	Create(ctx context.Context, o order.Order) (*order.Order, error)
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Customer string          `json:"customer" validate:"required"`
	Product  string          `json:"product"  validate:"required"`
	Amount   decimal.Decimal `json:"amount"   validate:"required"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to order.Order. Id, status and
// creation time are assigned by the service.
func (r *createOrderRequest) toModel() order.Order {
	return order.Order{
		Customer: r.Customer,
		Product:  r.Product,
		Amount:   r.Amount,
	}
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderReq := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := orderReq.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.Create(r.Context(), orderReq.toModel())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/orders/"+created.ID.String())
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
