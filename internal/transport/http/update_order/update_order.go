package updateorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
	"orderpipeline/internal/service/models/order"
	"orderpipeline/internal/service/services/ordersvc"
)

type service interface {
	Replace(ctx context.Context, id uuid.UUID, o order.Order) error
}

// UpdateOrder handles the replace order request. The body carries the full
// resource including its id, which must match the path id.
func UpdateOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)

		return
	}

	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update order", "error", err)

		return
	}

	if err := service.Replace(r.Context(), id, o); err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrIDMismatch):
			http.Error(w, "Order id mismatch", http.StatusBadRequest)
		case errors.Is(err, iorderrepo.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error updating order", "error", err, "order_id", id)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
