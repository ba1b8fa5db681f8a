package getorder

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
)

type service interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// GetOrder handles the get order request.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)

		return
	}

	o, err := service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, iorderrepo.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)

			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting order", "error", err, "order_id", id)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(o); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for get order", "error", err)
	}
}
