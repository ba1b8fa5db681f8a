package deleteorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
)

type service interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeleteOrder handles the delete order request.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)

		return
	}

	if err := service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, iorderrepo.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)

			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error deleting order", "error", err, "order_id", id)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
