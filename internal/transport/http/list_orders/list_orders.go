package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"orderpipeline/internal/service/models/order"
)

type service interface {
	List(ctx context.Context) ([]order.Order, error)
}

// ListOrders handles the list orders request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for list orders", "error", err)
	}
}
