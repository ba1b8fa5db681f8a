package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"orderpipeline/internal/service/models/order"
	createorder "orderpipeline/internal/transport/http/create_order"
	deleteorder "orderpipeline/internal/transport/http/delete_order"
	getorder "orderpipeline/internal/transport/http/get_order"
	listorders "orderpipeline/internal/transport/http/list_orders"
	updateorder "orderpipeline/internal/transport/http/update_order"
	"orderpipeline/pkg/http/middleware/trace"
	"orderpipeline/pkg/logger"
)

type service interface {
	List(ctx context.Context) ([]order.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Create(ctx context.Context, o order.Order) (*order.Order, error)
	Replace(ctx context.Context, id uuid.UUID, o order.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Router returns the chi mux, exposed for tests.
func (h *HTTPTransport) Router() *chi.Mux {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}", h.updateOrder)
		r.Delete("/orders/{id}", h.deleteOrder)
	})
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) updateOrder(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateOrder(w, r, h.service)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
