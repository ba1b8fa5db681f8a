package logger

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Handler is a slog handler that enriches records with the request id
// stored in the context by chi's RequestID middleware.
type Handler struct {
	slog.Handler
}

// NewHandler creates a new Handler writing JSON to stdout.
func NewHandler(opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelInfo}
	}

	return &Handler{
		Handler: slog.NewJSONHandler(os.Stdout, opts),
	}
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		record.AddAttrs(slog.String("request_id", reqID))
	}

	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}

// NewLoggerMiddleware returns an HTTP middleware that logs every request
// with its method, path, status code and duration.
func NewLoggerMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
