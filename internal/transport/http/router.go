package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustgraph/internal/platform/health"
	trusthandler "trustgraph/internal/trust/handler"
	"trustgraph/pkg/platform/middleware/request"
)

// Config bounds request handling.
type Config struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter wires the public trust registry endpoints and health probes
// behind the shared middleware stack.
func NewRouter(trust *trusthandler.Handler, probes *health.Handler, metrics *request.Metrics, logger *slog.Logger, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Metadata)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(metrics, routePattern))
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}
	r.Use(request.ContentTypeJSON)

	if probes != nil {
		probes.Register(r)
	}
	trust.Register(r)

	return r
}

// routePattern labels latency by chi route pattern, e.g. /entities/{did}.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
