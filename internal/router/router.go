package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/api"
	"github.com/szytools/discount-label-service/internal/api/handler"
	"github.com/szytools/discount-label-service/internal/middleware"
)

// Roles allowed to read the print history of every operator
var historyRoles = []string{"supervisor", "admin"}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handlers groups the API handlers the router dispatches to
type Handlers struct {
	Session   *handler.SessionHandler
	Printers  *handler.PrinterHandler
	Labels    *handler.LabelHandler
	Products  *handler.ProductHandler
	WebSocket *handler.WebSocketHandler
}

// Router handles HTTP routing
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	auth     middleware.TokenValidator
	health   HealthChecker
	logger   *zap.Logger
}

// New creates a new router. health may be nil when there is no database.
func New(handlers Handlers, auth middleware.TokenValidator, health HealthChecker, logger *zap.Logger) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: handlers,
		auth:     auth,
		health:   health,
		logger:   logger,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	authenticate := middleware.Auth(r.auth)

	// Public routes
	r.mux.Handle("/health", http.HandlerFunc(r.handleHealth))
	r.mux.Handle("/ws", authenticate(r.handlers.WebSocket))

	// Protected routes
	apiHandler := http.NewServeMux()
	apiHandler.HandleFunc("/session", r.handlers.Session.HandleSession)
	apiHandler.HandleFunc("/session/", r.handlers.Session.HandleSession)
	apiHandler.HandleFunc("/printers/", r.handlers.Printers.HandlePrinters)
	apiHandler.HandleFunc("/barcode/encode", handler.HandleEncode)
	apiHandler.Handle("/labels/history",
		middleware.RequireRole(historyRoles...)(http.HandlerFunc(r.handlers.Labels.HandleHistory)))
	apiHandler.HandleFunc("/outlets", r.handlers.Products.HandleOutlets)
	apiHandler.HandleFunc("/products/", r.handlers.Products.HandleProducts)

	apiChain := middleware.Logger(r.logger)(
		authenticate(
			apiHandler,
		),
	)

	r.mux.Handle("/api/", http.StripPrefix("/api", apiChain))
}

// handleHealth reports service health, including the database when there is one
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	status := struct {
		Status   string `json:"status"`
		Database string `json:"database,omitempty"`
	}{Status: "ok"}

	if r.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := r.health.HealthCheck(ctx); err != nil {
			r.logger.Warn("database health check failed", zap.Error(err))
			status.Status = "degraded"
			status.Database = "unreachable"
			api.RespondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status.Database = "ok"
	}

	api.RespondJSON(w, http.StatusOK, status)
}
