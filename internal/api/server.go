// Package api is the HTTP transport: the question endpoint, CRUD for the
// record store, and the health, readiness and metrics probes.
package api

import (
	"context"
	"net/http"
	"time"

	"erp-assistant/internal/audit"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"
	"erp-assistant/internal/store"
	"erp-assistant/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Asker interface {
	Ask(ctx context.Context, userPrompt string) (*models.Response, error)
}

// RecordStore is the part of store.Store the CRUD routes use.
type RecordStore interface {
	ListEmployees(ctx context.Context, filters store.Filters, page store.Page) ([]models.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e models.Employee) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error

	ListOrders(ctx context.Context, filters store.Filters, page store.Page) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	CreateOrder(ctx context.Context, o models.Order) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error

	ListSystemInfo(ctx context.Context, filters store.Filters, page store.Page) ([]models.SystemInfo, error)
	GetSystemInfo(ctx context.Context, systemName string) (*models.SystemInfo, error)
	CreateSystemInfo(ctx context.Context, info models.SystemInfo) (*models.SystemInfo, error)
	DeleteSystemInfo(ctx context.Context, systemName string) error
}

// CacheInvalidator drops cached dispatch results of one function.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, functionName string) error
}

type InteractionLog interface {
	Recent(ctx context.Context, size int) ([]audit.Interaction, error)
}

type Dependencies struct {
	Assistant Asker
	Store     RecordStore
	Registry  *registry.Registry

	// Optional.
	Cache          CacheInvalidator
	Interactions   InteractionLog
	Ready          func(ctx context.Context) error
	AllowedOrigins []string
}

type Server struct {
	deps   Dependencies
	logger logger.Logger
}

func NewServer(deps Dependencies, log logger.Logger) *Server {
	return &Server{
		deps: deps,
		logger: log.With(map[string]interface{}{
			"component": "http",
		}),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.deps.AllowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/qna/", s.handleQnA)

		if s.deps.Store != nil {
			r.Route("/employees", employeeResource(s.deps.Store).routes(s))
			r.Route("/orders", orderResource(s.deps.Store).routes(s))
			r.Route("/system_info", systemInfoResource(s.deps.Store).routes(s))
		}

		r.Get("/registry/", s.handleRegistry)
		r.Get("/interactions/", s.handleInteractions)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}

// cors answers preflight requests and allows the configured origins with
// credentials.
func cors(allowed []string) func(http.Handler) http.Handler {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		origins[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (origins[origin] || origins["*"]) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
					if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
						h.Set("Access-Control-Allow-Headers", req)
					}
					w.WriteHeader(http.StatusOK)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
