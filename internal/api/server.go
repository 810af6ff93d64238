package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/easelhq/easel/internal/store"
	"github.com/easelhq/easel/internal/workload"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second

	maxBodySize = 1 << 20 // 1 MB
)

// Server wraps the chi router and application dependencies.
type Server struct {
	router *chi.Mux
	store  store.Store
	engine *workload.Engine
	logger *slog.Logger
	addr   string
}

// NewServer creates and configures a new HTTP server.
func NewServer(addr string, s store.Store, eng *workload.Engine, logger *slog.Logger) *Server {
	srv := &Server{
		router: chi.NewRouter(),
		store:  s,
		engine: eng,
		logger: logger,
		addr:   addr,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(srv.loggingMiddleware)
	srv.router.Use(metricsMiddleware)
	srv.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	srv.routes()

	return srv
}

// routes registers all HTTP routes on the router.
func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())

	s.router.Route("/v1/editors", func(r chi.Router) {
		r.Post("/", s.handleCreateEditor)
		r.Get("/", s.handleListEditors)
		r.Get("/{id}", s.handleGetEditor)
		r.Delete("/{id}", s.handleDeactivateEditor)
		r.Put("/{id}/capacity", s.handleSetCapacity)
		r.Put("/{id}/availability", s.handleSetAvailability)
		r.Get("/{id}/load", s.handleGetEditorLoad)
		r.Get("/{id}/load/watch", s.handleWatchEditorLoad)
	})

	s.router.Route("/v1/requests", func(r chi.Router) {
		r.Post("/", s.handleUpsertRequest)
		r.Get("/{id}", s.handleGetRequest)
		r.Patch("/{id}/status", s.handleRequestStatusChange)
		r.Get("/{id}/remaining", s.handleGetRemainingUnits)
		r.Post("/{id}/uploads", s.handleUploadRecorded)
	})

	s.router.Route("/v1/assignments", func(r chi.Router) {
		r.Post("/", s.handleAssign)
		r.Get("/{id}", s.handleGetAssignment)
		r.Post("/{id}/completion", s.handleRecordCompletion)
		r.Post("/{id}/status", s.handleAssignmentStatusChange)
		r.Delete("/{id}", s.handleRemoveAssignment)
	})

	s.router.Get("/v1/workload/summary", s.handleWorkloadSummary)
	s.router.Post("/v1/admin/recalculate", s.handleRecalculateAll)

	s.router.Route("/v1/alerts", func(r chi.Router) {
		r.Get("/", s.handleListAlerts)
		r.Post("/{id}/resolve", s.handleResolveAlert)
	})
}

// Router returns the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps engine and store errors to HTTP status codes.
// Distribution violations carry the remaining-unit figure so a UI can show
// "cannot assign more than N remaining units".
func (s *Server) writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	var distErr *workload.DistributionExceededError
	var valErr *workload.ValidationError
	switch {
	case errors.As(err, &distErr):
		s.writeJSON(w, http.StatusConflict, map[string]any{
			"error":           distErr.Error(),
			"remaining_units": distErr.Remaining,
		})
	case errors.As(err, &valErr):
		s.writeError(w, http.StatusUnprocessableEntity, valErr.Error())
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrAlertResolved):
		s.writeError(w, http.StatusConflict, "alert already resolved")
	default:
		s.logger.Error(logMsg, "error", err)
		s.writeError(w, http.StatusInternalServerError, logMsg)
	}
}

// decodeBody decodes a JSON request body with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}
