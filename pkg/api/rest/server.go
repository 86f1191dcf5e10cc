package rest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vectorbench/vectorbench/pkg/api/rest/middleware"
	"github.com/vectorbench/vectorbench/pkg/campaign"
)

// Config holds the REST server configuration.
type Config struct {
	Host        string
	Port        int
	CORSEnabled bool
	CORSOrigins []string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
}

// Server represents the REST control-plane server. Unlike the teacher's
// REST layer, which only proxied to a separate gRPC vector-database
// process, this server runs the benchmark driver in-process — there is
// no downstream connection to manage.
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	router     chi.Router
}

// NewServer creates a new REST API server against campaigns, running
// experiments through runner in-process.
func NewServer(config Config, campaigns *campaign.Manager, runner *Runner) *Server {
	handler := NewHandler(campaigns, runner)

	server := &Server{
		config:  config,
		handler: handler,
		router:  chi.NewRouter(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/v1/health", s.handler.HealthCheck)

	s.router.Route("/v1/campaigns", func(r chi.Router) {
		r.Post("/", s.handler.CreateCampaign)
		r.Get("/", s.handler.ListCampaigns)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			s.handler.GetCampaign(w, r, chi.URLParam(r, "id"))
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			s.handler.DeleteCampaign(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/runs", func(w http.ResponseWriter, r *http.Request) {
			s.handler.RunExperiment(w, r, chi.URLParam(r, "id"))
		})
	})

	s.router.Get("/docs", ServeSwaggerUI)
	s.router.Get("/docs/openapi.yaml", ServeDocs)
}

// withMiddleware wraps the router with all middleware.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first).

	// 1. Logging middleware (outermost).
	handler = loggingMiddleware(handler)

	// 2. CORS middleware.
	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	// 3. Rate limiting.
	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)

	// 4. Authentication (innermost, runs last).
	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	return handler
}

// Start starts the REST API server.
func (s *Server) Start() error {
	log.Printf("starting control API on %s:%d", s.config.Host, s.config.Port)
	log.Printf("API documentation available at http://%s:%d/docs", s.config.Host, s.config.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Println("shutting down control API...")
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs all HTTP requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
