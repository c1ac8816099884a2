// Package http provides the API server, its router and the shared middleware.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authHTTP "github.com/allisson/blueprint-secrets/internal/auth/http"
	"github.com/allisson/blueprint-secrets/internal/config"
	"github.com/allisson/blueprint-secrets/internal/metrics"
	secretsHTTP "github.com/allisson/blueprint-secrets/internal/secrets/http"
	"github.com/allisson/blueprint-secrets/internal/web"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Routes groups the handlers mounted by SetupRouter.
type Routes struct {
	SecretsHandler *secretsHTTP.SecretsHandler
	TokenHandler   *authHTTP.TokenHandler
	WebHandler     *web.Handler
	Authenticator  *authHTTP.Authenticator
	Policy         authDomain.AccessPolicy
}

// Server is the API and UI HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

// NewServer creates a server listening on host:port. checks are run by /ready.
func NewServer(host string, port int, logger *slog.Logger, checks map[string]ReadinessCheck) *Server {
	return &Server{
		logger: logger,
		checks: checks,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with middleware, probes, the JSON API and the UI.
func (s *Server) SetupRouter(cfg *config.Config, routes Routes, metricsProvider *metrics.Provider) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			cfg.MetricsNamespace,
			"/health", "/ready",
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	{
		v1.POST("/token", routes.TokenHandler.IssueTokenHandler)
		v1.DELETE("/token", routes.TokenHandler.RevokeTokenHandler)

		secrets := v1.Group("/secrets",
			authHTTP.AuthenticationMiddleware(routes.Authenticator, s.logger),
			authHTTP.AuthorizationMiddleware(routes.Policy, s.logger),
		)
		{
			secrets.GET("", routes.SecretsHandler.GetSecretsHandler)
			secrets.PUT("", routes.SecretsHandler.SetSecretsHandler)
			secrets.POST("", routes.SecretsHandler.SetSecretsHandler)
			secrets.GET("/keys/:key", routes.SecretsHandler.GetSecretKeyHandler)
		}
	}

	if routes.WebHandler != nil {
		web.RegisterRoutes(router, routes.WebHandler)
	}

	s.router = router
}

// GetHandler returns the configured router.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler runs every readiness check and reports each component.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(s.checks))
	for _, name := range slices.Sorted(maps.Keys(s.checks)) {
		if err := s.checks[name](ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", name), slog.Any("error", err))
			components[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	body := gin.H{"status": "ready", "components": components}
	if status != http.StatusOK {
		body["status"] = "not_ready"
	}
	c.JSON(status, body)
}
