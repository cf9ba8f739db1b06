// Package httpapi provides the HTTP API for assetd.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/assetd/internal/assets"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
	"github.com/fyrsmithlabs/assetd/internal/sanitize"
	"github.com/fyrsmithlabs/assetd/internal/scope"
)

// Server provides HTTP endpoints for assetd.
type Server struct {
	echo    *echo.Echo
	service assets.Service
	catalog *manifest.Catalog // optional
	logger  *zap.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RateLimit caps requests per second per client IP. Zero disables
	// rate limiting.
	RateLimit float64

	// Version is reported by the status endpoint.
	Version string
}

// NewServer creates a new HTTP server. The catalog is optional; without
// one the status endpoint reports no asset counts.
func NewServer(service assets.Service, catalog *manifest.Catalog, logger *zap.Logger, cfg *Config) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("asset service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8090,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		service: service,
		catalog: catalog,
		logger:  logger,
		config:  cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// Echo returns the underlying echo instance so callers can mount extra
// handlers, e.g. promhttp on /metrics.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.POST("/scope/resolve", s.handleResolveScope)
	v1.POST("/branch/sanitize", s.handleSanitize)
	v1.POST("/assets/:kind/register", s.handleRegister)
	v1.POST("/assets/:kind/get", s.handleGet)
	v1.GET("/assets/:kind/:id/versions", s.handleListVersions)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleStatus reports catalog counts and server identity.
func (s *Server) handleStatus(c echo.Context) error {
	resp := StatusResponse{
		Status:  "ok",
		Version: s.config.Version,
		Catalog: CatalogCount{DataAssets: -1, ModelAssets: -1},
	}
	if s.catalog != nil {
		resp.Catalog.DataAssets = len(s.catalog.List(manifest.KindData))
		resp.Catalog.ModelAssets = len(s.catalog.List(manifest.KindModel))
	}
	return c.JSON(http.StatusOK, resp)
}

// handleResolveScope resolves the read branch for a run's deployment
// context.
func (s *Server) handleResolveScope(c echo.Context) error {
	var req ResolveScopeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid resolve request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := scope.Resolve(scope.ProjectConfig{
		Project:         req.Project,
		DevAssetsBranch: req.DevAssetsBranch,
	}, req.Deployment.toScope())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, ResolveScopeResponse{
		Project:              result.Project,
		ReadBranch:           result.ReadBranch,
		Class:                string(result.Class),
		ReadsFromWriteBranch: result.ReadsFromWriteBranch(),
	})
}

// handleSanitize sanitizes a raw branch label.
func (s *Server) handleSanitize(c echo.Context) error {
	var req SanitizeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid sanitize request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sanitized, err := sanitize.BranchName(req.Branch)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, SanitizeResponse{
		Branch:    req.Branch,
		Sanitized: sanitized,
	})
}

// handleRegister registers a new asset version.
func (s *Server) handleRegister(c echo.Context) error {
	kind, err := manifest.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req RegisterAssetRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid register request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	serviceReq := &assets.RegisterRequest{
		Project:     req.Project,
		AssetID:     req.AssetID,
		WriteBranch: req.WriteBranch,
		Payload:     req.Payload,
		Annotations: req.Annotations,
		RunID:       req.RunID,
		Pathspec:    req.Pathspec,
	}

	var version *assets.Version
	switch kind {
	case manifest.KindModel:
		version, err = s.service.RegisterModel(c.Request().Context(), serviceReq)
	default:
		version, err = s.service.RegisterData(c.Request().Context(), serviceReq)
	}
	if err != nil {
		return s.serviceError(err)
	}

	return c.JSON(http.StatusCreated, version)
}

// handleGet retrieves an asset version and its payload. The branch reads
// come from is resolved here, not supplied by the client.
func (s *Server) handleGet(c echo.Context) error {
	kind, err := manifest.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req GetAssetRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid get request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	serviceReq := &assets.GetRequest{
		Project:         req.Project,
		DevAssetsBranch: req.DevAssetsBranch,
		Deployment:      req.Deployment.toScope(),
		AssetID:         req.AssetID,
		WriteBranch:     req.WriteBranch,
		Version:         req.Version,
	}

	var (
		version *assets.Version
		payload []byte
	)
	switch kind {
	case manifest.KindModel:
		version, payload, err = s.service.GetModel(c.Request().Context(), serviceReq)
	default:
		version, payload, err = s.service.GetData(c.Request().Context(), serviceReq)
	}
	if err != nil {
		return s.serviceError(err)
	}

	return c.JSON(http.StatusOK, GetAssetResponse{
		Version: version,
		Payload: payload,
	})
}

// handleListVersions lists an asset's registered versions on one branch.
func (s *Server) handleListVersions(c echo.Context) error {
	kind, err := manifest.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project := c.QueryParam("project")
	branch := c.QueryParam("branch")
	if project == "" || branch == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "project and branch query parameters are required")
	}

	versions, err := s.service.ListVersions(c.Request().Context(), &assets.ListRequest{
		Project: project,
		Branch:  branch,
		Kind:    kind,
		AssetID: c.Param("id"),
	})
	if err != nil {
		return s.serviceError(err)
	}

	return c.JSON(http.StatusOK, ListVersionsResponse{Versions: versions})
}

// serviceError maps registry errors onto HTTP status codes.
func (s *Server) serviceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, assets.ErrAssetNotFound),
		errors.Is(err, assets.ErrVersionNotFound),
		errors.Is(err, assets.ErrUnknownAsset):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, assets.ErrPayloadTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, assets.ErrInvalidProject),
		errors.Is(err, assets.ErrInvalidAssetID),
		errors.Is(err, manifest.ErrInvalidKind),
		errors.Is(err, sanitize.ErrInvalidBranchName),
		errors.Is(err, scope.ErrInvalidConfiguration),
		errors.Is(err, scope.ErrInvalidDeploymentSpec):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("asset operation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
