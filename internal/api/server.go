// Package api exposes the aggregation facade over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sametyasit/cryptobuddy/internal/api/middleware"
	"github.com/sametyasit/cryptobuddy/internal/api/response"
	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/market"
	"github.com/sametyasit/cryptobuddy/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultPage    = 1
	defaultPerPage = 50
	maxPerPage     = 250
	defaultDays    = 7
	maxDays        = 365
)

// Market is the facade surface the server needs.
type Market interface {
	FetchListing(ctx context.Context, page, perPage int) (*market.Listing, error)
	FetchDetail(ctx context.Context, assetID string) (*core.Asset, error)
	FetchHistory(ctx context.Context, assetID string, days int) (core.History, error)
	FetchNews(ctx context.Context) ([]core.NewsArticle, error)
	Invalidate(capability core.Capability)
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	AdminAPIKey string
	MetricsPath string
}

// Server is the HTTP front of the engine.
type Server struct {
	httpServer *http.Server
	market     Market
	log        *zap.Logger
}

// NewServer wires the routes and middleware. reg may be nil to disable
// the metrics endpoint and instrumentation.
func NewServer(cfg Config, m Market, reg *metrics.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{market: m, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/markets", s.handleListing)
	mux.HandleFunc("GET /api/v1/markets/{id}", s.handleDetail)
	mux.HandleFunc("GET /api/v1/markets/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/news", s.handleNews)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	refresh := http.Handler(http.HandlerFunc(s.handleRefresh))
	mux.Handle("POST /api/v1/refresh", middleware.APIKeyAuth(cfg.AdminAPIKey)(refresh))

	var handler http.Handler = mux
	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		handler = metrics.HTTPMiddleware(reg)(mux)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	perPage, err := queryInt(r, "per_page", defaultPerPage)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	listing, err := s.market.FetchListing(r.Context(), page, perPage)
	if err != nil {
		response.Error(w, httpStatus(err), err)
		return
	}
	response.JSONWithProvider(w, http.StatusOK, listing.Assets, listing.Provider)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	asset, err := s.market.FetchDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, httpStatus(err), err)
		return
	}
	response.JSON(w, http.StatusOK, asset)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDays)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if days > maxDays {
		days = maxDays
	}

	history, err := s.market.FetchHistory(r.Context(), r.PathValue("id"), days)
	if err != nil {
		response.Error(w, httpStatus(err), err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.market.FetchNews(r.Context())
	if err != nil {
		response.Error(w, httpStatus(err), err)
		return
	}
	response.JSON(w, http.StatusOK, articles)
}

// handleRefresh clears the cache for one capability, or everything when
// the capability parameter is absent.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	capability := core.Capability(r.URL.Query().Get("capability"))
	switch capability {
	case "", core.CapabilityListing, core.CapabilityDetail, core.CapabilityHistory, core.CapabilityNews:
	default:
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unknown capability %q", capability)))
		return
	}

	s.market.Invalidate(capability)
	s.log.Info("cache invalidated", zap.String("capability", string(capability)))
	response.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrInvalidRequest,
			fmt.Errorf("%s must be an integer, got %q", name, raw))
	}
	return v, nil
}

// httpStatus maps facade errors onto HTTP statuses.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrAllProvidersFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
