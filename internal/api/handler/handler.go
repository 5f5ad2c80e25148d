// Package handler provides HTTP handlers for all API endpoints.
// Read handlers serve cached documents as raw bytes when they exist and
// compute the same bytes on demand when they do not.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/league-data/internal/api/respond"
	"github.com/albapepper/league-data/internal/cache"
	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/store"
)

// Pinger checks a backing service. *db.Pool satisfies it.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the handler dependencies. Database may be nil when no component
// uses Postgres.
type Deps struct {
	Source       store.Source
	Documents    snapshot.Reader
	Orchestrator *recompute.Orchestrator
	Dispatcher   *recompute.Dispatcher
	Jobs         recompute.JobStore
	Cache        *cache.Cache
	Config       *config.Config
	Database     Pinger
	Logger       *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	src        store.Source
	docs       snapshot.Reader
	orch       *recompute.Orchestrator
	dispatcher *recompute.Dispatcher
	jobs       recompute.JobStore
	cache      *cache.Cache
	cfg        *config.Config
	db         Pinger
	logger     *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	return &Handler{
		src:        d.Source,
		docs:       d.Documents,
		orch:       d.Orchestrator,
		dispatcher: d.Dispatcher,
		jobs:       d.Jobs,
		cache:      d.Cache,
		cfg:        d.Config,
		db:         d.Database,
		logger:     d.Logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and configured backends.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "League Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"backends": map[string]string{
			"records": h.cfg.StoreBackend,
			"cache":   h.cfg.CacheBackend,
			"jobs":    h.cfg.JobBackend,
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when a Postgres backend is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"database":  "not configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory response cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// seasonKey prefixes every response cache key for a season so a finished
// recompute can drop them all at once.
func seasonKey(seasonID string, parts ...any) string {
	return SeasonCachePrefix(seasonID) + fmt.Sprint(parts...)
}

// SeasonCachePrefix is the response cache key prefix for a season.
func SeasonCachePrefix(seasonID string) string {
	return "season:" + seasonID + ":"
}

// serveCached answers from the response cache when possible, otherwise
// calls build and caches its bytes. build reports the X-Cache value to use
// for a fresh response.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, build func() ([]byte, string, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, respond.CacheHit)
		return
	}

	data, status, err := build()
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, status)
}

// errNotFound marks a lookup that found the season but not the entity.
var errNotFound = errors.New("not found")

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errNotFound):
		respond.WriteErrorDetail(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		h.logger.Error("request failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// ttlFor picks the response TTL: short for the active season, long for
// closed ones.
func (h *Handler) ttlFor(ctx context.Context, seasonID string) time.Duration {
	season, err := h.src.Season(ctx, seasonID)
	if err != nil || season.Active {
		return h.activeTTL()
	}
	return cache.TTLHistorical
}

func (h *Handler) activeTTL() time.Duration {
	if h.cfg != nil && h.cfg.CacheTTL > 0 {
		return h.cfg.CacheTTL
	}
	return cache.TTLActiveSeason
}
