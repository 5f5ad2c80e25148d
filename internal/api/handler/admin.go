package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/albapepper/league-data/internal/api/auth"
	"github.com/albapepper/league-data/internal/api/respond"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
)

const (
	defaultJobLimit = 20
	maxJobLimit     = 200
)

// TriggerRecompute queues a full recompute of a season's cached documents.
// @Summary Trigger recompute
// @Description Queues standings, player leaders and team leaders for the season and returns the job. With ?kind= a single document is rebuilt synchronously and its result returned instead.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param seasonID path string true "Season ID"
// @Param kind query string false "Rebuild one kind synchronously" Enums(standings, playerLeaders, teamLeaders)
// @Success 200 {object} recompute.KindResult
// @Success 202 {object} recompute.Job
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/admin/seasons/{seasonID}/recompute [post]
func (h *Handler) TriggerRecompute(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	if _, err := h.src.Season(r.Context(), seasonID); err != nil {
		h.writeLookupError(w, err)
		return
	}

	if k := r.URL.Query().Get("kind"); k != "" {
		kind, err := snapshot.ParseKind(k)
		if err != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_KIND", "Unknown document kind", err.Error())
			return
		}
		result := h.orch.RecomputeKind(r.Context(), seasonID, kind)
		h.cache.InvalidatePrefix(SeasonCachePrefix(seasonID))
		h.logger.Info("recompute kind requested",
			"season", seasonID,
			"kind", kind,
			"ok", result.OK,
			"admin", auth.Subject(r.Context()),
			"request_id", middleware.GetReqID(r.Context()))
		status := http.StatusOK
		if !result.OK {
			status = http.StatusInternalServerError
		}
		respond.WriteJSONObject(w, status, result)
		return
	}

	if h.dispatcher == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "RECOMPUTE_UNAVAILABLE", "Recompute dispatcher not running")
		return
	}
	job, err := h.dispatcher.Submit(r.Context(), seasonID, "http")
	switch {
	case errors.Is(err, recompute.ErrDispatcherClosed), errors.Is(err, recompute.ErrQueueFull):
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "RECOMPUTE_UNAVAILABLE", "Recompute not accepted", err.Error())
		return
	case err != nil:
		h.logger.Error("submit recompute failed", "season", seasonID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	h.logger.Info("recompute requested",
		"season", seasonID,
		"job", job.ID,
		"admin", auth.Subject(r.Context()),
		"request_id", middleware.GetReqID(r.Context()))
	w.Header().Set("Location", "/api/v1/admin/jobs/"+job.ID)
	respond.WriteJSONObject(w, http.StatusAccepted, job)
}

// GetJob returns one recompute job.
// @Summary Recompute job status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param jobID path string true "Job ID"
// @Success 200 {object} recompute.Job
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/admin/jobs/{jobID} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), chi.URLParam(r, "jobID"))
	if errors.Is(err, recompute.ErrJobNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
		return
	}
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, job)
}

// ListJobs returns the most recent recompute jobs, newest first.
// @Summary Recent recompute jobs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum jobs (default 20, max 200)"
// @Success 200 {array} recompute.Job
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/admin/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = min(n, maxJobLimit)
	}
	jobs, err := h.jobs.Recent(r.Context(), limit)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	if jobs == nil {
		jobs = []recompute.Job{}
	}
	respond.WriteJSONObject(w, http.StatusOK, jobs)
}
