// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

// Package api provides the HTTP surface of Buzzrank: feed, profile,
// follow-suggestion and engine-configuration endpoints, plus health
// checks.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/buzzit/buzzrank/internal/metrics"
	"github.com/buzzit/buzzrank/internal/models"
	"github.com/buzzit/buzzrank/internal/recommend"
	"github.com/buzzit/buzzrank/internal/store"
)

// requestTimeout bounds a single recommendation request end to end.
const requestTimeout = 10 * time.Second

// Engine is the recommendation surface the handlers depend on.
// *recommend.Engine satisfies it; tests substitute a stub.
type Engine interface {
	FeedForUser(ctx context.Context, userID string, limit int) (*recommend.FeedResult, error)
	SuggestUsers(ctx context.Context, userID string, k int) ([]recommend.UserRecommendation, error)
	ProfileForUser(ctx context.Context, userID string) (*recommend.PreferenceProfile, error)
	GetConfig() *recommend.Config
	UpdateConfig(cfg *recommend.Config) error
}

// Pinger reports backing-store connectivity, for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	engine Engine
	pinger Pinger
}

// NewHandler creates the API handler set. pinger may be nil; the
// readiness check then reports ready unconditionally.
func NewHandler(engine Engine, pinger Pinger) *Handler {
	return &Handler{engine: engine, pinger: pinger}
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "ok"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles GET /api/v1/health/live. Always succeeds while
// the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HealthReady handles GET /api/v1/health/ready. Fails while the
// backing store is unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Backing store unreachable", err)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Feed handles GET /api/v1/feed/{userID}?limit=N.
// Returns the ranked feed for a user, best first, without scores.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := FeedRequest{
		UserID: chi.URLParam(r, "userID"),
		Limit:  getIntParam(r, "limit", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.engine.FeedForUser(ctx, req.UserID, req.Limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "FEED_ERROR", "Failed to build feed", err)
		return
	}

	metrics.FeedRankDuration.Observe(time.Since(start).Seconds())
	metrics.FeedCandidates.Observe(float64(result.TotalCandidates))
	if result.Metadata.ProfileCacheHit {
		metrics.ProfileCacheHits.Inc()
	} else {
		metrics.ProfileCacheMisses.Inc()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      result.Metadata.ProfileCacheHit,
		},
	})
}

// Profile handles GET /api/v1/users/{userID}/profile.
// Returns the derived preference profile for a user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := ProfileRequest{UserID: chi.URLParam(r, "userID")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	profile, err := h.engine.ProfileForUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "PROFILE_ERROR", "Failed to build profile", err)
		return
	}

	metrics.ProfileBuildDuration.Observe(time.Since(start).Seconds())

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   profile,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Suggestions handles GET /api/v1/users/{userID}/suggestions?k=N.
// Returns "who to follow" candidates with scores and reasons.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := SuggestionsRequest{
		UserID: chi.URLParam(r, "userID"),
		K:      getIntParam(r, "k", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recs, err := h.engine.SuggestUsers(ctx, req.UserID, req.K)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SUGGESTIONS_ERROR", "Failed to build suggestions", err)
		return
	}

	metrics.SuggestionsReturned.Observe(float64(len(recs)))

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]interface{}{"suggestions": recs},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetRecommendConfig handles GET /api/v1/recommend/config.
func (h *Handler) GetRecommendConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.engine.GetConfig(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// UpdateRecommendConfig handles PUT /api/v1/recommend/config.
// The body is a full engine configuration; partial updates are not
// supported, clients should GET, modify and PUT back.
func (h *Handler) UpdateRecommendConfig(w http.ResponseWriter, r *http.Request) {
	var cfg recommend.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", err)
		return
	}

	if err := h.engine.UpdateConfig(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.engine.GetConfig(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
