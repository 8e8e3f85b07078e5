// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/buzzit/buzzrank/internal/models"
	"github.com/buzzit/buzzrank/internal/recommend"
	"github.com/buzzit/buzzrank/internal/store"
)

// stubEngine implements Engine with canned responses.
type stubEngine struct {
	feed        *recommend.FeedResult
	profile     *recommend.PreferenceProfile
	suggestions []recommend.UserRecommendation
	cfg         *recommend.Config
	err         error

	lastUserID string
	lastLimit  int
	lastK      int
}

func (s *stubEngine) FeedForUser(_ context.Context, userID string, limit int) (*recommend.FeedResult, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	return s.feed, s.err
}

func (s *stubEngine) SuggestUsers(_ context.Context, userID string, k int) ([]recommend.UserRecommendation, error) {
	s.lastUserID = userID
	s.lastK = k
	return s.suggestions, s.err
}

func (s *stubEngine) ProfileForUser(_ context.Context, userID string) (*recommend.PreferenceProfile, error) {
	s.lastUserID = userID
	return s.profile, s.err
}

func (s *stubEngine) GetConfig() *recommend.Config {
	if s.cfg == nil {
		return recommend.DefaultConfig()
	}
	return s.cfg
}

func (s *stubEngine) UpdateConfig(cfg *recommend.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// stubPinger implements Pinger.
type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error {
	return s.err
}

func newTestServer(engine Engine, pinger Pinger) http.Handler {
	handler := NewHandler(engine, pinger)
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	return NewRouter(handler, mwCfg).Setup()
}

func doRequest(t *testing.T, srv http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v: %s", err, rec.Body.String())
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/health/", nil)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		resp := decodeResponse(t, rec)
		if resp.Status != "success" {
			t.Errorf("Status = %q, want success", resp.Status)
		}
	})

	t.Run("live", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/health/live", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("ready with healthy store", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, &stubPinger{})
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/health/ready", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("ready with failing store", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, &stubPinger{err: errors.New("down")})
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/health/ready", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("ready without pinger", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/health/ready", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestFeedEndpoint(t *testing.T) {
	engine := &stubEngine{
		feed: &recommend.FeedResult{
			Items:           []recommend.Buzz{{ID: "b1"}, {ID: "b2"}},
			TotalCandidates: 2,
		},
	}
	srv := newTestServer(engine, nil)

	t.Run("success", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/feed/u1?limit=25", nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if engine.lastUserID != "u1" || engine.lastLimit != 25 {
			t.Errorf("engine called with (%q, %d), want (u1, 25)", engine.lastUserID, engine.lastLimit)
		}

		resp := decodeResponse(t, rec)
		if resp.Status != "success" {
			t.Errorf("Status = %q, want success", resp.Status)
		}
		if rec.Header().Get("ETag") == "" {
			t.Error("ETag header missing")
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}
	})

	t.Run("missing limit defaults to zero", func(t *testing.T) {
		doRequest(t, srv, http.MethodGet, "/api/v1/feed/u1", nil)
		if engine.lastLimit != 0 {
			t.Errorf("limit = %d, want 0", engine.lastLimit)
		}
	})

	t.Run("limit above maximum rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/feed/u1?limit=9999", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("Error = %+v, want VALIDATION_ERROR", resp.Error)
		}
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		failing := &stubEngine{err: fmt.Errorf("get user: %w", store.ErrNotFound)}
		rec := doRequest(t, newTestServer(failing, nil), http.MethodGet, "/api/v1/feed/nobody", nil)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
			t.Errorf("Error = %+v, want NOT_FOUND", resp.Error)
		}
	})

	t.Run("engine failure maps to 500", func(t *testing.T) {
		failing := &stubEngine{err: errors.New("boom")}
		rec := doRequest(t, newTestServer(failing, nil), http.MethodGet, "/api/v1/feed/u1", nil)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestProfileEndpoint(t *testing.T) {
	engine := &stubEngine{
		profile: &recommend.PreferenceProfile{
			InterestScores: map[recommend.Interest]float64{"music": 1.0},
		},
	}
	srv := newTestServer(engine, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/users/u1/profile", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if engine.lastUserID != "u1" {
		t.Errorf("engine called with %q, want u1", engine.lastUserID)
	}

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Data has type %T, want object", resp.Data)
	}
	if _, ok := data["interest_scores"]; !ok {
		t.Error("response missing interest_scores")
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	engine := &stubEngine{
		suggestions: []recommend.UserRecommendation{
			{User: recommend.UserProfile{ID: "c1"}, Score: 0.8, Reasons: []string{recommend.ReasonContact}},
		},
	}
	srv := newTestServer(engine, nil)

	t.Run("success", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/users/u1/suggestions?k=5", nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if engine.lastK != 5 {
			t.Errorf("k = %d, want 5", engine.lastK)
		}
	})

	t.Run("k above cap rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/users/u1/suggestions?k=100", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestConfigEndpoints(t *testing.T) {
	t.Run("get returns current config", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/recommend/config", nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("Data has type %T, want object", resp.Data)
		}
		if _, ok := data["content_weights"]; !ok {
			t.Error("response missing content_weights")
		}
	})

	t.Run("put applies valid config", func(t *testing.T) {
		engine := &stubEngine{}
		srv := newTestServer(engine, nil)

		cfg := recommend.DefaultConfig()
		cfg.Limits.DefaultFeedLimit = 30
		body, _ := json.Marshal(cfg)

		rec := doRequest(t, srv, http.MethodPut, "/api/v1/recommend/config", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if engine.cfg == nil || engine.cfg.Limits.DefaultFeedLimit != 30 {
			t.Error("config update not applied")
		}
	})

	t.Run("put rejects invalid config", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)

		cfg := recommend.DefaultConfig()
		cfg.Diversity.MMRLambda = 5
		body, _ := json.Marshal(cfg)

		rec := doRequest(t, srv, http.MethodPut, "/api/v1/recommend/config", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("put rejects malformed body", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)
		rec := doRequest(t, srv, http.MethodPut, "/api/v1/recommend/config", []byte("{nope"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubEngine{}, nil)
	rec := doRequest(t, srv, http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGenerateETag_Deterministic(t *testing.T) {
	a := generateETag([]byte("payload"))
	b := generateETag([]byte("payload"))
	c := generateETag([]byte("other"))

	if a != b {
		t.Errorf("same payload produced different ETags: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different payloads produced the same ETag")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	got := sanitizeLogValue("line1\nline2\x00")
	if got != `line1\x0aline2\x00` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
