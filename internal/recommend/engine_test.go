// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// stubProvider implements DataProvider with canned data and per-method
// call counters.
type stubProvider struct {
	user         *UserProfile
	buzzes       []Buzz
	interactions []Interaction
	candidates   []Buzz
	follows      []UserProfile
	contacts     []Contact
	connections  []SocialConnection
	err          error

	userCalls   atomic.Int64
	buzzCalls   atomic.Int64
	interCalls  atomic.Int64
	feedCalls   atomic.Int64
	followCalls atomic.Int64
}

func (s *stubProvider) GetUser(_ context.Context, _ string) (*UserProfile, error) {
	s.userCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubProvider) GetUserBuzzes(_ context.Context, _ string, _ int) ([]Buzz, error) {
	s.buzzCalls.Add(1)
	return s.buzzes, s.err
}

func (s *stubProvider) GetUserInteractions(_ context.Context, _ string, _ int) ([]Interaction, error) {
	s.interCalls.Add(1)
	return s.interactions, s.err
}

func (s *stubProvider) GetFeedCandidates(_ context.Context, _ string, _ int) ([]Buzz, error) {
	s.feedCalls.Add(1)
	return s.candidates, s.err
}

func (s *stubProvider) GetFollowCandidates(_ context.Context, _ string, _ int) ([]UserProfile, error) {
	s.followCalls.Add(1)
	return s.follows, s.err
}

func (s *stubProvider) GetContacts(_ context.Context, _ string) ([]Contact, error) {
	return s.contacts, s.err
}

func (s *stubProvider) GetSocialConnections(_ context.Context, _ string) ([]SocialConnection, error) {
	return s.connections, s.err
}

func newTestProvider() *stubProvider {
	return &stubProvider{
		user: &UserProfile{
			ID:        "u1",
			Interests: []Interest{"music"},
			Location:  &Location{City: "Lagos", Country: "NG"},
		},
		candidates: []Buzz{
			{ID: "b1", Interests: []Interest{"music"}, ContentType: ContentText},
			{ID: "b2", Interests: []Interest{"golf"}, ContentType: ContentText},
			{ID: "b3", ContentType: ContentText},
		},
	}
}

func newTestEngine(t *testing.T, cfg *Config) (*Engine, *stubProvider) {
	t.Helper()

	engine, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	provider := newTestProvider()
	engine.SetDataProvider(provider)
	return engine, provider
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		engine, err := NewEngine(nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine(nil) error = %v", err)
		}
		if got := engine.GetConfig().Limits.DefaultFeedLimit; got != 50 {
			t.Errorf("DefaultFeedLimit = %d, want 50", got)
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Suggestions.MaxResults = 0
		if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})
}

func TestEngine_FeedForUser(t *testing.T) {
	engine, provider := newTestEngine(t, nil)

	result, err := engine.FeedForUser(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("FeedForUser() error = %v", err)
	}

	if result.TotalCandidates != 3 {
		t.Errorf("TotalCandidates = %d, want 3", result.TotalCandidates)
	}
	if len(result.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(result.Items))
	}
	if result.Items[0].ID != "b1" {
		t.Errorf("Items[0].ID = %q, want b1 (interest match first)", result.Items[0].ID)
	}

	if result.Metadata.RequestID == "" {
		t.Error("Metadata.RequestID is empty")
	}
	if result.Metadata.UserID != "u1" {
		t.Errorf("Metadata.UserID = %q, want u1", result.Metadata.UserID)
	}
	if result.Metadata.ProfileCacheHit {
		t.Error("first request reported a profile cache hit")
	}

	if got := provider.feedCalls.Load(); got != 1 {
		t.Errorf("GetFeedCandidates calls = %d, want 1", got)
	}
}

func TestEngine_FeedForUser_ProfileCached(t *testing.T) {
	engine, provider := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := engine.FeedForUser(ctx, "u1", 10); err != nil {
		t.Fatalf("first FeedForUser() error = %v", err)
	}
	result, err := engine.FeedForUser(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("second FeedForUser() error = %v", err)
	}

	if !result.Metadata.ProfileCacheHit {
		t.Error("second request did not hit the profile cache")
	}
	if got := provider.buzzCalls.Load(); got != 1 {
		t.Errorf("GetUserBuzzes calls = %d, want 1 (profile cached)", got)
	}

	m := engine.GetMetrics()
	if m.ProfileCacheHits != 1 || m.ProfileCacheMisses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", m.ProfileCacheHits, m.ProfileCacheMisses)
	}
}

func TestEngine_FeedForUser_CacheDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	engine, provider := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := engine.FeedForUser(ctx, "u1", 10)
		if err != nil {
			t.Fatalf("FeedForUser() error = %v", err)
		}
		if result.Metadata.ProfileCacheHit {
			t.Error("cache hit reported with caching disabled")
		}
	}

	if got := provider.buzzCalls.Load(); got != 2 {
		t.Errorf("GetUserBuzzes calls = %d, want 2", got)
	}
}

func TestEngine_FeedForUser_LimitHandling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.DefaultFeedLimit = 2
	cfg.Limits.MaxFeedLimit = 2
	engine, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	t.Run("non-positive limit uses default", func(t *testing.T) {
		result, err := engine.FeedForUser(ctx, "u1", 0)
		if err != nil {
			t.Fatalf("FeedForUser() error = %v", err)
		}
		if len(result.Items) != 2 {
			t.Errorf("len(Items) = %d, want 2", len(result.Items))
		}
	})

	t.Run("oversized limit capped at max", func(t *testing.T) {
		result, err := engine.FeedForUser(ctx, "u1", 500)
		if err != nil {
			t.Fatalf("FeedForUser() error = %v", err)
		}
		if len(result.Items) != 2 {
			t.Errorf("len(Items) = %d, want 2", len(result.Items))
		}
	})
}

func TestEngine_FeedForUser_Errors(t *testing.T) {
	t.Run("no data provider", func(t *testing.T) {
		engine, err := NewEngine(nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		if _, err := engine.FeedForUser(context.Background(), "u1", 10); err == nil {
			t.Error("FeedForUser() error = nil, want error")
		}
	})

	t.Run("provider error propagates", func(t *testing.T) {
		engine, provider := newTestEngine(t, nil)
		provider.err = errors.New("store unavailable")

		if _, err := engine.FeedForUser(context.Background(), "u1", 10); err == nil {
			t.Error("FeedForUser() error = nil, want error")
		}
		if got := engine.GetMetrics().ErrorCount; got != 1 {
			t.Errorf("ErrorCount = %d, want 1", got)
		}
	})
}

func TestEngine_FeedForUser_DiversityEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Diversity.Enabled = true
	cfg.Diversity.MMRLambda = 0.5
	engine, provider := newTestEngine(t, cfg)

	// Two near-duplicate high scorers and one different item.
	provider.candidates = []Buzz{
		{ID: "m1", Interests: []Interest{"music"}, ContentType: ContentText},
		{ID: "m2", Interests: []Interest{"music"}, ContentType: ContentText},
		{ID: "g1", Interests: []Interest{"golf"}, ContentType: ContentText},
	}

	result, err := engine.FeedForUser(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("FeedForUser() error = %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(result.Items))
	}
	// The duplicate is pushed below the diverse item.
	if result.Items[0].ID != "m1" || result.Items[1].ID != "g1" {
		t.Errorf("order = %q,%q,%q, want m1,g1,m2",
			result.Items[0].ID, result.Items[1].ID, result.Items[2].ID)
	}
}

func TestEngine_SuggestUsers(t *testing.T) {
	engine, provider := newTestEngine(t, nil)
	provider.follows = []UserProfile{
		{ID: "c1", Email: "c1@buzz.it", Verified: true},
		{ID: "c2", Email: "c2@buzz.it", Verified: true},
		{ID: "c3"}, // no signals, filtered out
	}
	provider.contacts = []Contact{
		{Email: "c1@buzz.it"},
		{Email: "c2@buzz.it"},
	}

	t.Run("returns scored suggestions", func(t *testing.T) {
		recs, err := engine.SuggestUsers(context.Background(), "u1", 10)
		if err != nil {
			t.Fatalf("SuggestUsers() error = %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("len(recs) = %d, want 2", len(recs))
		}
		for _, rec := range recs {
			if rec.Score <= 0.3 {
				t.Errorf("rec %q score = %f, want > 0.3", rec.User.ID, rec.Score)
			}
			if len(rec.Reasons) == 0 {
				t.Errorf("rec %q has no reasons", rec.User.ID)
			}
		}
	})

	t.Run("k caps the result", func(t *testing.T) {
		recs, err := engine.SuggestUsers(context.Background(), "u1", 1)
		if err != nil {
			t.Fatalf("SuggestUsers() error = %v", err)
		}
		if len(recs) != 1 {
			t.Errorf("len(recs) = %d, want 1", len(recs))
		}
	})

	t.Run("provider error propagates", func(t *testing.T) {
		provider.err = errors.New("store unavailable")
		defer func() { provider.err = nil }()

		if _, err := engine.SuggestUsers(context.Background(), "u1", 10); err == nil {
			t.Error("SuggestUsers() error = nil, want error")
		}
	})
}

func TestEngine_ProfileForUser(t *testing.T) {
	engine, provider := newTestEngine(t, nil)
	provider.interactions = []Interaction{
		{Type: InteractionLike, Interests: []Interest{"music"}, ContentType: ContentImage,
			Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}

	profile, err := engine.ProfileForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileForUser() error = %v", err)
	}

	if got := profile.InterestScores["music"]; got != 1.0 {
		t.Errorf("InterestScores[music] = %f, want 1.0", got)
	}
	if got := profile.ContentTypeScores[ContentImage]; got != 1.0 {
		t.Errorf("ContentTypeScores[image] = %f, want 1.0", got)
	}
}

func TestEngine_InvalidateProfile(t *testing.T) {
	engine, provider := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := engine.ProfileForUser(ctx, "u1"); err != nil {
		t.Fatalf("ProfileForUser() error = %v", err)
	}
	engine.InvalidateProfile("u1")
	if _, err := engine.ProfileForUser(ctx, "u1"); err != nil {
		t.Fatalf("ProfileForUser() error = %v", err)
	}

	if got := provider.buzzCalls.Load(); got != 2 {
		t.Errorf("GetUserBuzzes calls = %d, want 2 after invalidation", got)
	}
}

func TestEngine_UpdateConfig(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	t.Run("valid update applies", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Limits.DefaultFeedLimit = 25
		if err := engine.UpdateConfig(cfg); err != nil {
			t.Fatalf("UpdateConfig() error = %v", err)
		}
		if got := engine.GetConfig().Limits.DefaultFeedLimit; got != 25 {
			t.Errorf("DefaultFeedLimit = %d, want 25", got)
		}
	})

	t.Run("invalid update rejected and old config kept", func(t *testing.T) {
		bad := DefaultConfig()
		bad.Diversity.MMRLambda = 7
		if err := engine.UpdateConfig(bad); err == nil {
			t.Fatal("UpdateConfig() error = nil, want error")
		}
		if got := engine.GetConfig().Limits.DefaultFeedLimit; got != 25 {
			t.Errorf("DefaultFeedLimit = %d, want 25 (previous update)", got)
		}
	})
}

func TestEngine_GetConfig_ReturnsCopy(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	cfg := engine.GetConfig()
	cfg.Limits.DefaultFeedLimit = 1

	if got := engine.GetConfig().Limits.DefaultFeedLimit; got != 50 {
		t.Errorf("DefaultFeedLimit = %d, want 50 (mutation leaked)", got)
	}
}

func TestEngine_ConcurrentConfigUpdates(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	// Feed requests, cache invalidations and config updates racing;
	// run under -race this exercises the cfgMu-guarded cache swap.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := engine.FeedForUser(ctx, "u1", 10); err != nil {
					t.Errorf("FeedForUser() error = %v", err)
					return
				}
				engine.InvalidateProfile("u1")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			cfg := DefaultConfig()
			cfg.Cache.Enabled = j%2 == 0
			if err := engine.UpdateConfig(cfg); err != nil {
				t.Errorf("UpdateConfig() error = %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if got := engine.GetMetrics().ErrorCount; got != 0 {
		t.Errorf("ErrorCount = %d, want 0", got)
	}
}

func TestEngine_GetMetrics(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := engine.FeedForUser(ctx, "u1", 10); err != nil {
		t.Fatalf("FeedForUser() error = %v", err)
	}
	if _, err := engine.SuggestUsers(ctx, "u1", 5); err != nil {
		t.Fatalf("SuggestUsers() error = %v", err)
	}

	m := engine.GetMetrics()
	if m.RequestCount != 2 {
		t.Errorf("RequestCount = %d, want 2", m.RequestCount)
	}
	if m.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", m.ErrorCount)
	}
}
