// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/buzzit/buzzrank/internal/cache"
)

// Note: beyond the cache package, this package has no dependencies on
// other internal packages. The DataProvider interface allows
// integration with the store without creating circular imports.

// Engine coordinates profile building, content scoring and user
// recommendation. Scoring itself is pure; the engine adds data access,
// profile caching and observability. Safe for concurrent use.
type Engine struct {
	logger zerolog.Logger

	// cfgMu guards cfg and the components applyConfig derives from it,
	// including the profile cache, which UpdateConfig replaces wholesale.
	cfgMu sync.RWMutex
	cfg   *Config

	scorer      *ContentScorer
	recommender *UserRecommender

	dataProvider DataProvider

	profileCache *cache.LRU[PreferenceProfile]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		logger: logger.With().Str("component", "recommend").Logger(),
		cfg:    cfg,
	}
	e.applyConfig(cfg)
	return e, nil
}

// SetDataProvider sets the data provider for fetching scoring inputs.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// applyConfig rebuilds the derived components from cfg.
// Must be called with cfgMu held (or before the engine is shared).
func (e *Engine) applyConfig(cfg *Config) {
	e.scorer = NewContentScorer(cfg.ContentWeights, cfg.EngagementBoost)
	e.recommender = NewUserRecommender(cfg.UserWeights, cfg.Suggestions)
	if cfg.Cache.Enabled {
		e.profileCache = cache.NewLRU[PreferenceProfile](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	} else {
		e.profileCache = nil
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg.Clone()
}

// UpdateConfig replaces the engine configuration after validation.
// Cached profiles are dropped since weights may have changed what the
// caller does with them.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	e.cfg = cfg.Clone()
	e.applyConfig(e.cfg)
	e.logger.Info().Msg("configuration updated")
	return nil
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() EngineMetrics {
	return EngineMetrics{
		RequestCount:       e.requestCount.Load(),
		ProfileCacheHits:   e.cacheHits.Load(),
		ProfileCacheMisses: e.cacheMisses.Load(),
		ErrorCount:         e.errorCount.Load(),
	}
}

// FeedForUser builds (or reuses) the user's preference profile, scores
// the candidate buzzes and returns the ranked feed. limit <= 0 uses the
// configured default; larger values are capped at the configured max.
func (e *Engine) FeedForUser(ctx context.Context, userID string, limit int) (*FeedResult, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("data provider not set")
	}

	e.cfgMu.RLock()
	cfg := e.cfg
	scorer := e.scorer
	profileCache := e.profileCache
	e.cfgMu.RUnlock()

	if limit <= 0 {
		limit = cfg.Limits.DefaultFeedLimit
	}
	if limit > cfg.Limits.MaxFeedLimit {
		limit = cfg.Limits.MaxFeedLimit
	}

	requestID := uuid.New().String()
	logger := e.logger.With().
		Str("request_id", requestID).
		Str("user_id", userID).
		Logger()

	user, profile, cacheHit, err := e.profileFor(ctx, userID, cfg, profileCache)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	candidates, err := e.dataProvider.GetFeedCandidates(ctx, userID, cfg.Limits.MaxCandidates)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get feed candidates: %w", err)
	}

	items := e.rankCandidates(scorer, cfg, candidates, profile, user.Location, limit)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(items)).
		Bool("profile_cache_hit", cacheHit).
		Msg("feed ranked")

	return &FeedResult{
		Items:           items,
		TotalCandidates: len(candidates),
		Metadata: ResultMetadata{
			RequestID:       requestID,
			UserID:          userID,
			LatencyMS:       time.Since(start).Milliseconds(),
			ProfileCacheHit: cacheHit,
			Timestamp:       time.Now(),
		},
	}, nil
}

// rankCandidates runs the scorer and, when enabled, MMR reranking.
func (e *Engine) rankCandidates(scorer *ContentScorer, cfg *Config, candidates []Buzz, profile PreferenceProfile, viewerLoc *Location, limit int) []Buzz {
	if !cfg.Diversity.Enabled {
		return scorer.RankFeed(candidates, profile, viewerLoc, limit)
	}

	scored := scorer.rankScored(candidates, profile, viewerLoc, limit)
	scored = mmrRerank(scored, cfg.Diversity.MMRLambda, limit)

	items := make([]Buzz, len(scored))
	for i, sb := range scored {
		items[i] = sb.Buzz
	}
	return items
}

// SuggestUsers returns up to k follow suggestions for the user.
// k <= 0 or beyond the configured cap falls back to the cap.
func (e *Engine) SuggestUsers(ctx context.Context, userID string, k int) ([]UserRecommendation, error) {
	e.requestCount.Add(1)

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("data provider not set")
	}

	e.cfgMu.RLock()
	cfg := e.cfg
	recommender := e.recommender
	e.cfgMu.RUnlock()

	target, err := e.dataProvider.GetUser(ctx, userID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get user: %w", err)
	}

	candidates, err := e.dataProvider.GetFollowCandidates(ctx, userID, cfg.Limits.MaxCandidates)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get follow candidates: %w", err)
	}

	contacts, err := e.dataProvider.GetContacts(ctx, userID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get contacts: %w", err)
	}

	connections, err := e.dataProvider.GetSocialConnections(ctx, userID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get social connections: %w", err)
	}

	recs := recommender.Recommend(*target, candidates, contacts, connections)
	if k > 0 && k < len(recs) {
		recs = recs[:k]
	}
	return recs, nil
}

// ProfileForUser exposes the derived preference profile, e.g. for
// caller-side caching.
func (e *Engine) ProfileForUser(ctx context.Context, userID string) (*PreferenceProfile, error) {
	e.requestCount.Add(1)

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("data provider not set")
	}

	e.cfgMu.RLock()
	cfg := e.cfg
	profileCache := e.profileCache
	e.cfgMu.RUnlock()

	_, profile, _, err := e.profileFor(ctx, userID, cfg, profileCache)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	return &profile, nil
}

// InvalidateProfile drops a user's cached profile, e.g. after an
// interaction burst the caller wants reflected immediately.
func (e *Engine) InvalidateProfile(userID string) {
	e.cfgMu.RLock()
	profileCache := e.profileCache
	e.cfgMu.RUnlock()

	if profileCache != nil {
		profileCache.Remove(userID)
	}
}

// profileFor fetches the user plus the inputs needed to build their
// preference profile, consulting the cache first. The cache pointer is
// captured by the caller under cfgMu so a concurrent UpdateConfig
// cannot swap it mid-request.
func (e *Engine) profileFor(ctx context.Context, userID string, cfg *Config, profileCache *cache.LRU[PreferenceProfile]) (*UserProfile, PreferenceProfile, bool, error) {
	user, err := e.dataProvider.GetUser(ctx, userID)
	if err != nil {
		return nil, PreferenceProfile{}, false, fmt.Errorf("get user: %w", err)
	}

	if profileCache != nil {
		if profile, ok := profileCache.Get(userID); ok {
			e.cacheHits.Add(1)
			return user, profile, true, nil
		}
		e.cacheMisses.Add(1)
	}

	history, err := e.dataProvider.GetUserBuzzes(ctx, userID, cfg.Limits.MaxHistory)
	if err != nil {
		return nil, PreferenceProfile{}, false, fmt.Errorf("get user buzzes: %w", err)
	}

	interactions, err := e.dataProvider.GetUserInteractions(ctx, userID, cfg.Limits.MaxHistory)
	if err != nil {
		return nil, PreferenceProfile{}, false, fmt.Errorf("get user interactions: %w", err)
	}

	profile := BuildProfile(*user, history, interactions)

	if profileCache != nil {
		profileCache.Add(userID, profile)
	}
	return user, profile, false, nil
}
