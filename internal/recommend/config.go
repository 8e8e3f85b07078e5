// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// ContentWeights defines the contribution of each partial score to
	// content relevance.
	ContentWeights ContentWeights `json:"content_weights"`

	// UserWeights defines the contribution of each signal to follow
	// suggestions.
	UserWeights UserWeights `json:"user_weights"`

	// EngagementBoost contains the heuristic content-scorer bonuses.
	EngagementBoost EngagementBoostConfig `json:"engagement_boost"`

	// Suggestions contains follow-suggestion limits and thresholds.
	Suggestions SuggestionsConfig `json:"suggestions"`

	// Diversity contains parameters for diversity reranking.
	Diversity DiversityConfig `json:"diversity"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains profile-cache parameters.
	Cache CacheConfig `json:"cache"`
}

// ContentWeights defines the contribution of each partial score to the
// final content relevance score. The defaults are the production
// weights; they are held fixed rather than normalized so a single
// overridden weight does not silently rescale the others.
type ContentWeights struct {
	// Interest is the weight of interest-tag affinity.
	// Default: 0.4.
	Interest float64 `json:"interest"`

	// Location is the weight of location proximity.
	// Default: 0.2.
	Location float64 `json:"location"`

	// ContentType is the weight of content-type affinity.
	// Default: 0.2.
	ContentType float64 `json:"content_type"`

	// Engagement is the weight of the engagement-history boost.
	// Applied exactly once. Default: 0.2.
	Engagement float64 `json:"engagement"`
}

// UserWeights defines the additive contribution of each signal when
// scoring follow-suggestion candidates.
type UserWeights struct {
	// Contact is the flat bonus for an address-book match.
	// Default: 0.3.
	Contact float64 `json:"contact"`

	// Social is the flat bonus for a linked social-account match.
	// Default: 0.3.
	Social float64 `json:"social"`

	// Interest scales the Jaccard interest overlap.
	// Default: 0.25.
	Interest float64 `json:"interest"`

	// Location scales the location-similarity score.
	// Default: 0.2.
	Location float64 `json:"location"`

	// Engagement scales the candidate's engagement-quality score.
	// Default: 0.15.
	Engagement float64 `json:"engagement"`

	// Verified is the flat bonus for a verified account.
	// Default: 0.1.
	Verified float64 `json:"verified"`
}

// EngagementBoostConfig contains the heuristic bonuses the content
// scorer applies based on the viewer's engagement patterns.
type EngagementBoostConfig struct {
	// VideoShareBonus applies when content is video and the viewer's
	// daily share rate exceeds VideoShareRate. Default: 0.3.
	VideoShareBonus float64 `json:"video_share_bonus"`

	// VideoShareRate is the daily share-rate threshold. Default: 0.5.
	VideoShareRate float64 `json:"video_share_rate"`

	// ImageLikeBonus applies when content is an image and the viewer's
	// daily like rate exceeds ImageLikeRate. Default: 0.2.
	ImageLikeBonus float64 `json:"image_like_bonus"`

	// ImageLikeRate is the daily like-rate threshold. Default: 1.0.
	ImageLikeRate float64 `json:"image_like_rate"`

	// DefaultBonus applies when neither condition holds. Default: 0.1.
	DefaultBonus float64 `json:"default_bonus"`
}

// SuggestionsConfig contains follow-suggestion limits and thresholds.
type SuggestionsConfig struct {
	// MinScore is the exclusive score floor; candidates at or below it
	// are discarded. Default: 0.3.
	MinScore float64 `json:"min_score"`

	// MaxResults caps the number of suggestions returned.
	// Default: 20.
	MaxResults int `json:"max_results"`

	// MaxReasons caps the reason strings per suggestion.
	// Default: 3.
	MaxReasons int `json:"max_reasons"`

	// InterestReasonThreshold is the overlap above which "Similar
	// interests" is reported. Default: 0.5.
	InterestReasonThreshold float64 `json:"interest_reason_threshold"`

	// LocationReasonThreshold is the similarity above which "Nearby
	// location" is reported. Default: 0.5.
	LocationReasonThreshold float64 `json:"location_reason_threshold"`

	// ActiveReasonThreshold is the engagement quality above which
	// "Active user" is reported. Default: 0.7.
	ActiveReasonThreshold float64 `json:"active_reason_threshold"`
}

// DiversityConfig contains parameters for MMR diversity reranking of
// the feed. Disabled by default; when enabled the feed trades a little
// relevance ordering for topical spread.
type DiversityConfig struct {
	// Enabled turns diversity reranking on.
	// Default: false.
	Enabled bool `json:"enabled"`

	// MMRLambda balances relevance vs. diversity.
	// 1.0 = pure relevance, 0.0 = pure diversity. Default: 0.7.
	MMRLambda float64 `json:"mmr_lambda"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultFeedLimit is the feed size when the caller passes none.
	// Default: 50.
	DefaultFeedLimit int `json:"default_feed_limit"`

	// MaxFeedLimit is the maximum allowed feed size.
	// Default: 200.
	MaxFeedLimit int `json:"max_feed_limit"`

	// MaxCandidates is the maximum number of candidates fetched for a
	// single ranking call. Bounds per-call cost, which is linear in the
	// candidate count. Default: 1000.
	MaxCandidates int `json:"max_candidates"`

	// MaxHistory is the maximum number of posted buzzes and
	// interactions fetched when building a profile. Default: 500.
	MaxHistory int `json:"max_history"`
}

// CacheConfig contains profile-cache parameters. Caching only affects
// latency; a cached profile is identical to a recomputed one until the
// underlying history changes.
type CacheConfig struct {
	// Enabled controls whether profile caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cached-profile time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached profiles.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		ContentWeights: ContentWeights{
			Interest:    0.4,
			Location:    0.2,
			ContentType: 0.2,
			Engagement:  0.2,
		},
		UserWeights: UserWeights{
			Contact:    0.3,
			Social:     0.3,
			Interest:   0.25,
			Location:   0.2,
			Engagement: 0.15,
			Verified:   0.1,
		},
		EngagementBoost: EngagementBoostConfig{
			VideoShareBonus: 0.3,
			VideoShareRate:  0.5,
			ImageLikeBonus:  0.2,
			ImageLikeRate:   1.0,
			DefaultBonus:    0.1,
		},
		Suggestions: SuggestionsConfig{
			MinScore:                0.3,
			MaxResults:              20,
			MaxReasons:              3,
			InterestReasonThreshold: 0.5,
			LocationReasonThreshold: 0.5,
			ActiveReasonThreshold:   0.7,
		},
		Diversity: DiversityConfig{
			Enabled:   false,
			MMRLambda: 0.7,
		},
		Limits: LimitsConfig{
			DefaultFeedLimit: 50,
			MaxFeedLimit:     200,
			MaxCandidates:    1000,
			MaxHistory:       500,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"content_weights.interest", c.ContentWeights.Interest},
		{"content_weights.location", c.ContentWeights.Location},
		{"content_weights.content_type", c.ContentWeights.ContentType},
		{"content_weights.engagement", c.ContentWeights.Engagement},
		{"user_weights.contact", c.UserWeights.Contact},
		{"user_weights.social", c.UserWeights.Social},
		{"user_weights.interest", c.UserWeights.Interest},
		{"user_weights.location", c.UserWeights.Location},
		{"user_weights.engagement", c.UserWeights.Engagement},
		{"user_weights.verified", c.UserWeights.Verified},
	} {
		if w.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", w.name, w.value)
		}
	}

	if c.Suggestions.MinScore < 0 || c.Suggestions.MinScore >= 1 {
		return fmt.Errorf("suggestions.min_score must be in [0, 1), got %f", c.Suggestions.MinScore)
	}
	if c.Suggestions.MaxResults < 1 {
		return fmt.Errorf("suggestions.max_results must be positive, got %d", c.Suggestions.MaxResults)
	}
	if c.Suggestions.MaxReasons < 0 {
		return fmt.Errorf("suggestions.max_reasons must be non-negative, got %d", c.Suggestions.MaxReasons)
	}

	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("diversity.mmr_lambda must be in [0, 1], got %f", c.Diversity.MMRLambda)
	}

	if c.Limits.DefaultFeedLimit < 1 {
		return fmt.Errorf("limits.default_feed_limit must be positive, got %d", c.Limits.DefaultFeedLimit)
	}
	if c.Limits.MaxFeedLimit < c.Limits.DefaultFeedLimit {
		return fmt.Errorf("limits.max_feed_limit must be >= limits.default_feed_limit, got %d < %d",
			c.Limits.MaxFeedLimit, c.Limits.DefaultFeedLimit)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.MaxHistory < 1 {
		return fmt.Errorf("limits.max_history must be positive, got %d", c.Limits.MaxHistory)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	cp := *c
	return &cp
}
