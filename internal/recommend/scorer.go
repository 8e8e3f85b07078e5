// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import "sort"

// ContentScorer computes relevance scores for buzzes against a
// preference profile. Stateless; safe for concurrent use.
type ContentScorer struct {
	weights ContentWeights
	boost   EngagementBoostConfig
}

// NewContentScorer creates a scorer with the given weights.
func NewContentScorer(weights ContentWeights, boost EngagementBoostConfig) *ContentScorer {
	return &ContentScorer{weights: weights, boost: boost}
}

// Score computes the relevance of a buzz for a viewer, in [0, 1].
// viewerLoc may be nil; the location term then contributes 0.
// Every partial score is non-negative, so only the cap needs guarding.
func (s *ContentScorer) Score(buzz Buzz, profile PreferenceProfile, viewerLoc *Location) float64 {
	score := s.weights.Interest * interestMatch(buzz.Interests, profile.InterestScores)

	if viewerLoc != nil && buzz.Location != nil {
		score += s.weights.Location * LocationSimilarity(*viewerLoc, *buzz.Location)
	}

	score += s.weights.ContentType * profile.ContentTypeScores[buzz.ContentType]
	score += s.weights.Engagement * s.engagementBoost(buzz.ContentType, profile.EngagementPatterns)

	return clampScore(score)
}

// interestMatch averages the profile's affinity over the buzz's tags,
// treating missing entries as 0. Untagged content scores 0.
func interestMatch(tags []Interest, affinities map[Interest]float64) float64 {
	if len(tags) == 0 {
		return 0
	}

	var sum float64
	for _, tag := range tags {
		sum += affinities[tag]
	}
	return sum / float64(len(tags))
}

// engagementBoost is a small heuristic bonus for content types the
// viewer engages heavily with.
func (s *ContentScorer) engagementBoost(t ContentType, patterns EngagementPatterns) float64 {
	switch {
	case t == ContentVideo && patterns.DailyShares > s.boost.VideoShareRate:
		return s.boost.VideoShareBonus
	case t == ContentImage && patterns.DailyLikes > s.boost.ImageLikeRate:
		return s.boost.ImageLikeBonus
	default:
		return s.boost.DefaultBonus
	}
}

// RankFeed scores every candidate against the profile, sorts descending
// by score and returns the buzzes only, truncated to limit. The sort is
// stable: ties preserve candidate order. limit <= 0 falls back to the
// caller's default upstream; here it yields an empty feed.
func (s *ContentScorer) RankFeed(candidates []Buzz, profile PreferenceProfile, viewerLoc *Location, limit int) []Buzz {
	if len(candidates) == 0 || limit <= 0 {
		return []Buzz{}
	}

	scored := make([]ScoredBuzz, len(candidates))
	for i, b := range candidates {
		scored[i] = ScoredBuzz{Buzz: b, Score: s.Score(b, profile, viewerLoc)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	feed := make([]Buzz, len(scored))
	for i, sb := range scored {
		feed[i] = sb.Buzz
	}
	return feed
}

// rankScored is RankFeed keeping the scores, for rerankers that need
// relevance alongside the items.
func (s *ContentScorer) rankScored(candidates []Buzz, profile PreferenceProfile, viewerLoc *Location, limit int) []ScoredBuzz {
	if len(candidates) == 0 || limit <= 0 {
		return []ScoredBuzz{}
	}

	scored := make([]ScoredBuzz, len(candidates))
	for i, b := range candidates {
		scored[i] = ScoredBuzz{Buzz: b, Score: s.Score(b, profile, viewerLoc)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
