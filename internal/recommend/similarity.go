// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import (
	"sort"
	"strings"
	"time"
)

// JaccardInterests computes Jaccard similarity between two interest
// sets: |intersection| / |union|. Returns 0 if either set is empty.
func JaccardInterests(a, b []Interest) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[Interest]struct{}, len(a))
	for _, in := range a {
		setA[in] = struct{}{}
	}

	setB := make(map[Interest]struct{}, len(b))
	for _, in := range b {
		setB[in] = struct{}{}
	}

	intersection := 0
	for in := range setA {
		if _, ok := setB[in]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// LocationSimilarity scores how close two locations are:
// same city 1.0, same country but different city 0.5, everything else
// (including missing city or country data) 0.1. A missing city on
// either side falls to the 0.1 floor even when the countries match.
// Callers that have no location on either side should skip the term
// entirely rather than calling this.
func LocationSimilarity(a, b Location) float64 {
	if a.City == "" || b.City == "" {
		return 0.1
	}
	if strings.EqualFold(a.City, b.City) {
		return 1.0
	}
	if a.Country != "" && b.Country != "" && strings.EqualFold(a.Country, b.Country) {
		return 0.5
	}
	return 0.1
}

// EngagementQuality scores how established and active an account is,
// in [0, 1]. Blends posting volume, audience size, verification and
// account age with saturating caps so no single counter dominates.
func EngagementQuality(u UserProfile, now time.Time) float64 {
	score := 0.4 * capRatio(float64(u.BuzzCount), 100)
	score += 0.3 * capRatio(float64(u.FollowerCount), 1000)
	if u.Verified {
		score += 0.2
	}

	if !u.CreatedAt.IsZero() {
		ageDays := now.Sub(u.CreatedAt).Hours() / 24
		score += 0.1 * capRatio(ageDays, 365)
	}

	return clampScore(score)
}

// capRatio returns min(value/limit, 1), treating negatives as 0.
func capRatio(value, limit float64) float64 {
	if value <= 0 {
		return 0
	}
	if value >= limit {
		return 1
	}
	return value / limit
}

// clampScore caps a score at 1.0. Partial scores are never negative,
// so only the upper bound needs guarding.
func clampScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	return s
}

// counted is a key with its tally, used for top-N selection.
type counted[K string | int] struct {
	key   K
	count int
}

// topKeys returns the up-to-n highest-count keys from a tally.
// Ties break deterministically: descending count, then ascending key.
func topKeys[K string | int](tally map[K]int, n int) []K {
	if len(tally) == 0 || n <= 0 {
		return nil
	}

	entries := make([]counted[K], 0, len(tally))
	for k, c := range tally {
		entries = append(entries, counted[K]{key: k, count: c})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}
