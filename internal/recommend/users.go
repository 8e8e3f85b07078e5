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

// Reason strings surfaced with follow suggestions, in signal order.
const (
	ReasonContact  = "In your contacts"
	ReasonSocial   = "Social connection"
	ReasonInterest = "Similar interests"
	ReasonLocation = "Nearby location"
	ReasonActive   = "Active user"
	ReasonVerified = "Verified account"
)

// UserRecommender scores candidate users for the "who to follow"
// surface. Stateless; safe for concurrent use.
type UserRecommender struct {
	weights UserWeights
	cfg     SuggestionsConfig
}

// NewUserRecommender creates a recommender with the given weights and
// thresholds.
func NewUserRecommender(weights UserWeights, cfg SuggestionsConfig) *UserRecommender {
	return &UserRecommender{weights: weights, cfg: cfg}
}

// Recommend scores every candidate against the target user and returns
// the survivors sorted descending by score, capped at the configured
// maximum. The target itself and already-followed users are never
// included, and every returned score exceeds the configured floor.
func (r *UserRecommender) Recommend(target UserProfile, candidates []UserProfile, contacts []Contact, connections []SocialConnection) []UserRecommendation {
	now := time.Now()

	subscribed := make(map[string]struct{}, len(target.Subscribed))
	for _, id := range target.Subscribed {
		subscribed[id] = struct{}{}
	}

	recs := make([]UserRecommendation, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ID == target.ID {
			continue
		}
		if _, following := subscribed[cand.ID]; following {
			continue
		}

		rec := r.scoreCandidate(target, cand, contacts, connections, now)
		if rec.Score <= r.cfg.MinScore {
			continue
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > r.cfg.MaxResults {
		recs = recs[:r.cfg.MaxResults]
	}
	return recs
}

// scoreCandidate accumulates the additive signals for one candidate.
// Reasons are collected in signal order, not by magnitude, and capped
// afterward.
func (r *UserRecommender) scoreCandidate(target, cand UserProfile, contacts []Contact, connections []SocialConnection, now time.Time) UserRecommendation {
	var score float64
	var reasons []string

	if matchesContact(cand, contacts) {
		score += r.weights.Contact
		reasons = append(reasons, ReasonContact)
	}

	if matchesConnection(cand, connections) {
		score += r.weights.Social
		reasons = append(reasons, ReasonSocial)
	}

	overlap := JaccardInterests(target.Interests, cand.Interests)
	score += r.weights.Interest * overlap
	if overlap > r.cfg.InterestReasonThreshold {
		reasons = append(reasons, ReasonInterest)
	}

	if target.Location != nil && cand.Location != nil {
		sim := LocationSimilarity(*target.Location, *cand.Location)
		score += r.weights.Location * sim
		if sim > r.cfg.LocationReasonThreshold {
			reasons = append(reasons, ReasonLocation)
		}
	}

	quality := EngagementQuality(cand, now)
	score += r.weights.Engagement * quality
	if quality > r.cfg.ActiveReasonThreshold {
		reasons = append(reasons, ReasonActive)
	}

	if cand.Verified {
		score += r.weights.Verified
		reasons = append(reasons, ReasonVerified)
	}

	if r.cfg.MaxReasons >= 0 && len(reasons) > r.cfg.MaxReasons {
		reasons = reasons[:r.cfg.MaxReasons]
	}

	return UserRecommendation{
		User:    cand,
		Score:   clampScore(score),
		Reasons: reasons,
	}
}

// matchesContact reports whether any uploaded contact refers to the
// candidate: equal email, equal phone, or a contact name containing the
// candidate's display name (case-insensitive).
func matchesContact(cand UserProfile, contacts []Contact) bool {
	for _, c := range contacts {
		if c.Email != "" && cand.Email != "" && strings.EqualFold(c.Email, cand.Email) {
			return true
		}
		if c.Phone != "" && cand.Mobile != "" && c.Phone == cand.Mobile {
			return true
		}
		if c.Name != "" && cand.DisplayName != "" &&
			strings.Contains(strings.ToLower(c.Name), strings.ToLower(cand.DisplayName)) {
			return true
		}
	}
	return false
}

// matchesConnection reports whether any linked social account refers to
// the candidate by user id or username.
func matchesConnection(cand UserProfile, connections []SocialConnection) bool {
	for _, conn := range connections {
		if conn.UserID != "" && conn.UserID == cand.ID {
			return true
		}
		if conn.Username != "" && strings.EqualFold(conn.Username, cand.DisplayName) {
			return true
		}
	}
	return false
}
