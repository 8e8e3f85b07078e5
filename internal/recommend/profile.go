// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import "time"

// Profile building constants.
const (
	// topCityCount is how many cities the location preference keeps.
	topCityCount = 5

	// topHourCount is how many peak hours are kept.
	topHourCount = 3

	// topDayCount is how many preferred days-of-week are kept.
	topDayCount = 3
)

// BuildProfile derives a user's preference profile from their declared
// interests, posted content and interaction history. It is a pure
// function: identical inputs always produce an identical profile, and
// empty inputs degrade to a zero-valued profile rather than failing.
func BuildProfile(user UserProfile, history []Buzz, interactions []Interaction) PreferenceProfile {
	now := time.Now()
	return buildProfileAt(user, history, interactions, now)
}

// buildProfileAt is the clock-injected implementation of BuildProfile.
func buildProfileAt(user UserProfile, history []Buzz, interactions []Interaction, now time.Time) PreferenceProfile {
	return PreferenceProfile{
		InterestScores:     buildInterestScores(user.Interests, interactions),
		LocationPreference: buildLocationPreference(user, history),
		ContentTypeScores:  buildContentTypeScores(interactions),
		EngagementPatterns: buildEngagementPatterns(interactions, now),
		TimePreferences:    buildTimePreferences(interactions, now),
	}
}

// buildInterestScores seeds each declared interest at 1.0, boosts
// interests tagged on interacted content per interaction type, then
// normalizes by the maximum accumulated score. The denominator floors
// at 1 so a history of weak signals never inflates affinities, and the
// result is clamped to 1.
func buildInterestScores(declared []Interest, interactions []Interaction) map[Interest]float64 {
	scores := make(map[Interest]float64, len(declared))

	for _, in := range declared {
		scores[in] = 1.0
	}

	for _, inter := range interactions {
		boost := inter.Type.InterestBoost()
		for _, in := range inter.Interests {
			scores[in] += boost
		}
	}

	maxScore := 1.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	for in, s := range scores {
		scores[in] = clampScore(s / maxScore)
	}

	return scores
}

// buildLocationPreference counts city occurrences across the user's
// posted content and keeps the five most frequent, plus the user's
// declared city.
func buildLocationPreference(user UserProfile, history []Buzz) LocationPreference {
	cityCounts := make(map[string]int)
	for _, b := range history {
		if b.Location != nil && b.Location.City != "" {
			cityCounts[b.Location.City]++
		}
	}

	pref := LocationPreference{
		TopCities: topKeys(cityCounts, topCityCount),
	}
	if user.Location != nil {
		pref.CurrentCity = user.Location.City
	}
	return pref
}

// buildContentTypeScores tallies weighted interactions per recognized
// content type and normalizes the four counts by their total. With no
// weighted interactions all four stay 0.
func buildContentTypeScores(interactions []Interaction) map[ContentType]float64 {
	scores := map[ContentType]float64{
		ContentText:  0,
		ContentImage: 0,
		ContentVideo: 0,
		ContentAudio: 0,
	}

	var total float64
	for _, inter := range interactions {
		if !inter.ContentType.Recognized() {
			continue
		}
		w := inter.Type.TypeWeight()
		scores[inter.ContentType] += w
		total += w
	}

	if total > 0 {
		for t := range scores {
			scores[t] /= total
		}
	}

	return scores
}

// buildEngagementPatterns groups interactions by calendar day to get a
// distinct-days-active count (floor 1), turns per-type totals into
// daily rates, and keeps the three busiest hours-of-day.
func buildEngagementPatterns(interactions []Interaction, now time.Time) EngagementPatterns {
	days := make(map[string]struct{})
	var likes, comments, shares float64

	for _, inter := range interactions {
		ts := interactionTime(inter, now)
		days[ts.Format("2006-01-02")] = struct{}{}

		switch inter.Type {
		case InteractionLike:
			likes++
		case InteractionComment:
			comments++
		case InteractionShare:
			shares++
		}
	}

	activeDays := float64(len(days))
	if activeDays < 1 {
		activeDays = 1
	}

	return EngagementPatterns{
		DailyLikes:    likes / activeDays,
		DailyComments: comments / activeDays,
		DailyShares:   shares / activeDays,
		ActiveHours:   topKeys(hourTally(interactions, now), topHourCount),
	}
}

// buildTimePreferences computes peak hours and preferred days-of-week.
// The hour tally intentionally mirrors the one in engagement patterns;
// the two surfaces are consumed by different callers and are kept as
// separately exposed outputs.
func buildTimePreferences(interactions []Interaction, now time.Time) TimePreferences {
	dayTally := make(map[int]int)
	for _, inter := range interactions {
		ts := interactionTime(inter, now)
		dayTally[int(ts.Weekday())]++
	}

	return TimePreferences{
		PeakHours:     topKeys(hourTally(interactions, now), topHourCount),
		PreferredDays: topKeys(dayTally, topDayCount),
	}
}

// hourTally counts interactions per hour-of-day (0-23).
func hourTally(interactions []Interaction, now time.Time) map[int]int {
	tally := make(map[int]int)
	for _, inter := range interactions {
		tally[interactionTime(inter, now).Hour()]++
	}
	return tally
}

// interactionTime returns the interaction's timestamp, defaulting to
// now when absent.
func interactionTime(inter Interaction, now time.Time) time.Time {
	if inter.Timestamp.IsZero() {
		return now
	}
	return inter.Timestamp
}
