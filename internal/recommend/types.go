// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package recommend

import (
	"context"
	"time"
)

// Interest is a tagged topic identifier used for personalization
// (e.g. "music", "technology"). Upstream payloads sometimes carry
// interests as objects with an id field; the store normalizes them
// to this single typed identifier before they reach the engine.
type Interest string

// ContentType classifies a buzz by its primary medium.
type ContentType string

const (
	// ContentText is a plain text buzz.
	ContentText ContentType = "text"
	// ContentImage is a buzz with an attached image.
	ContentImage ContentType = "image"
	// ContentVideo is a buzz with an attached video.
	ContentVideo ContentType = "video"
	// ContentAudio is a buzz with an attached audio clip.
	ContentAudio ContentType = "audio"
)

// Recognized reports whether the content type is one the scorer
// understands. Unrecognized types contribute nothing to content-type
// affinity rather than being an error.
func (t ContentType) Recognized() bool {
	switch t {
	case ContentText, ContentImage, ContentVideo, ContentAudio:
		return true
	default:
		return false
	}
}

// InteractionType classifies a user's engagement with a buzz.
type InteractionType int

const (
	// InteractionView indicates the buzz was viewed.
	InteractionView InteractionType = iota
	// InteractionLike indicates the buzz was liked.
	InteractionLike
	// InteractionComment indicates the user commented on the buzz.
	InteractionComment
	// InteractionShare indicates the buzz was shared.
	InteractionShare
)

// String returns a human-readable name for the interaction type.
func (t InteractionType) String() string {
	switch t {
	case InteractionLike:
		return "like"
	case InteractionComment:
		return "comment"
	case InteractionShare:
		return "share"
	case InteractionView:
		return "view"
	default:
		return "unknown"
	}
}

// InterestBoost returns the affinity boost an interaction of this type
// adds to each interest tagged on the interacted content. Views and
// unrecognized types fall back to the weakest positive signal.
func (t InteractionType) InterestBoost() float64 {
	switch t {
	case InteractionLike:
		return 0.3
	case InteractionComment:
		return 0.5
	case InteractionShare:
		return 0.7
	default:
		return 0.1
	}
}

// TypeWeight returns the weight an interaction contributes to
// content-type affinity tallies. Views carry no weight.
func (t InteractionType) TypeWeight() float64 {
	switch t {
	case InteractionLike:
		return 1
	case InteractionComment:
		return 2
	case InteractionShare:
		return 3
	default:
		return 0
	}
}

// Location is an optional city/country pair attached to users and buzzes.
type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Engagement holds the aggregate interaction counters on a buzz.
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Views    int `json:"views"`
}

// Media is an optional attachment on a buzz.
type Media struct {
	Type ContentType `json:"type"`
	URL  string      `json:"url"`
}

// Buzz is a user-authored content post. Immutable from the engine's
// perspective; the engine never writes back to it.
type Buzz struct {
	// ID is the unique buzz identifier.
	ID string `json:"id"`

	// AuthorID is the posting user's identifier.
	AuthorID string `json:"author_id"`

	// Content is the free-text body.
	Content string `json:"content"`

	// Media is the optional attachment.
	Media *Media `json:"media,omitempty"`

	// Interests are the topic tags on the buzz.
	Interests []Interest `json:"interests,omitempty"`

	// Location is the optional geotag.
	Location *Location `json:"location,omitempty"`

	// ContentType is the buzz medium (text/image/video/audio).
	ContentType ContentType `json:"content_type"`

	// CreatedAt is when the buzz was posted.
	CreatedAt time.Time `json:"created_at"`

	// Engagement holds the current interaction counters.
	Engagement Engagement `json:"engagement"`
}

// UserProfile is the read-only view of a user the engine scores with.
// Owned by the user-management subsystem.
type UserProfile struct {
	// ID is the unique user identifier.
	ID string `json:"id"`

	// DisplayName is the user-facing name.
	DisplayName string `json:"display_name"`

	// Email is the account email, used for contact matching.
	Email string `json:"email,omitempty"`

	// Mobile is the account phone number, used for contact matching.
	Mobile string `json:"mobile,omitempty"`

	// Interests are the user's declared interest tags.
	Interests []Interest `json:"interests,omitempty"`

	// Location is the user's declared city/country.
	Location *Location `json:"location,omitempty"`

	// Subscribed lists the user ids this user already follows.
	Subscribed []string `json:"subscribed,omitempty"`

	// Verified indicates a verified account.
	Verified bool `json:"verified"`

	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// BuzzCount is the number of buzzes the user has posted.
	BuzzCount int `json:"buzz_count"`

	// FollowerCount is the number of followers.
	FollowerCount int `json:"follower_count"`
}

// Interaction is a single append-only engagement event. The interests
// and content type of the interacted buzz are denormalized onto the
// event so profile building needs no extra lookups.
type Interaction struct {
	// UserID is the interacting user.
	UserID string `json:"user_id"`

	// BuzzID is the interacted buzz.
	BuzzID string `json:"buzz_id"`

	// Type classifies the interaction.
	Type InteractionType `json:"type"`

	// Timestamp is when the interaction occurred. Zero means "now".
	Timestamp time.Time `json:"timestamp"`

	// Interests are the interacted buzz's topic tags.
	Interests []Interest `json:"interests,omitempty"`

	// ContentType is the interacted buzz's medium.
	ContentType ContentType `json:"content_type,omitempty"`
}

// LocationPreference summarizes where a user's content activity happens.
type LocationPreference struct {
	// TopCities are the most frequent cities across the user's content
	// history, highest count first.
	TopCities []string `json:"top_cities,omitempty"`

	// CurrentCity is the user's declared city, if any.
	CurrentCity string `json:"current_city,omitempty"`
}

// EngagementPatterns summarizes how actively a user engages per day.
type EngagementPatterns struct {
	// DailyLikes is the average number of likes per active day.
	DailyLikes float64 `json:"daily_likes"`

	// DailyComments is the average number of comments per active day.
	DailyComments float64 `json:"daily_comments"`

	// DailyShares is the average number of shares per active day.
	DailyShares float64 `json:"daily_shares"`

	// ActiveHours are the three hours-of-day (0-23) with the most
	// interactions.
	ActiveHours []int `json:"active_hours,omitempty"`
}

// TimePreferences summarizes when a user is most active.
type TimePreferences struct {
	// PeakHours are the three busiest hours-of-day (0-23).
	PeakHours []int `json:"peak_hours,omitempty"`

	// PreferredDays are the three busiest days-of-week (0=Sunday).
	PreferredDays []int `json:"preferred_days,omitempty"`
}

// PreferenceProfile is the derived, ephemeral summary of a user's
// tastes. It is a pure function of its inputs, recomputed per request,
// and carries no identity beyond the call that produced it.
type PreferenceProfile struct {
	// InterestScores maps interest to normalized affinity in [0, 1].
	InterestScores map[Interest]float64 `json:"interest_scores"`

	// LocationPreference holds the user's top cities and current city.
	LocationPreference LocationPreference `json:"location_preference"`

	// ContentTypeScores maps content type to normalized affinity.
	// Values sum to 1 when any weighted interaction exists, else all 0.
	ContentTypeScores map[ContentType]float64 `json:"content_type_scores"`

	// EngagementPatterns holds per-day engagement rates and active hours.
	EngagementPatterns EngagementPatterns `json:"engagement_patterns"`

	// TimePreferences holds peak hours and preferred days.
	TimePreferences TimePreferences `json:"time_preferences"`
}

// ScoredBuzz pairs a buzz with its relevance score.
type ScoredBuzz struct {
	Buzz  Buzz    `json:"buzz"`
	Score float64 `json:"score"`
}

// UserRecommendation is a "who to follow" candidate with its score and
// up to three human-readable reasons, strongest signal first.
type UserRecommendation struct {
	User    UserProfile `json:"user"`
	Score   float64     `json:"score"`
	Reasons []string    `json:"reasons,omitempty"`
}

// Contact is an address-book entry used for contact matching.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SocialConnection is a linked social-network account reference.
type SocialConnection struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// FeedResult is a ranked feed plus diagnostic metadata.
type FeedResult struct {
	// Items is the ranked feed, best first.
	Items []Buzz `json:"items"`

	// TotalCandidates is the number of buzzes considered.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata contains timing and diagnostic information.
type ResultMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the result is for.
	UserID string `json:"user_id"`

	// LatencyMS is the total computation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// ProfileCacheHit indicates the preference profile came from cache.
	ProfileCacheHit bool `json:"profile_cache_hit"`

	// Timestamp is when the result was generated.
	Timestamp time.Time `json:"timestamp"`
}

// DataProvider defines the interface for fetching scoring inputs.
// This is typically implemented by the store layer; the engine keeps no
// dependency on it beyond this seam.
type DataProvider interface {
	// GetUser returns the user's profile.
	GetUser(ctx context.Context, userID string) (*UserProfile, error)

	// GetUserBuzzes returns buzzes the user has posted, newest first.
	GetUserBuzzes(ctx context.Context, userID string, limit int) ([]Buzz, error)

	// GetUserInteractions returns the user's interaction history.
	GetUserInteractions(ctx context.Context, userID string, limit int) ([]Interaction, error)

	// GetFeedCandidates returns candidate buzzes for the user's feed,
	// excluding the user's own buzzes.
	GetFeedCandidates(ctx context.Context, userID string, limit int) ([]Buzz, error)

	// GetFollowCandidates returns candidate users for follow suggestions.
	GetFollowCandidates(ctx context.Context, userID string, limit int) ([]UserProfile, error)

	// GetContacts returns the user's uploaded address-book contacts.
	GetContacts(ctx context.Context, userID string) ([]Contact, error)

	// GetSocialConnections returns the user's linked social accounts.
	GetSocialConnections(ctx context.Context, userID string) ([]SocialConnection, error)
}

// EngineMetrics contains engine counters for observability.
type EngineMetrics struct {
	// RequestCount is the total number of feed and suggestion requests.
	RequestCount int64 `json:"request_count"`

	// ProfileCacheHits is the number of profile cache hits.
	ProfileCacheHits int64 `json:"profile_cache_hits"`

	// ProfileCacheMisses is the number of profile cache misses.
	ProfileCacheMisses int64 `json:"profile_cache_misses"`

	// ErrorCount is the total number of errors.
	ErrorCount int64 `json:"error_count"`
}
