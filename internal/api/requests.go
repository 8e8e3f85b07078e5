// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

package api

// FeedRequest holds the validated parameters for a feed request.
type FeedRequest struct {
	UserID string `validate:"required,max=64"`
	Limit  int    `validate:"min=0,max=200"`
}

// ProfileRequest holds the validated parameters for a profile request.
type ProfileRequest struct {
	UserID string `validate:"required,max=64"`
}

// SuggestionsRequest holds the validated parameters for a follow
// suggestions request.
type SuggestionsRequest struct {
	UserID string `validate:"required,max=64"`
	K      int    `validate:"min=0,max=20"`
}
