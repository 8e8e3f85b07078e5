// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

// Package recommend implements personalization and ranking for Buzz it.
//
// # Architecture
//
// Three components cover the product surface:
//
//   - Profile builder: derives a preference profile (interest affinities,
//     location, content-type mix, engagement and time patterns) from a
//     user's declared interests, posted buzzes and interaction history.
//   - Content scorer: scores candidate buzzes against a profile and
//     ranks the home feed, with optional MMR diversity reranking.
//   - User recommender: scores follow-suggestion candidates from
//     contact, social-graph, interest, location and engagement signals.
//
// The Engine wraps the three with data access (via the DataProvider
// interface), a TTL-bounded profile cache and request-level metrics.
//
// # Design Principles
//
//   - Deterministic: same inputs produce identical outputs, including
//     tie-breaks in top-N selections and ranking order
//   - Pure core: profile building and scoring are side-effect free;
//     I/O lives behind DataProvider
//   - Observable: structured logging and counters on every request path
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(store)
//
//	feed, err := engine.FeedForUser(ctx, userID, 50)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Configuration updates acquire
// an exclusive lock; request paths use a shared lock and the internal
// cache's own synchronization.
package recommend
