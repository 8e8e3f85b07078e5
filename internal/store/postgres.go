// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

// Package store implements the recommendation engine's DataProvider on
// PostgreSQL using pgx.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/buzzit/buzzrank/internal/metrics"
	"github.com/buzzit/buzzrank/internal/recommend"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store provides read access to users, buzzes and interactions.
// It implements recommend.DataProvider.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New creates a store backed by the given connection pool.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{
		pool:   pool,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Connect opens a pgx connection pool and verifies connectivity.
// maxConns bounds the pool size; values below 1 keep the pgx default.
func Connect(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns >= 1 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Ping verifies database connectivity, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetUser fetches one user profile by id.
func (s *Store) GetUser(ctx context.Context, userID string) (*recommend.UserProfile, error) {
	start := time.Now()

	var (
		u         recommend.UserProfile
		interests []string
		city      *string
		country   *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.display_name, COALESCE(u.email, ''), COALESCE(u.mobile, ''),
		       COALESCE(u.interests, '{}'), u.city, u.country,
		       u.verified, u.created_at, u.buzz_count, u.follower_count,
		       COALESCE(ARRAY(
		           SELECT s.followee_id FROM subscriptions s WHERE s.follower_id = u.id
		       ), '{}')
		FROM users u
		WHERE u.id = $1
	`, userID).Scan(
		&u.ID, &u.DisplayName, &u.Email, &u.Mobile,
		&interests, &city, &country,
		&u.Verified, &u.CreatedAt, &u.BuzzCount, &u.FollowerCount,
		&u.Subscribed,
	)
	metrics.ObserveStoreQuery("get_user", time.Since(start), err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	u.Interests = toInterests(interests)
	u.Location = toLocation(city, country)
	return &u, nil
}

// GetUserBuzzes fetches the user's most recent posted buzzes.
func (s *Store) GetUserBuzzes(ctx context.Context, userID string, limit int) ([]recommend.Buzz, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.author_id, b.content, COALESCE(b.interests, '{}'),
		       b.city, b.country, b.content_type, b.created_at,
		       b.like_count, b.comment_count, b.share_count, b.view_count
		FROM buzzes b
		WHERE b.author_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2
	`, userID, limit)
	metrics.ObserveStoreQuery("get_user_buzzes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query user buzzes: %w", err)
	}
	defer rows.Close()

	return scanBuzzes(rows)
}

// GetUserInteractions fetches the user's most recent interactions, with
// the interacted buzz's interests and content type denormalized on.
func (s *Store) GetUserInteractions(ctx context.Context, userID string, limit int) ([]recommend.Interaction, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `
		SELECT i.user_id, i.buzz_id, i.interaction_type, i.created_at,
		       COALESCE(b.interests, '{}'), COALESCE(b.content_type, '')
		FROM interactions i
		JOIN buzzes b ON b.id = i.buzz_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
		LIMIT $2
	`, userID, limit)
	metrics.ObserveStoreQuery("get_user_interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query user interactions: %w", err)
	}
	defer rows.Close()

	var interactions []recommend.Interaction
	for rows.Next() {
		var (
			in        recommend.Interaction
			kind      string
			interests []string
			ct        string
		)
		if err := rows.Scan(&in.UserID, &in.BuzzID, &kind, &in.Timestamp, &interests, &ct); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Type = toInteractionType(kind)
		in.Interests = toInterests(interests)
		in.ContentType = recommend.ContentType(ct)
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return interactions, nil
}

// GetFeedCandidates fetches recent buzzes by other authors as feed
// ranking candidates.
func (s *Store) GetFeedCandidates(ctx context.Context, userID string, limit int) ([]recommend.Buzz, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.author_id, b.content, COALESCE(b.interests, '{}'),
		       b.city, b.country, b.content_type, b.created_at,
		       b.like_count, b.comment_count, b.share_count, b.view_count
		FROM buzzes b
		WHERE b.author_id <> $1
		ORDER BY b.created_at DESC
		LIMIT $2
	`, userID, limit)
	metrics.ObserveStoreQuery("get_feed_candidates", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query feed candidates: %w", err)
	}
	defer rows.Close()

	return scanBuzzes(rows)
}

// GetFollowCandidates fetches users not yet followed by the user, most
// recently active first.
func (s *Store) GetFollowCandidates(ctx context.Context, userID string, limit int) ([]recommend.UserProfile, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.display_name, COALESCE(u.email, ''), COALESCE(u.mobile, ''),
		       COALESCE(u.interests, '{}'), u.city, u.country,
		       u.verified, u.created_at, u.buzz_count, u.follower_count
		FROM users u
		WHERE u.id <> $1
		  AND NOT EXISTS (
		      SELECT 1 FROM subscriptions s
		      WHERE s.follower_id = $1 AND s.followee_id = u.id
		  )
		ORDER BY u.follower_count DESC, u.id
		LIMIT $2
	`, userID, limit)
	metrics.ObserveStoreQuery("get_follow_candidates", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query follow candidates: %w", err)
	}
	defer rows.Close()

	var users []recommend.UserProfile
	for rows.Next() {
		var (
			u         recommend.UserProfile
			interests []string
			city      *string
			country   *string
		)
		if err := rows.Scan(
			&u.ID, &u.DisplayName, &u.Email, &u.Mobile,
			&interests, &city, &country,
			&u.Verified, &u.CreatedAt, &u.BuzzCount, &u.FollowerCount,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Interests = toInterests(interests)
		u.Location = toLocation(city, country)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// GetContacts fetches the user's uploaded address-book entries.
func (s *Store) GetContacts(ctx context.Context, userID string) ([]recommend.Contact, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, '')
		FROM contacts
		WHERE user_id = $1
	`, userID)
	metrics.ObserveStoreQuery("get_contacts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []recommend.Contact
	for rows.Next() {
		var c recommend.Contact
		if err := rows.Scan(&c.Name, &c.Email, &c.Phone); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// GetSocialConnections fetches the user's linked social-network
// account references.
func (s *Store) GetSocialConnections(ctx context.Context, userID string) ([]recommend.SocialConnection, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(connected_user_id, ''), COALESCE(username, '')
		FROM social_connections
		WHERE user_id = $1
	`, userID)
	metrics.ObserveStoreQuery("get_social_connections", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query social connections: %w", err)
	}
	defer rows.Close()

	var connections []recommend.SocialConnection
	for rows.Next() {
		var conn recommend.SocialConnection
		if err := rows.Scan(&conn.UserID, &conn.Username); err != nil {
			return nil, fmt.Errorf("scan social connection: %w", err)
		}
		connections = append(connections, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social connections: %w", err)
	}
	return connections, nil
}

// scanBuzzes reads buzz rows produced by the shared column list.
func scanBuzzes(rows pgx.Rows) ([]recommend.Buzz, error) {
	var buzzes []recommend.Buzz
	for rows.Next() {
		var (
			b         recommend.Buzz
			interests []string
			city      *string
			country   *string
			ct        string
		)
		if err := rows.Scan(
			&b.ID, &b.AuthorID, &b.Content, &interests,
			&city, &country, &ct, &b.CreatedAt,
			&b.Engagement.Likes, &b.Engagement.Comments,
			&b.Engagement.Shares, &b.Engagement.Views,
		); err != nil {
			return nil, fmt.Errorf("scan buzz: %w", err)
		}
		b.Interests = toInterests(interests)
		b.Location = toLocation(city, country)
		b.ContentType = recommend.ContentType(ct)
		buzzes = append(buzzes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buzzes: %w", err)
	}
	return buzzes, nil
}

// toInterests converts raw interest identifiers to the typed form,
// lowercased and trimmed so the scoring math never sees tag variants
// like "Music" vs "music". Blank entries are dropped.
func toInterests(raw []string) []recommend.Interest {
	if len(raw) == 0 {
		return nil
	}
	interests := make([]recommend.Interest, 0, len(raw))
	for _, r := range raw {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		interests = append(interests, recommend.Interest(r))
	}
	if len(interests) == 0 {
		return nil
	}
	return interests
}

// toLocation builds an optional location from nullable columns.
func toLocation(city, country *string) *recommend.Location {
	if city == nil && country == nil {
		return nil
	}
	loc := &recommend.Location{}
	if city != nil {
		loc.City = *city
	}
	if country != nil {
		loc.Country = *country
	}
	if loc.City == "" && loc.Country == "" {
		return nil
	}
	return loc
}

// toInteractionType maps a stored interaction kind to the typed enum.
// Unknown kinds degrade to views, the weakest signal.
func toInteractionType(kind string) recommend.InteractionType {
	switch kind {
	case "like":
		return recommend.InteractionLike
	case "comment":
		return recommend.InteractionComment
	case "share":
		return recommend.InteractionShare
	default:
		return recommend.InteractionView
	}
}
