// Package store persists scored opportunities, keyed by thread id. Merging a
// freshly scored batch follows an upsert-with-conditional-overwrite policy:
// unknown threads are inserted, known threads are rewritten only when the
// score or action changed or the incoming record is freshly scored.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"leadwatch/crawler/internal/database"
	"leadwatch/crawler/internal/models"
)

const insertOpportunity = `
	INSERT INTO opportunities (
		thread_id, title, body, subreddit, url, upvotes, comments,
		created_utc, fetched_at, intent, affiliate_matches,
		opportunity_score, action_type, priority, status, processed_at
	) VALUES (
		:thread_id, :title, :body, :subreddit, :url, :upvotes, :comments,
		:created_utc, :fetched_at, :intent, :affiliate_matches,
		:opportunity_score, :action_type, :priority, :status, :processed_at
	)`

const updateOpportunity = `
	UPDATE opportunities SET
		title = :title, body = :body, subreddit = :subreddit, url = :url,
		upvotes = :upvotes, comments = :comments, created_utc = :created_utc,
		fetched_at = :fetched_at, intent = :intent,
		affiliate_matches = :affiliate_matches,
		opportunity_score = :opportunity_score, action_type = :action_type,
		priority = :priority, status = :status, processed_at = :processed_at
	WHERE thread_id = :thread_id`

// Repository provides access to the persisted opportunity set.
type Repository struct {
	db *database.DB
}

// New creates a repository over the given database.
func New(db *database.DB) *Repository {
	return &Repository{db: db}
}

// SaveAll merges a scored batch into the store and returns the number of
// newly inserted records. An already-known thread is overwritten only when
// its score differs, its action type differs, or the incoming record carries
// status "new" — re-scoring always wins over a previously stored record,
// including one whose status an operator had already advanced.
func (r *Repository) SaveAll(ctx context.Context, opportunities []models.Opportunity) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, opp := range opportunities {
		var existing models.Opportunity
		err := tx.GetContext(ctx, &existing,
			"SELECT * FROM opportunities WHERE thread_id = ?", opp.ThreadID)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.NamedExecContext(ctx, insertOpportunity, opp); err != nil {
				return 0, fmt.Errorf("failed to insert opportunity %s: %w", opp.ThreadID, err)
			}
			inserted++
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to look up opportunity %s: %w", opp.ThreadID, err)
		}

		if opp.Score != existing.Score ||
			opp.ActionType != existing.ActionType ||
			opp.Status == models.StatusNew {
			if _, err := tx.NamedExecContext(ctx, updateOpportunity, opp); err != nil {
				return 0, fmt.Errorf("failed to update opportunity %s: %w", opp.ThreadID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return inserted, nil
}

// Get returns the opportunity for a thread id, or nil if none is stored.
func (r *Repository) Get(ctx context.Context, threadID string) (*models.Opportunity, error) {
	var opp models.Opportunity
	err := r.db.GetContext(ctx, &opp,
		"SELECT * FROM opportunities WHERE thread_id = ?", threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity %s: %w", threadID, err)
	}
	return &opp, nil
}

// Filter narrows a listing. Zero values leave the corresponding dimension
// unconstrained.
type Filter struct {
	Status     string
	MinScore   float64
	Subreddit  string
	ActionType string
	Limit      int
}

// List returns opportunities matching the filter, ordered by score
// descending with thread id as a stable tie-break.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.Opportunity, error) {
	query, args := buildListQuery(f, nil, nil)

	var opportunities []models.Opportunity
	if err := r.db.SelectContext(ctx, &opportunities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	return opportunities, nil
}

// Page behaves like List but resumes after a keyset cursor of
// (score, thread id) from a previous page.
func (r *Repository) Page(ctx context.Context, f Filter, cursorScore *float64, cursorThreadID *string) ([]models.Opportunity, error) {
	query, args := buildListQuery(f, cursorScore, cursorThreadID)

	var opportunities []models.Opportunity
	if err := r.db.SelectContext(ctx, &opportunities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to page opportunities: %w", err)
	}
	return opportunities, nil
}

func buildListQuery(f Filter, cursorScore *float64, cursorThreadID *string) (string, []any) {
	var conditions []string
	var args []any

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.MinScore > 0 {
		conditions = append(conditions, "opportunity_score >= ?")
		args = append(args, f.MinScore)
	}
	if f.Subreddit != "" {
		conditions = append(conditions, "subreddit = ?")
		args = append(args, f.Subreddit)
	}
	if f.ActionType != "" {
		conditions = append(conditions, "action_type = ?")
		args = append(args, f.ActionType)
	}
	if cursorScore != nil && cursorThreadID != nil {
		conditions = append(conditions,
			"((opportunity_score < ?) OR (opportunity_score = ? AND thread_id > ?))")
		args = append(args, *cursorScore, *cursorScore, *cursorThreadID)
	}

	query := "SELECT * FROM opportunities"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY opportunity_score DESC, thread_id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return query, args
}

// All returns every stored opportunity ordered by score descending.
func (r *Repository) All(ctx context.Context) ([]models.Opportunity, error) {
	return r.List(ctx, Filter{})
}

// Top returns the n highest-scoring opportunities.
func (r *Repository) Top(ctx context.Context, n int) ([]models.Opportunity, error) {
	return r.List(ctx, Filter{Limit: n})
}

// UpdateStatus sets the status of one opportunity and reports whether a
// record was changed.
func (r *Repository) UpdateStatus(ctx context.Context, threadID, status string) (bool, error) {
	if !models.ValidStatus(status) {
		return false, fmt.Errorf("invalid status %q", status)
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE opportunities SET status = ? WHERE thread_id = ?", status, threadID)
	if err != nil {
		return false, fmt.Errorf("failed to update status for %s: %w", threadID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns the total record count and a per-status breakdown.
func (r *Repository) Stats(ctx context.Context) (total int, byStatus map[string]int, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM opportunities GROUP BY status")
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	byStatus = make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return 0, nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		byStatus[status] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to iterate stats rows: %w", err)
	}
	return total, byStatus, nil
}
