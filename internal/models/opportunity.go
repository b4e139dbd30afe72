package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Opportunity statuses. Status moves forward through reconciliation or an
// explicit operator update; re-scored batches arriving with StatusNew win
// over any previously stored record.
const (
	StatusNew       = "new"
	StatusQueued    = "queued"
	StatusProcessed = "processed"
	StatusIgnored   = "ignored"
)

// Action types recommended for an opportunity.
const (
	ActionComment = "comment"
	ActionPost    = "post"
)

// Priority tiers derived from the opportunity score.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// AffiliateMatch links a thread to an affiliate program via one keyword hit.
// It is transient: only the OpportunityMatch projection is persisted.
type AffiliateMatch struct {
	Keyword           string
	Program           *AffiliateProgram
	Strength          float64
	TitleMatch        bool
	OccurrenceCount   int
	SubredditRelevant bool
}

// OpportunityMatch is the persisted projection of an AffiliateMatch.
type OpportunityMatch struct {
	Keyword       string  `json:"keyword"`
	ProgramName   string  `json:"program_name"`
	ProgramID     int64   `json:"program_id"`
	MatchStrength float64 `json:"match_strength"`
}

// MatchList stores the ordered match projections as a JSON column.
type MatchList []OpportunityMatch

// Value implements driver.Valuer.
func (m MatchList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *MatchList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into MatchList", src)
	}
}

// Opportunity is a scored, persisted outreach recommendation derived from a
// thread. ThreadID is the natural key; the store never holds two records
// sharing one.
type Opportunity struct {
	ThreadID    string    `db:"thread_id" json:"thread_id"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	Subreddit   string    `db:"subreddit" json:"subreddit"`
	URL         string    `db:"url" json:"url"`
	Upvotes     int       `db:"upvotes" json:"upvotes"`
	Comments    int       `db:"comments" json:"comments"`
	CreatedUTC  string    `db:"created_utc" json:"created_utc"`
	FetchedAt   string    `db:"fetched_at" json:"fetched_at"`
	Intent      Intent    `db:"intent" json:"intent"`
	Matches     MatchList `db:"affiliate_matches" json:"affiliate_matches"`
	Score       float64   `db:"opportunity_score" json:"opportunity_score"`
	ActionType  string    `db:"action_type" json:"action_type"`
	Priority    string    `db:"priority" json:"priority"`
	Status      string    `db:"status" json:"status"`
	ProcessedAt string    `db:"processed_at" json:"processed_at"`
}

// ValidStatus reports whether s is one of the known opportunity statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusQueued, StatusProcessed, StatusIgnored:
		return true
	}
	return false
}
