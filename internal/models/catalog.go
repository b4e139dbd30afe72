package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a JSON array of strings in a single TEXT column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// AffiliateProgram is a promotable product or service with associated
// keywords and a category used for subreddit relevance checks.
type AffiliateProgram struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	Commission     string     `db:"commission" json:"commission"`
	Category       string     `db:"category" json:"category"`
	TargetAudience string     `db:"target_audience" json:"target_audience"`
	Keywords       StringList `db:"keywords" json:"keywords"`
}

// KeywordEntry links a single keyword to an affiliate program.
type KeywordEntry struct {
	ID                 int64  `db:"id" json:"id"`
	Keyword            string `db:"keyword" json:"keyword"`
	AffiliateProgramID int64  `db:"affiliate_program_id" json:"affiliate_program_id"`
	Status             string `db:"status" json:"status"`
}

// SubredditInfo describes a known subreddit and the catalog category it
// belongs to.
type SubredditInfo struct {
	ID              int64  `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	Category        string `db:"category" json:"category"`
	SubscriberCount int64  `db:"subscriber_count" json:"subscriber_count"`
}
