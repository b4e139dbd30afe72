// Package catalog exposes the read-only affiliate reference data: programs,
// their keywords, and subreddit relevance metadata. A fresh database is
// seeded with a default dataset on first access so matching always has data
// to operate against.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/database"
	"leadwatch/crawler/internal/models"
)

// Catalog provides access to affiliate programs, keywords and subreddits.
type Catalog struct {
	db *database.DB

	seedOnce sync.Once
	seedErr  error
}

// New creates a catalog backed by the given database.
func New(db *database.DB) *Catalog {
	return &Catalog{db: db}
}

// ListKeywords returns every keyword entry, seeding defaults first if needed.
func (c *Catalog) ListKeywords(ctx context.Context) ([]models.KeywordEntry, error) {
	if err := c.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	var entries []models.KeywordEntry
	err := c.db.SelectContext(ctx, &entries, "SELECT * FROM keywords ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return entries, nil
}

// GetProgram returns the affiliate program with the given id, or nil if no
// such program exists.
func (c *Catalog) GetProgram(ctx context.Context, id int64) (*models.AffiliateProgram, error) {
	if err := c.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	var program models.AffiliateProgram
	err := c.db.GetContext(ctx, &program, "SELECT * FROM affiliate_programs WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get program %d: %w", id, err)
	}
	return &program, nil
}

// SubredditsForCategory returns the known subreddits sharing a category.
func (c *Catalog) SubredditsForCategory(ctx context.Context, category string) ([]models.SubredditInfo, error) {
	if err := c.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	var subs []models.SubredditInfo
	err := c.db.SelectContext(ctx, &subs, "SELECT * FROM subreddits WHERE category = ? ORDER BY id ASC", category)
	if err != nil {
		return nil, fmt.Errorf("failed to list subreddits for category %q: %w", category, err)
	}
	return subs, nil
}

// Seed inserts the default dataset into any empty catalog table. It is safe
// to call repeatedly; populated tables are left untouched.
func (c *Catalog) Seed(ctx context.Context) error {
	var programCount, keywordCount, subredditCount int
	if err := c.db.GetContext(ctx, &programCount, "SELECT COUNT(*) FROM affiliate_programs"); err != nil {
		return fmt.Errorf("failed to count affiliate programs: %w", err)
	}
	if err := c.db.GetContext(ctx, &keywordCount, "SELECT COUNT(*) FROM keywords"); err != nil {
		return fmt.Errorf("failed to count keywords: %w", err)
	}
	if err := c.db.GetContext(ctx, &subredditCount, "SELECT COUNT(*) FROM subreddits"); err != nil {
		return fmt.Errorf("failed to count subreddits: %w", err)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if programCount == 0 {
		for _, p := range defaultPrograms {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO affiliate_programs (id, name, description, commission, category, target_audience, keywords)
				VALUES (:id, :name, :description, :commission, :category, :target_audience, :keywords)`, p)
			if err != nil {
				return fmt.Errorf("failed to seed program %q: %w", p.Name, err)
			}
		}
		log.Info().Int("programs", len(defaultPrograms)).Msg("Seeded default affiliate programs")
	}

	if keywordCount == 0 {
		for _, k := range defaultKeywords {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO keywords (id, keyword, affiliate_program_id, status)
				VALUES (:id, :keyword, :affiliate_program_id, :status)`, k)
			if err != nil {
				return fmt.Errorf("failed to seed keyword %q: %w", k.Keyword, err)
			}
		}
		log.Info().Int("keywords", len(defaultKeywords)).Msg("Seeded default keywords")
	}

	if subredditCount == 0 {
		for _, s := range defaultSubreddits {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO subreddits (id, name, category, subscriber_count)
				VALUES (:id, :name, :category, :subscriber_count)`, s)
			if err != nil {
				return fmt.Errorf("failed to seed subreddit %q: %w", s.Name, err)
			}
		}
		log.Info().Int("subreddits", len(defaultSubreddits)).Msg("Seeded default subreddits")
	}

	return tx.Commit()
}

// ensureSeeded runs Seed exactly once per process lifetime.
func (c *Catalog) ensureSeeded(ctx context.Context) error {
	c.seedOnce.Do(func() {
		c.seedErr = c.Seed(ctx)
	})
	return c.seedErr
}
