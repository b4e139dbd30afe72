package migrations

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migration represents a versioned schema migration.
type Migration struct {
	Version int
	Up      string
}

// All lists every schema migration in order. Versions must never be reused.
var All = []Migration{
	{
		Version: 1,
		Up: `
CREATE TABLE affiliate_programs (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	commission TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	target_audience TEXT NOT NULL DEFAULT '',
	keywords TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE keywords (
	id INTEGER PRIMARY KEY,
	keyword TEXT NOT NULL,
	affiliate_program_id INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE INDEX idx_keywords_program ON keywords(affiliate_program_id);

CREATE TABLE subreddits (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	subscriber_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_subreddits_category ON subreddits(category);
`,
	},
	{
		Version: 2,
		Up: `
CREATE TABLE opportunities (
	thread_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	subreddit TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	upvotes INTEGER NOT NULL DEFAULT 0,
	comments INTEGER NOT NULL DEFAULT 0,
	created_utc TEXT NOT NULL DEFAULT '',
	fetched_at TEXT NOT NULL DEFAULT '',
	intent TEXT NOT NULL,
	affiliate_matches TEXT NOT NULL DEFAULT '[]',
	opportunity_score REAL NOT NULL,
	action_type TEXT NOT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'new',
	processed_at TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_opportunities_score ON opportunities(opportunity_score DESC);
CREATE INDEX idx_opportunities_status ON opportunities(status);
`,
	},
}

// RunMigrations executes all pending migrations in version order.
func RunMigrations(db *sql.DB, migrations []Migration) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			log.Debug().
				Int("version", migration.Version).
				Msg("Migration already applied, skipping")
			continue
		}

		log.Info().
			Int("version", migration.Version).
			Msg("Running migration")

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		log.Info().
			Int("version", migration.Version).
			Msg("Migration completed successfully")
	}

	return nil
}
