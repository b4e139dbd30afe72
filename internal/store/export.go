package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/models"
)

// ExportJSON writes a snapshot of all stored opportunities into dir, named
// by the current unix timestamp, and returns the file path. Failures are
// logged and reported as an empty path; the pipeline degrades rather than
// halts on storage hiccups.
func (r *Repository) ExportJSON(ctx context.Context, dir string) string {
	opportunities, err := r.All(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Export failed: could not read opportunities")
		return ""
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("Export failed: could not create directory")
		return ""
	}

	path := filepath.Join(dir, fmt.Sprintf("export_%d.json", time.Now().Unix()))

	data, err := json.MarshalIndent(opportunities, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Export failed: could not marshal opportunities")
		return ""
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Export failed: could not write file")
		return ""
	}

	log.Info().Str("path", path).Int("count", len(opportunities)).Msg("Exported opportunities")
	return path
}

// ImportJSON reads a serialized opportunity list and merges it through the
// store-level upsert policy, returning the number of newly inserted records.
// I/O and decode failures are logged and yield zero.
func (r *Repository) ImportJSON(ctx context.Context, path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Import failed: could not read file")
		return 0
	}

	var opportunities []models.Opportunity
	if err := json.Unmarshal(data, &opportunities); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Import failed: could not decode opportunities")
		return 0
	}

	inserted, err := r.SaveAll(ctx, opportunities)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Import failed: could not merge opportunities")
		return 0
	}

	log.Info().
		Str("path", path).
		Int("records", len(opportunities)).
		Int("inserted", inserted).
		Msg("Imported opportunities")
	return inserted
}
