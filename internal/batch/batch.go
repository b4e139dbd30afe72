// Package batch manages the JSON batch files produced between pipeline
// stages. Merging into a batch file is append-if-absent by id only: a record
// already present is never rewritten, which is a deliberately weaker
// contract than the store-level conditional upsert.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/models"
)

// Default batch file names inside the data directory.
const (
	RawThreadsFile    = "threads_raw.json"
	OpportunitiesFile = "opportunities.json"
)

// MergeThreads appends threads whose id is not yet present in the batch
// file and returns (total records in file, newly appended). A missing or
// corrupt file starts a fresh collection.
func MergeThreads(path string, threads []models.RawThread) (int, int, error) {
	existing := loadCollection[models.RawThread](path)

	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.ID] = struct{}{}
	}

	added := 0
	for _, t := range threads {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		existing = append(existing, t)
		seen[t.ID] = struct{}{}
		added++
	}

	if err := writeCollection(path, existing); err != nil {
		return 0, 0, err
	}
	return len(existing), added, nil
}

// MergeOpportunities appends opportunities whose thread id is not yet
// present in the batch file and returns (total records in file, newly
// appended). Stored records are never updated here; reconciliation against
// previously scored data happens in the store.
func MergeOpportunities(path string, opportunities []models.Opportunity) (int, int, error) {
	existing := loadCollection[models.Opportunity](path)

	seen := make(map[string]struct{}, len(existing))
	for _, o := range existing {
		seen[o.ThreadID] = struct{}{}
	}

	added := 0
	for _, o := range opportunities {
		if _, ok := seen[o.ThreadID]; ok {
			continue
		}
		existing = append(existing, o)
		seen[o.ThreadID] = struct{}{}
		added++
	}

	if err := writeCollection(path, existing); err != nil {
		return 0, 0, err
	}
	return len(existing), added, nil
}

// LoadOpportunities reads the opportunities batch file. A missing or corrupt
// file yields an empty batch.
func LoadOpportunities(path string) []models.Opportunity {
	return loadCollection[models.Opportunity](path)
}

func loadCollection[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Could not read batch file, starting fresh")
		}
		return nil
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Batch file is corrupt, starting fresh")
		return nil
	}
	return out
}

func writeCollection(path string, collection any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create batch directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch file %s: %w", path, err)
	}
	return nil
}
