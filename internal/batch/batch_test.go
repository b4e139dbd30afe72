package batch

import (
	"os"
	"path/filepath"
	"testing"

	"leadwatch/crawler/internal/models"
)

func TestMergeThreadsAppendsOnlyAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), RawThreadsFile)

	first := []models.RawThread{
		{ID: "a", Title: "First", Subreddit: "r/SaaS"},
		{ID: "b", Title: "Second", Subreddit: "r/SaaS"},
	}
	total, added, err := MergeThreads(path, first)
	if err != nil {
		t.Fatalf("MergeThreads failed: %v", err)
	}
	if total != 2 || added != 2 {
		t.Errorf("expected (2, 2), got (%d, %d)", total, added)
	}

	// Re-merging the same ids plus one new thread appends only the new
	// one; existing records keep their original content.
	second := []models.RawThread{
		{ID: "a", Title: "Rewritten", Subreddit: "r/SaaS"},
		{ID: "c", Title: "Third", Subreddit: "r/SaaS"},
	}
	total, added, err = MergeThreads(path, second)
	if err != nil {
		t.Fatalf("MergeThreads failed: %v", err)
	}
	if total != 3 || added != 1 {
		t.Errorf("expected (3, 1), got (%d, %d)", total, added)
	}

	threads := loadCollection[models.RawThread](path)
	if len(threads) != 3 {
		t.Fatalf("expected 3 threads on disk, got %d", len(threads))
	}
	if threads[0].ID != "a" || threads[0].Title != "First" {
		t.Errorf("existing record was rewritten: %+v", threads[0])
	}

	seen := make(map[string]bool)
	for _, th := range threads {
		if seen[th.ID] {
			t.Errorf("duplicate thread id %q in batch file", th.ID)
		}
		seen[th.ID] = true
	}
}

func TestMergeOpportunitiesNeverUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), OpportunitiesFile)

	original := models.Opportunity{ThreadID: "a", Title: "Original", Score: 80, Status: models.StatusNew}
	if _, _, err := MergeOpportunities(path, []models.Opportunity{original}); err != nil {
		t.Fatalf("MergeOpportunities failed: %v", err)
	}

	rescored := models.Opportunity{ThreadID: "a", Title: "Rescored", Score: 95, Status: models.StatusNew}
	total, added, err := MergeOpportunities(path, []models.Opportunity{rescored})
	if err != nil {
		t.Fatalf("MergeOpportunities failed: %v", err)
	}
	if total != 1 || added != 0 {
		t.Errorf("expected (1, 0), got (%d, %d)", total, added)
	}

	stored := LoadOpportunities(path)
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored opportunity, got %d", len(stored))
	}
	if stored[0].Score != 80 || stored[0].Title != "Original" {
		t.Errorf("batch file record was updated in place: %+v", stored[0])
	}
}

func TestMergeCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", RawThreadsFile)

	total, added, err := MergeThreads(path, []models.RawThread{{ID: "a", Title: "First", Subreddit: "r/SaaS"}})
	if err != nil {
		t.Fatalf("MergeThreads failed: %v", err)
	}
	if total != 1 || added != 1 {
		t.Errorf("expected (1, 1), got (%d, %d)", total, added)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected batch file to exist: %v", err)
	}
}

func TestCorruptBatchFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), OpportunitiesFile)
	if err := os.WriteFile(path, []byte("{definitely not json"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if got := LoadOpportunities(path); len(got) != 0 {
		t.Errorf("expected empty batch from corrupt file, got %d records", len(got))
	}

	total, added, err := MergeOpportunities(path, []models.Opportunity{
		{ThreadID: "a", Title: "Recovered", Score: 70, Status: models.StatusNew},
	})
	if err != nil {
		t.Fatalf("MergeOpportunities failed: %v", err)
	}
	if total != 1 || added != 1 {
		t.Errorf("expected fresh collection (1, 1), got (%d, %d)", total, added)
	}
}

func TestLoadOpportunitiesMissingFile(t *testing.T) {
	if got := LoadOpportunities(filepath.Join(t.TempDir(), "absent.json")); got != nil {
		t.Errorf("expected nil for missing file, got %v", got)
	}
}
