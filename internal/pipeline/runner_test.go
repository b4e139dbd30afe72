package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"leadwatch/crawler/internal/batch"
	"leadwatch/crawler/internal/catalog"
	"leadwatch/crawler/internal/database"
	"leadwatch/crawler/internal/engine"
	"leadwatch/crawler/internal/models"
	"leadwatch/crawler/internal/store"
)

type stubFetcher struct {
	threads []models.RawThread
	err     error
	calls   int
}

func (f *stubFetcher) FetchMultiple(ctx context.Context, subreddits, sortModes []string) ([]models.RawThread, error) {
	f.calls++
	return f.threads, f.err
}

func newTestRunner(t *testing.T, fetcher Fetcher, minInterval time.Duration) (*Runner, *store.Repository, string) {
	t.Helper()

	cfg := database.NewConfig(filepath.Join(t.TempDir(), "test.db"))
	db, err := database.NewDB(cfg)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := store.New(db)
	eng := engine.New(catalog.New(db))
	dataDir := t.TempDir()

	return NewRunner(fetcher, eng, repo, dataDir, minInterval), repo, dataDir
}

func matchingThread(id string) models.RawThread {
	return models.RawThread{
		ID:        id,
		Title:     "Best gaming mouse for FPS?",
		Subreddit: "r/GamingMouse",
		Upvotes:   100,
		Comments:  20,
	}
}

func TestRunFullPass(t *testing.T) {
	fetcher := &stubFetcher{threads: []models.RawThread{
		matchingThread("abc1"),
		{ID: "xyz1", Title: "Unrelated discussion", Subreddit: "r/SaaS"},
	}}
	runner, repo, dataDir := newTestRunner(t, fetcher, time.Hour)
	ctx := context.Background()

	summary, err := runner.Run(ctx, Options{Subreddits: []string{"GamingMouse"}, SortModes: []string{"hot"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Skipped {
		t.Fatal("first run must not be skipped")
	}
	if summary.ThreadsFound != 2 {
		t.Errorf("expected 2 threads found, got %d", summary.ThreadsFound)
	}
	if summary.OpportunitiesFound != 1 {
		t.Errorf("expected 1 opportunity, got %d", summary.OpportunitiesFound)
	}
	if summary.NewOpportunities != 1 {
		t.Errorf("expected 1 new opportunity, got %d", summary.NewOpportunities)
	}

	// Both batch files and the status file land in the data directory.
	if _, err := os.Stat(filepath.Join(dataDir, batch.RawThreadsFile)); err != nil {
		t.Errorf("raw batch file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, batch.OpportunitiesFile)); err != nil {
		t.Errorf("opportunity batch file missing: %v", err)
	}
	status := readStatus(dataDir)
	if status == nil || status.Status != "completed" {
		t.Errorf("expected completed status, got %+v", status)
	}

	stored, err := repo.Get(ctx, "abc1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored == nil {
		t.Fatal("expected opportunity to be reconciled into the store")
	}
	if stored.Status != models.StatusNew {
		t.Errorf("expected stored status new, got %q", stored.Status)
	}
}

func TestRunGateSkipsWithinInterval(t *testing.T) {
	fetcher := &stubFetcher{threads: []models.RawThread{matchingThread("abc1")}}
	runner, _, _ := newTestRunner(t, fetcher, time.Hour)
	ctx := context.Background()
	opts := Options{Subreddits: []string{"GamingMouse"}}

	if _, err := runner.Run(ctx, opts); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	summary, err := runner.Run(ctx, opts)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !summary.Skipped {
		t.Error("expected second run within the interval to be skipped")
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", fetcher.calls)
	}

	opts.Force = true
	summary, err = runner.Run(ctx, opts)
	if err != nil {
		t.Fatalf("forced Run failed: %v", err)
	}
	if summary.Skipped {
		t.Error("forced run must not be skipped")
	}
	if fetcher.calls != 2 {
		t.Errorf("expected 2 fetches after force, got %d", fetcher.calls)
	}
}

func TestRunRecordsErrorStatus(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("listing unreachable")}
	runner, _, dataDir := newTestRunner(t, fetcher, 0)

	_, err := runner.Run(context.Background(), Options{Subreddits: []string{"SaaS"}})
	if err == nil {
		t.Fatal("expected fetch failure to surface")
	}

	status := readStatus(dataDir)
	if status == nil || status.Status != "error" {
		t.Fatalf("expected error status, got %+v", status)
	}
	if status.Details["error"] == "" {
		t.Error("expected error details to be recorded")
	}
}

func TestRunReconcilesEarlierBatchRecords(t *testing.T) {
	fetcher := &stubFetcher{threads: []models.RawThread{matchingThread("new1")}}
	runner, repo, dataDir := newTestRunner(t, fetcher, 0)
	ctx := context.Background()

	// A leftover record from an interrupted earlier run sits in the batch
	// file without ever having reached the store.
	leftover := models.Opportunity{
		ThreadID:  "old1",
		Title:     "Leftover opportunity",
		Subreddit: "r/SaaS",
		Intent:    models.IntentGeneral,
		Score:     65,
		Status:    models.StatusNew,
	}
	oppPath := filepath.Join(dataDir, batch.OpportunitiesFile)
	if _, _, err := batch.MergeOpportunities(oppPath, []models.Opportunity{leftover}); err != nil {
		t.Fatalf("fixture merge failed: %v", err)
	}

	summary, err := runner.Run(ctx, Options{Subreddits: []string{"GamingMouse"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.NewOpportunities != 2 {
		t.Errorf("expected both batch records to insert, got %d", summary.NewOpportunities)
	}

	stored, err := repo.Get(ctx, "old1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored == nil {
		t.Error("expected leftover batch record to reach the store")
	}
}

func TestShouldRunWithoutStatusFile(t *testing.T) {
	runner, _, _ := newTestRunner(t, &stubFetcher{}, time.Hour)
	if !runner.ShouldRun() {
		t.Error("expected run to be allowed with no prior status")
	}
}
