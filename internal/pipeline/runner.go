// Package pipeline orchestrates one full crawl: scrape raw threads, merge
// them into the raw batch file, extract and score opportunities, merge those
// into the opportunity batch file, and reconcile the batch into the store.
// The pipeline is synchronous and batch-oriented; callers serialize runs via
// the minimum-interval gate.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/batch"
	"leadwatch/crawler/internal/engine"
	"leadwatch/crawler/internal/models"
	"leadwatch/crawler/internal/store"
)

// Fetcher acquires raw threads from the outside world.
type Fetcher interface {
	FetchMultiple(ctx context.Context, subreddits, sortModes []string) ([]models.RawThread, error)
}

// Runner executes the pipeline.
type Runner struct {
	fetcher     Fetcher
	engine      *engine.Engine
	store       *store.Repository
	dataDir     string
	minInterval time.Duration
	now         func() time.Time
}

// NewRunner wires the pipeline stages together.
func NewRunner(fetcher Fetcher, eng *engine.Engine, repo *store.Repository, dataDir string, minInterval time.Duration) *Runner {
	return &Runner{
		fetcher:     fetcher,
		engine:      eng,
		store:       repo,
		dataDir:     dataDir,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Options controls a single run.
type Options struct {
	Subreddits []string
	SortModes  []string
	// Force runs the pipeline even when the minimum interval since the last
	// run has not elapsed.
	Force bool
}

// Summary reports what a run did.
type Summary struct {
	Skipped            bool
	ThreadsFound       int
	OpportunitiesFound int
	NewOpportunities   int
	Elapsed            time.Duration
}

// Run executes one full pipeline pass. Any stage failure that cannot be
// degraded locally is recorded as a terminal error status for the run and
// returned; writes already committed are not rolled back.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if !opts.Force && !r.ShouldRun() {
		log.Info().
			Dur("min_interval", r.minInterval).
			Msg("Skipping run - not enough time since last run")
		return &Summary{Skipped: true}, nil
	}

	start := r.now()
	log.Info().
		Strs("subreddits", opts.Subreddits).
		Strs("sort_modes", opts.SortModes).
		Msg("Starting opportunity crawl")
	writeStatus(r.dataDir, "running", map[string]any{
		"start_time": start.Format(time.RFC3339),
	})

	summary, err := r.run(ctx, opts)
	if err != nil {
		writeStatus(r.dataDir, "error", map[string]any{"error": err.Error()})
		return nil, err
	}

	summary.Elapsed = r.now().Sub(start)
	writeStatus(r.dataDir, "completed", map[string]any{
		"threads_found":       summary.ThreadsFound,
		"opportunities_found": summary.OpportunitiesFound,
		"new_opportunities":   summary.NewOpportunities,
		"elapsed_seconds":     summary.Elapsed.Seconds(),
		"completion_time":     r.now().Format(time.RFC3339),
	})

	log.Info().
		Int("threads", summary.ThreadsFound).
		Int("opportunities", summary.OpportunitiesFound).
		Int("new", summary.NewOpportunities).
		Dur("elapsed", summary.Elapsed).
		Msg("Crawl completed")
	return summary, nil
}

func (r *Runner) run(ctx context.Context, opts Options) (*Summary, error) {
	threads, err := r.fetcher.FetchMultiple(ctx, opts.Subreddits, opts.SortModes)
	if err != nil {
		return nil, fmt.Errorf("thread acquisition failed: %w", err)
	}
	log.Info().Int("threads", len(threads)).Msg("Raw threads fetched")

	rawPath := filepath.Join(r.dataDir, batch.RawThreadsFile)
	total, added, err := batch.MergeThreads(rawPath, threads)
	if err != nil {
		return nil, fmt.Errorf("raw batch merge failed: %w", err)
	}
	log.Info().Int("added", added).Int("total", total).Msg("Raw thread batch updated")

	opportunities, err := r.engine.BuildOpportunities(ctx, threads)
	if err != nil {
		return nil, fmt.Errorf("opportunity extraction failed: %w", err)
	}

	oppPath := filepath.Join(r.dataDir, batch.OpportunitiesFile)
	if _, _, err := batch.MergeOpportunities(oppPath, opportunities); err != nil {
		return nil, fmt.Errorf("opportunity batch merge failed: %w", err)
	}

	// Reconcile the full batch file, not just this run's slice, so records
	// produced by earlier interrupted runs still reach the store.
	newCount, err := r.store.SaveAll(ctx, batch.LoadOpportunities(oppPath))
	if err != nil {
		return nil, fmt.Errorf("store reconciliation failed: %w", err)
	}

	r.logTopOpportunities(ctx)

	return &Summary{
		ThreadsFound:       len(threads),
		OpportunitiesFound: len(opportunities),
		NewOpportunities:   newCount,
	}, nil
}

// ShouldRun reports whether the minimum interval since the last recorded run
// has elapsed. A missing or unreadable status file always allows a run.
func (r *Runner) ShouldRun() bool {
	status := readStatus(r.dataDir)
	if status == nil {
		return true
	}
	return r.now().Sub(status.LastUpdated) >= r.minInterval
}

func (r *Runner) logTopOpportunities(ctx context.Context) {
	top, err := r.store.Top(ctx, 5)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load top opportunities")
		return
	}
	for i, opp := range top {
		log.Info().
			Int("rank", i+1).
			Str("title", opp.Title).
			Str("subreddit", opp.Subreddit).
			Float64("score", opp.Score).
			Str("action", opp.ActionType).
			Msg("Top opportunity")
	}
}
