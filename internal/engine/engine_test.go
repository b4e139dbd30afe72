package engine

import (
	"context"
	"strings"
	"testing"

	"leadwatch/crawler/internal/models"
)

func TestBuildOpportunitiesSkipsAndDrops(t *testing.T) {
	cat, _ := newTestCatalog(t)
	eng := New(cat)

	threads := []models.RawThread{
		{
			ID:        "t1",
			Title:     "Best gaming mouse for FPS?",
			Subreddit: "r/GamingMouse",
			Upvotes:   100,
			Comments:  20,
		},
		{
			// Missing id: malformed, skipped silently.
			Title:     "Best gaming mouse for FPS?",
			Subreddit: "r/GamingMouse",
		},
		{
			// Missing subreddit: malformed, skipped silently.
			ID:    "t2",
			Title: "Best gaming mouse for FPS?",
		},
		{
			// No keyword match: discarded, never stored.
			ID:        "t3",
			Title:     "Completely unrelated discussion",
			Subreddit: "r/SaaS",
		},
	}

	opportunities, err := eng.BuildOpportunities(context.Background(), threads)
	if err != nil {
		t.Fatalf("BuildOpportunities returned error: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opportunities))
	}

	opp := opportunities[0]
	if opp.ThreadID != "t1" {
		t.Errorf("unexpected thread id %q", opp.ThreadID)
	}
	if len(opp.Matches) == 0 {
		t.Error("persisted opportunity must have a non-empty match list")
	}
	if opp.Intent != models.IntentDiscovery {
		t.Errorf("expected DISCOVERY intent, got %s", opp.Intent)
	}
	if opp.Status != models.StatusNew {
		t.Errorf("expected status new, got %q", opp.Status)
	}
	if opp.Score < 0 || opp.Score > 100 {
		t.Errorf("score %v outside [0,100]", opp.Score)
	}
	if opp.Priority != PriorityFor(opp.Score) {
		t.Errorf("priority %q inconsistent with score %v", opp.Priority, opp.Score)
	}
	if opp.ProcessedAt == "" || opp.FetchedAt == "" {
		t.Error("expected processed_at and fetched_at to be stamped")
	}
}

func TestBuildOpportunitiesTruncatesBody(t *testing.T) {
	cat, _ := newTestCatalog(t)
	eng := New(cat)

	longBody := strings.Repeat("x", 480) + " best gaming mouse " + strings.Repeat("y", 200)
	threads := []models.RawThread{
		{ID: "t1", Title: "Setup help", Subreddit: "r/SaaS", Body: longBody},
	}

	opportunities, err := eng.BuildOpportunities(context.Background(), threads)
	if err != nil {
		t.Fatalf("BuildOpportunities returned error: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opportunities))
	}

	body := opportunities[0].Body
	if !strings.HasSuffix(body, "...") {
		t.Errorf("expected truncated body to end with ellipsis, got %q", body[len(body)-10:])
	}
	if got := len([]rune(body)); got != 503 {
		t.Errorf("expected body preview of 503 runes, got %d", got)
	}
}

func TestBuildOpportunitiesSortedByScore(t *testing.T) {
	cat, _ := newTestCatalog(t)
	eng := New(cat)

	threads := []models.RawThread{
		{
			ID:        "low",
			Title:     "Setup help",
			Body:      "maybe a best gaming mouse",
			Subreddit: "r/SaaS",
		},
		{
			ID:        "high",
			Title:     "Best gaming mouse for FPS?",
			Subreddit: "r/GamingMouse",
			Upvotes:   300,
			Comments:  50,
		},
	}

	opportunities, err := eng.BuildOpportunities(context.Background(), threads)
	if err != nil {
		t.Fatalf("BuildOpportunities returned error: %v", err)
	}
	if len(opportunities) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(opportunities))
	}
	if opportunities[0].ThreadID != "high" || opportunities[1].ThreadID != "low" {
		t.Errorf("expected score-descending order, got %s, %s",
			opportunities[0].ThreadID, opportunities[1].ThreadID)
	}
	if opportunities[0].Score < opportunities[1].Score {
		t.Errorf("ordering violated: %v < %v", opportunities[0].Score, opportunities[1].Score)
	}
}
