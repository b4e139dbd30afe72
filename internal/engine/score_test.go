package engine

import (
	"testing"
	"time"

	"leadwatch/crawler/internal/models"
)

func fixedScorer(now time.Time) *Scorer {
	return &Scorer{now: func() time.Time { return now }}
}

func TestScoreZeroEngagementDefaultFreshness(t *testing.T) {
	scorer := NewScorer()
	thread := models.RawThread{CreatedUTC: "not a timestamp"}
	matches := []models.AffiliateMatch{{Strength: 0.4}}

	// 50 base + 0 upvotes + 0 comments + 10 general + 16 match + 5 default freshness
	got := scorer.Score(thread, models.IntentGeneral, matches)
	if got != 81 {
		t.Errorf("expected score 81, got %v", got)
	}
}

func TestScoreClampsToHundred(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scorer := fixedScorer(now)

	thread := models.RawThread{
		Upvotes:    10000,
		Comments:   1000,
		CreatedUTC: now.Format(time.RFC3339),
	}
	matches := []models.AffiliateMatch{{Strength: 1.0}}

	got := scorer.Score(thread, models.IntentDiscovery, matches)
	if got != 100 {
		t.Errorf("expected clamped score 100, got %v", got)
	}
}

func TestScoreFreshnessDecay(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	scorer := fixedScorer(now)

	thread := models.RawThread{
		CreatedUTC: now.Add(-24 * time.Hour).Format(time.RFC3339),
	}

	// 50 base + 10 general + (10 - 24/24) freshness = 69
	got := scorer.Score(thread, models.IntentGeneral, nil)
	if got != 69 {
		t.Errorf("expected score 69, got %v", got)
	}
}

func TestScoreEngagementCaps(t *testing.T) {
	scorer := NewScorer()
	thread := models.RawThread{
		Upvotes:  400, // 400/20 = 20, capped at 15
		Comments: 100, // 100/5 = 20, capped at 10
	}

	// 50 + 15 + 10 + 10 general + 0 match + 5 default freshness
	got := scorer.Score(thread, models.IntentGeneral, nil)
	if got != 90 {
		t.Errorf("expected score 90, got %v", got)
	}
}

func TestScoreIntentWeights(t *testing.T) {
	scorer := NewScorer()
	thread := models.RawThread{}

	testCases := []struct {
		intent models.Intent
		want   float64
	}{
		{models.IntentDiscovery, 80},
		{models.IntentComparison, 75},
		{models.IntentQuestion, 70},
		{models.IntentGeneral, 65},
		{models.IntentShowcase, 60},
	}

	for _, tc := range testCases {
		if got := scorer.Score(thread, tc.intent, nil); got != tc.want {
			t.Errorf("Score with intent %s = %v, want %v", tc.intent, got, tc.want)
		}
	}
}

func TestParseCreatedLayouts(t *testing.T) {
	testCases := []struct {
		value string
		ok    bool
	}{
		{"2025-06-01T12:00:00Z", true},
		{"2025-06-01T12:00:00+02:00", true},
		{"2025-06-01T12:00:00", true},
		{"", false},
		{"yesterday", false},
	}

	for _, tc := range testCases {
		if _, ok := parseCreated(tc.value); ok != tc.ok {
			t.Errorf("parseCreated(%q) ok = %v, want %v", tc.value, ok, tc.ok)
		}
	}
}

func TestActionFor(t *testing.T) {
	testCases := []struct {
		name   string
		score  float64
		intent models.Intent
		want   string
	}{
		{"high score general", 70, models.IntentGeneral, models.ActionComment},
		{"low score discovery", 55, models.IntentDiscovery, models.ActionComment},
		{"low score comparison", 55, models.IntentComparison, models.ActionComment},
		{"low score question", 55, models.IntentQuestion, models.ActionComment},
		{"low score showcase", 55, models.IntentShowcase, models.ActionPost},
		{"low score general", 69.9, models.IntentGeneral, models.ActionPost},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ActionFor(tc.score, tc.intent); got != tc.want {
				t.Errorf("ActionFor(%v, %s) = %s, want %s", tc.score, tc.intent, got, tc.want)
			}
		})
	}
}

func TestPriorityFor(t *testing.T) {
	testCases := []struct {
		score float64
		want  string
	}{
		{100, models.PriorityHigh},
		{80, models.PriorityHigh},
		{79.9, models.PriorityMedium},
		{60, models.PriorityMedium},
		{59.9, models.PriorityLow},
		{0, models.PriorityLow},
	}

	for _, tc := range testCases {
		if got := PriorityFor(tc.score); got != tc.want {
			t.Errorf("PriorityFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
