package engine

import (
	"time"

	"leadwatch/crawler/internal/models"
)

const (
	baseScore = 50.0

	upvoteDivisor = 20.0
	upvoteCap     = 15.0

	commentDivisor = 5.0
	commentCap     = 10.0

	matchWeight = 40.0

	defaultFreshness = 5.0
	maxFreshness     = 10.0

	commentActionThreshold  = 70.0
	highPriorityThreshold   = 80.0
	mediumPriorityThreshold = 60.0
)

// intentWeights reflect how receptive each intent category is to outreach.
var intentWeights = map[models.Intent]float64{
	models.IntentDiscovery:  25,
	models.IntentComparison: 20,
	models.IntentQuestion:   15,
	models.IntentShowcase:   5,
	models.IntentGeneral:    10,
}

// createdLayouts are tried in order when parsing a thread's creation
// timestamp for the freshness bonus.
var createdLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Scorer computes the composite opportunity score. The clock is injectable
// so freshness arithmetic is testable.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Score combines engagement, intent, best match strength and content
// freshness into a single value clamped to [0,100].
func (s *Scorer) Score(thread models.RawThread, intent models.Intent, matches []models.AffiliateMatch) float64 {
	upvoteScore := min(upvoteCap, float64(thread.Upvotes)/upvoteDivisor)
	commentScore := min(commentCap, float64(thread.Comments)/commentDivisor)

	intentScore, ok := intentWeights[intent]
	if !ok {
		intentScore = intentWeights[models.IntentGeneral]
	}

	matchScore := 0.0
	if best := BestMatch(matches); best != nil {
		matchScore = best.Strength * matchWeight
	}

	total := baseScore + upvoteScore + commentScore + intentScore + matchScore + s.freshness(thread.CreatedUTC)

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

// freshness rewards newer content. An unparseable or missing timestamp is a
// policy default, not a failure.
func (s *Scorer) freshness(createdUTC string) float64 {
	created, ok := parseCreated(createdUTC)
	if !ok {
		return defaultFreshness
	}

	ageHours := s.now().Sub(created).Hours()
	return max(0, maxFreshness-ageHours/24)
}

func parseCreated(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BestMatch returns the match with the highest strength, or nil for an empty
// list. Ties keep the earliest match.
func BestMatch(matches []models.AffiliateMatch) *models.AffiliateMatch {
	var best *models.AffiliateMatch
	for i := range matches {
		if best == nil || matches[i].Strength > best.Strength {
			best = &matches[i]
		}
	}
	return best
}

// ActionFor recommends commenting for any high score or buying-intent
// language, and posting otherwise.
func ActionFor(score float64, intent models.Intent) string {
	if score >= commentActionThreshold {
		return models.ActionComment
	}
	switch intent {
	case models.IntentDiscovery, models.IntentComparison, models.IntentQuestion:
		return models.ActionComment
	}
	return models.ActionPost
}

// PriorityFor derives the priority tier from the final score.
func PriorityFor(score float64) string {
	switch {
	case score >= highPriorityThreshold:
		return models.PriorityHigh
	case score >= mediumPriorityThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
