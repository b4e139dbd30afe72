package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/catalog"
	"leadwatch/crawler/internal/models"
)

// maxBodyLength is the persisted body preview size; longer bodies are
// truncated with a trailing ellipsis.
const maxBodyLength = 500

// Engine turns raw threads into scored opportunities.
type Engine struct {
	matcher *Matcher
	scorer  *Scorer
	now     func() time.Time
}

// New creates an engine over the given catalog.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{
		matcher: NewMatcher(cat),
		scorer:  NewScorer(),
		now:     time.Now,
	}
}

// BuildOpportunities processes one batch of raw threads synchronously.
// Records missing an id, title or subreddit are skipped, as are threads with
// no keyword match; the result is ordered by score descending.
func (e *Engine) BuildOpportunities(ctx context.Context, threads []models.RawThread) ([]models.Opportunity, error) {
	opportunities := make([]models.Opportunity, 0, len(threads))
	skipped := 0

	for _, thread := range threads {
		if thread.ID == "" || thread.Title == "" || thread.Subreddit == "" {
			skipped++
			continue
		}

		intent := DetectIntent(thread.Title, thread.Body)

		matches, err := e.matcher.Match(ctx, thread.Title, thread.Body, thread.Subreddit)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			continue
		}

		score := e.scorer.Score(thread, intent, matches)

		projected := make(models.MatchList, 0, len(matches))
		for _, match := range matches {
			projected = append(projected, models.OpportunityMatch{
				Keyword:       match.Keyword,
				ProgramName:   match.Program.Name,
				ProgramID:     match.Program.ID,
				MatchStrength: match.Strength,
			})
		}

		fetchedAt := thread.FetchedAt
		if fetchedAt == "" {
			fetchedAt = e.now().Format(time.RFC3339)
		}

		opportunities = append(opportunities, models.Opportunity{
			ThreadID:    thread.ID,
			Title:       thread.Title,
			Body:        truncateBody(thread.Body),
			Subreddit:   thread.Subreddit,
			URL:         thread.URL,
			Upvotes:     thread.Upvotes,
			Comments:    thread.Comments,
			CreatedUTC:  thread.CreatedUTC,
			FetchedAt:   fetchedAt,
			Intent:      intent,
			Matches:     projected,
			Score:       score,
			ActionType:  ActionFor(score, intent),
			Priority:    PriorityFor(score),
			Status:      models.StatusNew,
			ProcessedAt: e.now().Format(time.RFC3339),
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})

	log.Info().
		Int("threads", len(threads)).
		Int("skipped", skipped).
		Int("opportunities", len(opportunities)).
		Msg("Batch processed into opportunities")

	return opportunities, nil
}

func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= maxBodyLength {
		return body
	}
	return string(runes[:maxBodyLength]) + "..."
}
