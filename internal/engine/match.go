package engine

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/catalog"
	"leadwatch/crawler/internal/models"
)

const (
	titleMatchBase  = 0.7
	bodyMatchBase   = 0.4
	frequencyStep   = 0.1
	frequencyCap    = 0.3
	subredditBonus  = 0.2
	strengthCeiling = 1.0
)

// Matcher scans thread text against the catalog's keyword list.
type Matcher struct {
	catalog *catalog.Catalog
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(cat *catalog.Catalog) *Matcher {
	return &Matcher{catalog: cat}
}

// Match returns one AffiliateMatch per keyword found in the combined
// title+body text. Keywords whose program id does not resolve are skipped;
// two keywords mapping to the same program produce two matches.
func (m *Matcher) Match(ctx context.Context, title, body, subreddit string) ([]models.AffiliateMatch, error) {
	entries, err := m.catalog.ListKeywords(ctx)
	if err != nil {
		return nil, err
	}

	text := combinedText(title, body)
	titleLower := strings.ToLower(title)
	subredditLower := strings.ToLower(subreddit)

	var matches []models.AffiliateMatch
	programCache := make(map[int64]*models.AffiliateProgram)
	relevanceCache := make(map[string][]models.SubredditInfo)

	for _, entry := range entries {
		keyword := strings.ToLower(entry.Keyword)
		if keyword == "" || !strings.Contains(text, keyword) {
			continue
		}

		program, cached := programCache[entry.AffiliateProgramID]
		if !cached {
			program, err = m.catalog.GetProgram(ctx, entry.AffiliateProgramID)
			if err != nil {
				return nil, err
			}
			programCache[entry.AffiliateProgramID] = program
		}
		if program == nil {
			// Data integrity guard: the keyword references a missing program.
			log.Warn().
				Str("keyword", entry.Keyword).
				Int64("program_id", entry.AffiliateProgramID).
				Msg("Keyword references unknown affiliate program, skipping")
			continue
		}

		titleMatch := strings.Contains(titleLower, keyword)
		count := strings.Count(text, keyword)

		strength := bodyMatchBase
		if titleMatch {
			strength = titleMatchBase
		}
		strength += min(frequencyCap, float64(count)*frequencyStep)

		relevant, ok := relevanceCache[program.Category]
		if !ok {
			relevant, err = m.catalog.SubredditsForCategory(ctx, program.Category)
			if err != nil {
				return nil, err
			}
			relevanceCache[program.Category] = relevant
		}

		subredditRelevant := false
		for _, sub := range relevant {
			if strings.ToLower(sub.Name) == subredditLower {
				subredditRelevant = true
				break
			}
		}
		if subredditRelevant {
			strength += subredditBonus
		}

		if strength > strengthCeiling {
			strength = strengthCeiling
		}
		if strength < 0 {
			strength = 0
		}

		matches = append(matches, models.AffiliateMatch{
			Keyword:           keyword,
			Program:           program,
			Strength:          strength,
			TitleMatch:        titleMatch,
			OccurrenceCount:   count,
			SubredditRelevant: subredditRelevant,
		})
	}

	return matches, nil
}
