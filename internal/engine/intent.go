// Package engine contains the opportunity extraction core: intent
// classification, keyword matching against the affiliate catalog, and
// composite opportunity scoring.
package engine

import (
	"regexp"
	"strings"

	"leadwatch/crawler/internal/models"
)

// Intent categories are evaluated in a fixed priority order and the first
// category with any matching pattern wins. When a thread could plausibly fit
// several categories, recommendation-seeking language takes precedence
// because it signals the highest outreach value.
var intentPatterns = []struct {
	intent   models.Intent
	patterns []*regexp.Regexp
}{
	{
		intent: models.IntentDiscovery,
		patterns: compilePatterns(
			`best .*for`,
			`recommend .* (for|to)`,
			`looking for .* (that|which|to)`,
			`what .* (should|would|could|is best)`,
			`suggest`,
			`advice`,
			`help.*choose`,
			`good .* for`,
			`need .* recommendation`,
		),
	},
	{
		intent: models.IntentComparison,
		patterns: compilePatterns(
			`(vs|versus|or|\bor\b)`,
			`compare`,
			`difference between`,
			`which is better`,
			`(better|worse) than`,
			`(alternative|comparison)`,
		),
	},
	{
		intent: models.IntentShowcase,
		patterns: compilePatterns(
			`(just|finally) .* (made|created|launched|finished|completed)`,
			`check out my`,
			`i made`,
			`look what`,
			`sharing my`,
			`i built`,
			`i created`,
		),
	},
	{
		intent: models.IntentQuestion,
		patterns: compilePatterns(
			`how (do|to|can|should)`,
			`what is`,
			`\?$`,
			`(question|confused|help|advice) .* (about|with|on|for)`,
			`problem with`,
			`trouble with`,
			`issue with`,
		),
	},
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// DetectIntent classifies a thread from its title and body. Categories are
// tested top-down with early exit; threads matching nothing are GENERAL.
func DetectIntent(title, body string) models.Intent {
	text := combinedText(title, body)

	for _, group := range intentPatterns {
		for _, re := range group.patterns {
			if re.MatchString(text) {
				return group.intent
			}
		}
	}

	return models.IntentGeneral
}

// combinedText builds the lower-cased blob both the classifier and the
// keyword matcher operate on. The title always comes first; an empty body
// still leaves the joining space in place.
func combinedText(title, body string) string {
	return strings.ToLower(title) + " " + strings.ToLower(body)
}
