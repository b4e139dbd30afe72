package catalog

import "leadwatch/crawler/internal/models"

// Default dataset inserted into a fresh deployment so the matcher has
// reference data before any operator-managed catalog exists.

var defaultPrograms = []models.AffiliateProgram{
	{
		ID:             1,
		Name:           "WriterAI",
		Description:    "AI writing assistant for content creators",
		Commission:     "30%",
		Category:       "Content Creation",
		TargetAudience: "Bloggers, content marketers, writers",
		Keywords:       models.StringList{"AI writer", "writing assistant", "content generation", "blog writing"},
	},
	{
		ID:             2,
		Name:           "GamingGear",
		Description:    "Gaming peripherals and accessories",
		Commission:     "15%",
		Category:       "Gaming",
		TargetAudience: "Gamers, streamers, e-sports enthusiasts",
		Keywords:       models.StringList{"gaming mouse", "mechanical keyboard", "gaming headset", "gaming chair"},
	},
}

var defaultKeywords = []models.KeywordEntry{
	{ID: 1, Keyword: "best gaming mouse", AffiliateProgramID: 2, Status: "active"},
	{ID: 2, Keyword: "AI writer review", AffiliateProgramID: 1, Status: "active"},
	{ID: 3, Keyword: "content generation tool", AffiliateProgramID: 1, Status: "active"},
	{ID: 4, Keyword: "mechanical keyboard comparison", AffiliateProgramID: 2, Status: "active"},
}

var defaultSubreddits = []models.SubredditInfo{
	{ID: 1, Name: "r/Blogging", Category: "Content Creation", SubscriberCount: 150000},
	{ID: 2, Name: "r/SEO", Category: "Marketing", SubscriberCount: 175000},
	{ID: 3, Name: "r/contentmarketing", Category: "Marketing", SubscriberCount: 90000},
	{ID: 4, Name: "r/GamingMouse", Category: "Gaming", SubscriberCount: 50000},
	{ID: 5, Name: "r/MechanicalKeyboards", Category: "Gaming", SubscriberCount: 700000},
}
