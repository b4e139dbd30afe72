package models

// RawThread is a single scraped discussion thread, exactly as produced by the
// scraper. Records missing an ID, title or subreddit are skipped downstream.
type RawThread struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Author     string `json:"author"`
	Subreddit  string `json:"subreddit"`
	Body       string `json:"body"`
	Upvotes    int    `json:"upvotes"`
	Comments   int    `json:"comments"`
	Flair      string `json:"flair,omitempty"`
	CreatedUTC string `json:"created_utc"`
	FetchedAt  string `json:"fetched_at"`
}
