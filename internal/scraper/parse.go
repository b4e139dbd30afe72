package scraper

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"leadwatch/crawler/internal/models"
)

// parseListing extracts thread records from a listing page. Posts that
// cannot be parsed are skipped individually.
func (s *Scraper) parseListing(body io.Reader, subreddit string) ([]models.RawThread, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	now := s.now().Format(time.RFC3339)
	var threads []models.RawThread

	doc.Find(`div[data-testid="post-container"]`).Each(func(_ int, post *goquery.Selection) {
		title := strings.TrimSpace(post.Find("h3").First().Text())
		if title == "" {
			title = "No Title"
		}

		href, ok := post.Find(`a[data-click-id="body"]`).First().Attr("href")
		if !ok {
			return
		}
		postURL := s.baseURL + href

		postID := extractPostID(postURL)
		if postID == "" {
			log.Debug().Str("url", postURL).Msg("Post URL has no thread id, skipping")
			return
		}

		author := strings.TrimSpace(post.Find(`a[data-testid="post_author_link"]`).First().Text())
		if author == "" {
			author = "Unknown"
		}

		upvotes := parseCount(strings.TrimSpace(post.Find(`div[data-testid="post-voting-value"]`).First().Text()))

		comments := 0
		post.Find("span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if !strings.Contains(strings.ToLower(text), "comments") {
				return true
			}
			fields := strings.Fields(text)
			if len(fields) > 0 {
				comments = parseCount(fields[0])
			}
			return false
		})

		flair := strings.TrimSpace(post.Find(`div[data-testid="post-flairs"]`).First().Text())

		thread := models.RawThread{
			ID:         postID,
			Title:      title,
			URL:        postURL,
			Author:     author,
			Subreddit:  subreddit,
			Body:       extractBody(post, title),
			Upvotes:    upvotes,
			Comments:   comments,
			Flair:      flair,
			CreatedUTC: now, // Listing pages only show relative times.
			FetchedAt:  now,
		}
		threads = append(threads, thread)
	})

	return threads, nil
}

// extractBody returns the post's preview text: joined paragraphs when
// present, otherwise the content block's text unless it just repeats the
// title.
func extractBody(post *goquery.Selection, title string) string {
	content := post.Find(`div[data-testid="post-content"]`).First()
	if content.Length() == 0 {
		return ""
	}

	paragraphs := content.Find("p")
	if paragraphs.Length() > 0 {
		var parts []string
		paragraphs.Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, " ")
	}

	text := strings.TrimSpace(content.Text())
	if text == title {
		return ""
	}
	return text
}

// extractPostID pulls the thread id out of a permalink of the form
// .../comments/<id>/....
func extractPostID(postURL string) string {
	_, after, found := strings.Cut(postURL, "/comments/")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "/")
	return id
}

// parseCount parses vote and comment counters, including the abbreviated
// "1.2k" and "3m" display forms.
func parseCount(text string) int {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(text, "k"):
		multiplier = 1000
		text = strings.TrimSuffix(text, "k")
	case strings.HasSuffix(text, "m"):
		multiplier = 1000000
		text = strings.TrimSuffix(text, "m")
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return int(value * multiplier)
}
