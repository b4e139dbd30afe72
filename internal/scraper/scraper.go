// Package scraper fetches subreddit listing pages without API access and
// extracts raw thread records from the HTML.
package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"leadwatch/crawler/internal/models"
)

const defaultBaseURL = "https://www.reddit.com"

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
}

var validSortModes = map[string]bool{
	"hot":    true,
	"new":    true,
	"top":    true,
	"rising": true,
}

// Config tunes request behavior for the scraper.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	Retries        int
	RetryDelay     time.Duration
	// MinRequestGap is the pacing between listing requests.
	MinRequestGap time.Duration
}

// Scraper retrieves and parses subreddit listings.
type Scraper struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	retries    int
	retryDelay time.Duration
	now        func() time.Time
}

// New creates a scraper. Zero config fields fall back to defaults.
func New(cfg Config) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.MinRequestGap <= 0 {
		cfg.MinRequestGap = 3 * time.Second
	}

	return &Scraper{
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.MinRequestGap), 1),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		now:        time.Now,
	}
}

// FetchSubreddit retrieves one listing page and returns its threads. The
// subreddit name is given without the r/ prefix; unknown sort modes fall
// back to hot.
func (s *Scraper) FetchSubreddit(ctx context.Context, subreddit, sortMode string) ([]models.RawThread, error) {
	if !validSortModes[sortMode] {
		sortMode = "hot"
	}

	listingURL := fmt.Sprintf("%s/r/%s/%s/", s.baseURL, subreddit, sortMode)
	log.Debug().Str("url", listingURL).Msg("Fetching subreddit listing")

	body, err := s.fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", listingURL, err)
	}
	defer body.Close()

	threads, err := s.parseListing(body, "r/"+subreddit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", listingURL, err)
	}
	return threads, nil
}

// FetchMultiple walks every subreddit/sort-mode combination, pacing requests
// through the rate limiter. A failed listing is logged and skipped; the
// remaining combinations are still fetched.
func (s *Scraper) FetchMultiple(ctx context.Context, subreddits, sortModes []string) ([]models.RawThread, error) {
	if len(sortModes) == 0 {
		sortModes = []string{"hot", "new", "top"}
	}

	var all []models.RawThread
	for _, subreddit := range subreddits {
		for _, mode := range sortModes {
			if err := s.limiter.Wait(ctx); err != nil {
				return all, err
			}

			threads, err := s.FetchSubreddit(ctx, subreddit, mode)
			if err != nil {
				log.Warn().
					Err(err).
					Str("subreddit", subreddit).
					Str("sort", mode).
					Msg("Listing fetch failed, continuing")
				continue
			}

			log.Info().
				Str("subreddit", subreddit).
				Str("sort", mode).
				Int("threads", len(threads)).
				Msg("Listing fetched")
			all = append(all, threads...)
		}
	}
	return all, nil
}

// fetch performs the HTTP request with retries, a rotating user agent, and
// a randomized delay between attempts.
func (s *Scraper) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			delay := s.retryDelay + time.Duration(1000+rand.Intn(2000))*time.Millisecond
			log.Debug().
				Dur("delay", delay).
				Int("attempt", attempt+1).
				Str("url", url).
				Msg("Retrying request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %s", resp.Status)
			continue
		}
		return resp.Body, nil
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", s.retries, lastErr)
}
