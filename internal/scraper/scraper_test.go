package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchSubreddit(t *testing.T) {
	var gotPath atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a user agent header")
		}
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	s := New(Config{
		BaseURL:       server.URL,
		RetryDelay:    time.Millisecond,
		MinRequestGap: time.Millisecond,
	})

	threads, err := s.FetchSubreddit(context.Background(), "GamingMouse", "new")
	if err != nil {
		t.Fatalf("FetchSubreddit failed: %v", err)
	}
	if len(threads) != 2 {
		t.Errorf("expected 2 threads, got %d", len(threads))
	}
	if path := gotPath.Load(); path != "/r/GamingMouse/new/" {
		t.Errorf("expected listing path /r/GamingMouse/new/, got %v", path)
	}
}

func TestFetchSubredditInvalidSortFallsBackToHot(t *testing.T) {
	var gotPath atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, MinRequestGap: time.Millisecond})

	if _, err := s.FetchSubreddit(context.Background(), "SaaS", "controversial"); err != nil {
		t.Fatalf("FetchSubreddit failed: %v", err)
	}
	if path := gotPath.Load(); path != "/r/SaaS/hot/" {
		t.Errorf("expected fallback to hot, got %v", path)
	}
}

func TestFetchRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	s := New(Config{
		BaseURL:       server.URL,
		Retries:       3,
		RetryDelay:    time.Millisecond,
		MinRequestGap: time.Millisecond,
	})

	threads, err := s.FetchSubreddit(context.Background(), "SaaS", "hot")
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if len(threads) != 2 {
		t.Errorf("expected 2 threads after retry, got %d", len(threads))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestFetchMultipleSkipsFailedListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/broken/hot/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	s := New(Config{
		BaseURL:       server.URL,
		Retries:       1,
		RetryDelay:    time.Millisecond,
		MinRequestGap: time.Millisecond,
	})

	threads, err := s.FetchMultiple(context.Background(), []string{"broken", "SaaS"}, []string{"hot"})
	if err != nil {
		t.Fatalf("FetchMultiple failed: %v", err)
	}
	if len(threads) != 2 {
		t.Errorf("expected threads from the healthy listing only, got %d", len(threads))
	}
}

func TestFetchMultipleStopsOnCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, MinRequestGap: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.FetchMultiple(ctx, []string{"SaaS"}, []string{"hot"}); err == nil {
		t.Error("expected error from canceled context")
	}
}
