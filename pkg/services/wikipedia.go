package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Wikipedia is the encyclopedia fallback: best-matching title, then its
// page summary.
type Wikipedia struct {
	searchURL  string
	summaryURL string
	client     *http.Client
}

func NewWikipedia(searchURL, summaryURL string) *Wikipedia {
	return &Wikipedia{
		searchURL:  searchURL,
		summaryURL: strings.TrimRight(summaryURL, "/") + "/",
		client:     &http.Client{Timeout: lookupTimeout},
	}
}

// Lookup returns the summary extract or ErrNoResults.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("format", "json")

	var sr struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := getJSON(ctx, w.client, w.searchURL+"?"+q.Encode(), &sr); err != nil {
		return "", fmt.Errorf("wikipedia search: %w", err)
	}
	if len(sr.Query.Search) == 0 || sr.Query.Search[0].Title == "" {
		return "", ErrNoResults
	}

	var page struct {
		Extract string `json:"extract"`
	}
	title := sr.Query.Search[0].Title
	if err := getJSON(ctx, w.client, w.summaryURL+url.PathEscape(title), &page); err != nil {
		return "", fmt.Errorf("wikipedia summary %q: %w", title, err)
	}
	if strings.TrimSpace(page.Extract) == "" {
		return "", ErrNoResults
	}
	return page.Extract, nil
}
