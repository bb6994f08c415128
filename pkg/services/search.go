package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// upstream search and encyclopedia calls share this cap
const lookupTimeout = 8 * time.Second

const searchResultCount = 7

var (
	ErrSearchDisabled = errors.New("search provider is not configured")
	ErrNoResults      = errors.New("no results")
)

type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// NewSearchProvider picks a provider. With an empty choice SerpApi wins when
// keyed, then Google Custom Search. It returns nil when nothing is usable.
func NewSearchProvider(choice, serpKey, cseKey, cseCX string) SearchProvider {
	serp := func() SearchProvider {
		if serpKey == "" {
			return nil
		}
		return NewSerpAPI(serpKey)
	}
	cse := func() SearchProvider {
		if cseKey == "" || cseCX == "" {
			return nil
		}
		return NewGoogleCSE(cseKey, cseCX)
	}
	switch choice {
	case "none":
		return nil
	case "serpapi":
		return serp()
	case "google":
		return cse()
	}
	if p := serp(); p != nil {
		return p
	}
	return cse()
}

// SerpAPI queries serpapi.com Google results.
type SerpAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpAPI(apiKey string) *SerpAPI {
	return &SerpAPI{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		client:  &http.Client{Timeout: lookupTimeout},
	}
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if s == nil || s.apiKey == "" {
		return nil, ErrSearchDisabled
	}
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("api_key", s.apiKey)
	q.Set("num", strconv.Itoa(searchResultCount))

	var parsed struct {
		OrganicResults []SearchResult `json:"organic_results"`
	}
	if err := getJSON(ctx, s.client, s.baseURL+"?"+q.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("serpapi: %w", err)
	}
	return parsed.OrganicResults, nil
}

// GoogleCSE queries the Google Custom Search JSON API.
type GoogleCSE struct {
	apiKey  string
	cx      string
	baseURL string
	client  *http.Client
}

func NewGoogleCSE(apiKey, cx string) *GoogleCSE {
	return &GoogleCSE{
		apiKey:  apiKey,
		cx:      cx,
		baseURL: "https://www.googleapis.com/customsearch/v1",
		client:  &http.Client{Timeout: lookupTimeout},
	}
}

func (g *GoogleCSE) Name() string { return "google" }

func (g *GoogleCSE) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if g == nil || g.apiKey == "" || g.cx == "" {
		return nil, ErrSearchDisabled
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("key", g.apiKey)
	q.Set("cx", g.cx)
	q.Set("num", strconv.Itoa(searchResultCount))

	var parsed struct {
		Items []SearchResult `json:"items"`
	}
	if err := getJSON(ctx, g.client, g.baseURL+"?"+q.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("google custom search: %w", err)
	}
	return parsed.Items, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "EchoVerse/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
