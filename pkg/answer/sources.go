package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"EchoVerse/pkg/cache"
	"EchoVerse/pkg/services"
)

const (
	// NotInDocument is the sentinel the model must reply with when the
	// document does not contain the answer.
	NotInDocument = "Not in document"

	DocumentBudget = 7000
	SearchTopN     = 5
)

// Generator is the subset of services.Completer the sources need.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DocumentLoader reads the singleton uploaded document.
type DocumentLoader interface {
	LoadDocument(ctx context.Context) (string, bool, error)
}

// DocumentSource answers only from the uploaded document.
type DocumentSource struct {
	docs DocumentLoader
	llm  Generator
	log  *zap.Logger
}

func NewDocumentSource(docs DocumentLoader, llm Generator, log *zap.Logger) *DocumentSource {
	return &DocumentSource{docs: docs, llm: llm, log: log}
}

func (d *DocumentSource) Name() string { return "document" }

func (d *DocumentSource) Attempt(ctx context.Context, query string) (string, bool) {
	body, ok, err := d.docs.LoadDocument(ctx)
	if err != nil {
		d.log.Warn("load document failed", zap.Error(err))
		return "", false
	}
	if !ok || strings.TrimSpace(body) == "" {
		return "", false
	}
	text, err := d.llm.Generate(ctx, DocumentPrompt(query, body))
	if err != nil {
		d.log.Warn("document answer failed", zap.Error(err))
		return "", false
	}
	if text = strings.TrimSpace(text); text == "" || IsNotInDocument(text) {
		return "", false
	}
	return text, true
}

// DocumentPrompt constrains the model to the leading DocumentBudget
// characters of body.
func DocumentPrompt(question, body string) string {
	if r := []rune(body); len(r) > DocumentBudget {
		body = string(r[:DocumentBudget])
	}
	return fmt.Sprintf(`From this DOCUMENT, answer the QUESTION.
If answer not found, reply exactly: %s

QUESTION: %s

DOCUMENT:
%s
`, NotInDocument, question, body)
}

// IsNotInDocument matches the sentinel case-insensitively, ignoring a
// trailing period.
func IsNotInDocument(text string) bool {
	t := strings.TrimSuffix(strings.TrimSpace(text), ".")
	return strings.EqualFold(strings.TrimSpace(t), NotInDocument)
}

// SearchSource grounds a completion on web search snippets.
type SearchSource struct {
	provider services.SearchProvider
	llm      Generator
	cache    *cache.Cache
	ttl      time.Duration
	log      *zap.Logger
}

// NewSearchSource accepts a nil provider (search unconfigured) and a nil
// cache (no result caching).
func NewSearchSource(provider services.SearchProvider, llm Generator, c *cache.Cache, ttl time.Duration, log *zap.Logger) *SearchSource {
	return &SearchSource{provider: provider, llm: llm, cache: c, ttl: ttl, log: log}
}

func (s *SearchSource) Name() string { return "search" }

func (s *SearchSource) Attempt(ctx context.Context, query string) (string, bool) {
	if s.provider == nil {
		return "", false
	}
	key := cache.KeyFromStrings("search", s.provider.Name(), strings.ToLower(strings.TrimSpace(query)))
	results := s.search(ctx, key, query)
	if len(results) == 0 {
		return "", false
	}
	text, err := s.llm.Generate(ctx, SearchPrompt(query, results))
	if err != nil || strings.TrimSpace(text) == "" {
		// the next identical question searches again
		s.cache.Delete(key)
		s.log.Warn("search answer failed", zap.Error(err))
		return "", false
	}
	return text, true
}

func (s *SearchSource) search(ctx context.Context, key, query string) []services.SearchResult {
	if v, ok := s.cache.Get(key); ok {
		if results, ok := v.([]services.SearchResult); ok {
			return results
		}
	}
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		if !errors.Is(err, services.ErrSearchDisabled) {
			s.log.Warn("search failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		}
		return nil
	}
	if len(results) > 0 {
		s.cache.Set(key, results, s.ttl)
	}
	return results
}

// SearchPrompt builds the grounding context from the top SearchTopN results.
func SearchPrompt(query string, results []services.SearchResult) string {
	if len(results) > SearchTopN {
		results = results[:SearchTopN]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.Snippet))
	}
	return fmt.Sprintf("Use ONLY this WEB context:\n%s\n\nAnswer: %s", strings.Join(lines, "\n"), query)
}

// Encyclopedia looks up a summary for a query.
type Encyclopedia interface {
	Lookup(ctx context.Context, query string) (string, error)
}

// EncyclopediaSource returns the encyclopedia summary verbatim.
type EncyclopediaSource struct {
	wiki Encyclopedia
	log  *zap.Logger
}

func NewEncyclopediaSource(wiki Encyclopedia, log *zap.Logger) *EncyclopediaSource {
	return &EncyclopediaSource{wiki: wiki, log: log}
}

func (e *EncyclopediaSource) Name() string { return "encyclopedia" }

func (e *EncyclopediaSource) Attempt(ctx context.Context, query string) (string, bool) {
	if e.wiki == nil {
		return "", false
	}
	text, err := e.wiki.Lookup(ctx, query)
	if err != nil {
		if !errors.Is(err, services.ErrNoResults) {
			e.log.Warn("encyclopedia lookup failed", zap.Error(err))
		}
		return "", false
	}
	return text, strings.TrimSpace(text) != ""
}

// CompletionSource asks the model without grounding.
type CompletionSource struct {
	llm Generator
	log *zap.Logger
}

func NewCompletionSource(llm Generator, log *zap.Logger) *CompletionSource {
	return &CompletionSource{llm: llm, log: log}
}

func (c *CompletionSource) Name() string { return "completion" }

func (c *CompletionSource) Attempt(ctx context.Context, query string) (string, bool) {
	text, err := c.llm.Generate(ctx, BriefPrompt(query))
	if err != nil {
		c.log.Warn("completion failed", zap.Error(err))
		return "", false
	}
	return text, strings.TrimSpace(text) != ""
}

func BriefPrompt(query string) string {
	return "Answer briefly: " + query
}
