package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"EchoVerse/pkg/cache"
	"EchoVerse/pkg/services"
)

type fakeGen struct {
	reply   func(prompt string) (string, error)
	prompts []string
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply(prompt)
}

func genReturning(text string, err error) *fakeGen {
	return &fakeGen{reply: func(string) (string, error) { return text, err }}
}

type fakeDocs struct {
	body string
	ok   bool
}

func (f fakeDocs) LoadDocument(ctx context.Context) (string, bool, error) { return f.body, f.ok, nil }

type fakeProvider struct {
	results []services.SearchResult
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Search(ctx context.Context, q string) ([]services.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeWiki struct {
	text string
	err  error
}

func (f fakeWiki) Lookup(ctx context.Context, q string) (string, error) { return f.text, f.err }

type staticSource struct {
	name string
	text string
	ok   bool
	hits *[]string
}

func (s staticSource) Name() string { return s.name }
func (s staticSource) Attempt(ctx context.Context, q string) (string, bool) {
	*s.hits = append(*s.hits, s.name)
	return s.text, s.ok
}

func TestChainFirstSuccessWins(t *testing.T) {
	var hits []string
	c := NewChain(zap.NewNop(),
		staticSource{name: "a", hits: &hits},
		staticSource{name: "b", text: "from b", ok: true, hits: &hits},
		staticSource{name: "c", text: "from c", ok: true, hits: &hits},
	)

	text, src, ok := c.Answer(context.Background(), "q")
	assert.True(t, ok)
	assert.Equal(t, "from b", text)
	assert.Equal(t, "b", src)
	assert.Equal(t, []string{"a", "b"}, hits)
}

func TestChainAllEmpty(t *testing.T) {
	var hits []string
	c := NewChain(zap.NewNop(), staticSource{name: "a", hits: &hits})
	_, _, ok := c.Answer(context.Background(), "q")
	assert.False(t, ok)
}

func TestDocumentSourceSkipsWithoutDocument(t *testing.T) {
	gen := genReturning("anything", nil)
	d := NewDocumentSource(fakeDocs{}, gen, zap.NewNop())

	_, ok := d.Attempt(context.Background(), "q")
	assert.False(t, ok)
	assert.Empty(t, gen.prompts, "model must not be invoked without a document")

	d = NewDocumentSource(fakeDocs{body: "  \n", ok: true}, gen, zap.NewNop())
	_, ok = d.Attempt(context.Background(), "q")
	assert.False(t, ok)
	assert.Empty(t, gen.prompts)
}

func TestDocumentSourceSentinelAdvances(t *testing.T) {
	for _, sentinel := range []string{"Not in document", "NOT IN DOCUMENT", " not in document. "} {
		gen := genReturning(sentinel, nil)
		d := NewDocumentSource(fakeDocs{body: "doc", ok: true}, gen, zap.NewNop())
		_, ok := d.Attempt(context.Background(), "q")
		assert.False(t, ok, sentinel)
	}
}

func TestDocumentSourceAnswersAndTruncates(t *testing.T) {
	gen := genReturning("The fee is 10.", nil)
	body := strings.Repeat("a", DocumentBudget) + "TAIL"
	d := NewDocumentSource(fakeDocs{body: body, ok: true}, gen, zap.NewNop())

	text, ok := d.Attempt(context.Background(), "what is the fee")
	require.True(t, ok)
	assert.Equal(t, "The fee is 10.", text)
	require.Len(t, gen.prompts, 1)
	assert.NotContains(t, gen.prompts[0], "TAIL")
	assert.Contains(t, gen.prompts[0], "reply exactly: Not in document")
	assert.Contains(t, gen.prompts[0], "QUESTION: what is the fee")
}

func TestDocumentSourceModelFailureAdvances(t *testing.T) {
	d := NewDocumentSource(fakeDocs{body: "doc", ok: true}, genReturning("", services.ErrNoCompletion), zap.NewNop())
	_, ok := d.Attempt(context.Background(), "q")
	assert.False(t, ok)
}

func TestSearchSource(t *testing.T) {
	results := make([]services.SearchResult, 7)
	for i := range results {
		results[i] = services.SearchResult{Title: "T" + string(rune('0'+i)), Snippet: "S"}
	}
	p := &fakeProvider{results: results}
	gen := genReturning("grounded", nil)
	c := cache.New(10)
	s := NewSearchSource(p, gen, c, time.Minute, zap.NewNop())

	text, ok := s.Attempt(context.Background(), "Who?")
	require.True(t, ok)
	assert.Equal(t, "grounded", text)
	assert.Contains(t, gen.prompts[0], "- T4: S")
	assert.NotContains(t, gen.prompts[0], "T5")
	assert.True(t, strings.HasSuffix(gen.prompts[0], "Answer: Who?"))

	// second identical query is served from cache
	_, ok = s.Attempt(context.Background(), " who? ")
	require.True(t, ok)
	assert.Equal(t, 1, p.calls)
}

func TestSearchSourceDropsCacheWhenAnswerFails(t *testing.T) {
	p := &fakeProvider{results: []services.SearchResult{{Title: "T", Snippet: "S"}}}
	failing := genReturning("", services.ErrNoCompletion)
	c := cache.New(10)
	s := NewSearchSource(p, failing, c, time.Minute, zap.NewNop())

	_, ok := s.Attempt(context.Background(), "q")
	require.False(t, ok)
	_, cached := c.Get(cache.KeyFromStrings("search", "fake", "q"))
	assert.False(t, cached)

	s = NewSearchSource(p, genReturning("grounded", nil), c, time.Minute, zap.NewNop())
	text, ok := s.Attempt(context.Background(), "q")
	require.True(t, ok)
	assert.Equal(t, "grounded", text)
	assert.Equal(t, 2, p.calls, "a failed answer is not served from cache")
}

func TestSearchSourceSkips(t *testing.T) {
	gen := genReturning("x", nil)

	s := NewSearchSource(nil, gen, nil, 0, zap.NewNop())
	_, ok := s.Attempt(context.Background(), "q")
	assert.False(t, ok)

	s = NewSearchSource(&fakeProvider{err: errors.New("boom")}, gen, nil, 0, zap.NewNop())
	_, ok = s.Attempt(context.Background(), "q")
	assert.False(t, ok)

	s = NewSearchSource(&fakeProvider{}, gen, nil, 0, zap.NewNop())
	_, ok = s.Attempt(context.Background(), "q")
	assert.False(t, ok)
	assert.Empty(t, gen.prompts)
}

func TestEncyclopediaAndCompletionSources(t *testing.T) {
	e := NewEncyclopediaSource(fakeWiki{text: "Summary."}, zap.NewNop())
	text, ok := e.Attempt(context.Background(), "q")
	assert.True(t, ok)
	assert.Equal(t, "Summary.", text)

	e = NewEncyclopediaSource(fakeWiki{err: services.ErrNoResults}, zap.NewNop())
	_, ok = e.Attempt(context.Background(), "q")
	assert.False(t, ok)

	gen := genReturning("brief", nil)
	c := NewCompletionSource(gen, zap.NewNop())
	text, ok = c.Attempt(context.Background(), "q")
	assert.True(t, ok)
	assert.Equal(t, "brief", text)
	assert.Equal(t, "Answer briefly: q", gen.prompts[0])

	c = NewCompletionSource(genReturning("", services.ErrNoCompletion), zap.NewNop())
	_, ok = c.Attempt(context.Background(), "q")
	assert.False(t, ok)
}
