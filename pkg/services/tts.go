package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrSynthesisDisabled = errors.New("speech synthesis is disabled")

// Synthesizer renders speech audio (MP3) for text in a synthesis locale.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale string) ([]byte, error)
}

// the translate endpoint rejects longer requests
const ttsChunkRunes = 200

// GoogleTTS uses the public Google Translate speech endpoint, one request
// per chunk, concatenating the MP3 frames.
type GoogleTTS struct {
	baseURL string
	client  *http.Client
}

func NewGoogleTTS() *GoogleTTS {
	return &GoogleTTS{
		baseURL: "https://translate.google.com/translate_tts",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	if g == nil {
		return nil, ErrSynthesisDisabled
	}
	chunks := splitChunks(text, ttsChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}
	var out bytes.Buffer
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", locale)
		q.Set("q", chunk)
		q.Set("total", strconv.Itoa(len(chunks)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http error: %w", err)
		}
		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tts chunk %d: status %d", i, resp.StatusCode)
		}
		out.Write(b)
	}
	return out.Bytes(), nil
}

// splitChunks breaks text on whitespace into pieces of at most n runes.
// Words longer than n are hard-split.
func splitChunks(text string, n int) []string {
	var chunks []string
	var cur []rune
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			chunks = append(chunks, s)
		}
		cur = cur[:0]
	}
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > n {
			flush()
			chunks = append(chunks, string(w[:n]))
			w = w[n:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > n {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()
	return chunks
}
