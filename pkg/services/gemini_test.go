package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func newStubGemini(models []string, answers map[string]string, fails map[string]bool) (*GeminiService, *[]string) {
	var calls []string
	s := &GeminiService{models: models, log: zap.NewNop()}
	s.call = func(ctx context.Context, model string, contents []*genai.Content) (string, error) {
		calls = append(calls, model)
		if fails[model] {
			return "", errors.New("status 503: unavailable")
		}
		return answers[model], nil
	}
	return s, &calls
}

func TestGenerateFallsThroughModelsInOrder(t *testing.T) {
	s, calls := newStubGemini(
		[]string{"a", "b", "c"},
		map[string]string{"b": "  ", "c": " answer from c "},
		map[string]bool{"a": true},
	)

	got, err := s.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "answer from c", got)
	assert.Equal(t, []string{"a", "b", "c"}, *calls)
}

func TestGenerateStopsAtFirstSuccess(t *testing.T) {
	s, calls := newStubGemini([]string{"a", "b"}, map[string]string{"a": "ok", "b": "never"}, nil)

	got, err := s.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []string{"a"}, *calls, "each model is tried at most once and no retries happen")
}

func TestCompleteDegrades(t *testing.T) {
	s, _ := newStubGemini([]string{"a"}, nil, map[string]bool{"a": true})

	_, err := s.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoCompletion)
	assert.Equal(t, DegradedReply, s.Complete(context.Background(), "hi"))
}

func TestUnconfiguredServiceDegrades(t *testing.T) {
	s, err := NewGeminiService(context.Background(), "", []string{"a"}, zap.NewNop())
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoCompletion)
	assert.Equal(t, DegradedReply, s.Complete(context.Background(), "hi"))
}
