package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DegradedReply is returned by Complete when no model produced text.
const DegradedReply = "I couldn't process that right now."

var ErrNoCompletion = errors.New("no completion available")

// Completer is the single choke point for generative calls.
type Completer interface {
	// Generate returns the first non-empty model answer or ErrNoCompletion.
	Generate(ctx context.Context, prompt string) (string, error)
	// Complete never fails; it falls back to DegradedReply.
	Complete(ctx context.Context, prompt string) string
}

// modelCall issues one request against one model.
type modelCall func(ctx context.Context, model string, contents []*genai.Content) (string, error)

// GeminiService tries each configured model once, in order.
type GeminiService struct {
	models []string
	call   modelCall
	log    *zap.Logger
}

// NewGeminiService builds the proxy. A missing API key yields a service
// whose every call reports ErrNoCompletion.
func NewGeminiService(ctx context.Context, apiKey string, models []string, log *zap.Logger) (*GeminiService, error) {
	s := &GeminiService{models: models, log: log.With(zap.String("component", "gemini"))}
	if strings.TrimSpace(apiKey) == "" {
		s.log.Warn("GOOGLE_API_KEY is not set, completions disabled")
		return s, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	s.call = func(ctx context.Context, model string, contents []*genai.Content) (string, error) {
		res, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", err
		}
		return res.Text(), nil
	}
	return s, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)})
}

func (s *GeminiService) Complete(ctx context.Context, prompt string) string {
	text, err := s.Generate(ctx, prompt)
	if err != nil {
		return DegradedReply
	}
	return text
}

// GenerateWithImage sends an inline image alongside the prompt.
func (s *GeminiService) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(prompt),
	}
	return s.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

func (s *GeminiService) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	if s.call == nil {
		return "", ErrNoCompletion
	}
	tried := 0
	for _, m := range s.models {
		if strings.TrimSpace(m) == "" {
			continue
		}
		tried++
		text, err := s.call(ctx, m, contents)
		if err != nil {
			s.log.Warn("model call failed", zap.String("model", m), zap.Error(err))
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			return t, nil
		}
		s.log.Warn("model returned empty text", zap.String("model", m))
	}
	return "", fmt.Errorf("%w: %d models tried", ErrNoCompletion, tried)
}
