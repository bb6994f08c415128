package services

import (
	"context"
	"errors"
	"fmt"
)

const ocrPrompt = "Extract all readable text from this image exactly as written. " +
	"Return only the text, preserving line breaks. If there is no text, return nothing."

// ImageReader extracts text from an image.
type ImageReader interface {
	ReadText(ctx context.Context, image []byte, mimeType string) (string, error)
}

type imageGenerator interface {
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// GeminiOCR performs OCR with a multimodal model.
type GeminiOCR struct {
	gen imageGenerator
}

func NewGeminiOCR(gen imageGenerator) *GeminiOCR {
	return &GeminiOCR{gen: gen}
}

func (o *GeminiOCR) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, err := o.gen.GenerateWithImage(ctx, ocrPrompt, image, mimeType)
	if errors.Is(err, ErrNoCompletion) {
		// unconfigured or blank image: stored as empty text
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
