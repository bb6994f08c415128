package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// AudioStorage writes rendered speech under the public static directory.
// Files are never cleaned up.
type AudioStorage struct {
	basePath string
	baseURL  string
}

func NewAudioStorage(staticDir string) (*AudioStorage, error) {
	basePath := filepath.Join(staticDir, "tts")
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &AudioStorage{basePath: basePath, baseURL: "/static/tts"}, nil
}

// SaveAudio stores data under a unique name and returns its public URL.
func (s *AudioStorage) SaveAudio(data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	filename := fmt.Sprintf("tts_%s.%s", strings.ToLower(ulid.Make().String()), ext)
	if err := os.WriteFile(filepath.Join(s.basePath, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save audio: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, filename), nil
}
