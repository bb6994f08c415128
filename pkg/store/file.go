package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"EchoVerse/models"
)

const (
	historyFile   = "chathistory.json"
	documentFile  = "doc.txt"
	imageTextFile = "img.txt"
	reminderFile  = "reminders.json"
)

// FileStore keeps history and reminders as JSON arrays and the text bodies as
// raw files. Unreadable or malformed JSON loads as an empty collection.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &FileStore{dir: dir}
	for _, name := range []string{historyFile, reminderFile} {
		p := s.path(name)
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			if err := writeAtomic(p, []byte("[]")); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *FileStore) path(name string) string { return filepath.Join(s.dir, name) }

func (s *FileStore) LoadHistory(ctx context.Context) ([]models.Message, error) {
	var out []models.Message
	s.loadJSON(historyFile, &out)
	if out == nil {
		out = []models.Message{}
	}
	return out, nil
}

func (s *FileStore) SaveHistory(ctx context.Context, msgs []models.Message) error {
	if msgs == nil {
		msgs = []models.Message{}
	}
	return s.saveJSON(historyFile, msgs)
}

func (s *FileStore) LoadReminders(ctx context.Context) ([]models.Reminder, error) {
	var out []models.Reminder
	s.loadJSON(reminderFile, &out)
	if out == nil {
		out = []models.Reminder{}
	}
	return out, nil
}

func (s *FileStore) SaveReminders(ctx context.Context, items []models.Reminder) error {
	if items == nil {
		items = []models.Reminder{}
	}
	return s.saveJSON(reminderFile, items)
}

func (s *FileStore) LoadDocument(ctx context.Context) (string, bool, error) {
	return s.readText(documentFile)
}

func (s *FileStore) SaveDocument(ctx context.Context, body string) error {
	return writeAtomic(s.path(documentFile), []byte(body))
}

func (s *FileStore) LoadImageText(ctx context.Context) (string, bool, error) {
	return s.readText(imageTextFile)
}

func (s *FileStore) SaveImageText(ctx context.Context, body string) error {
	return writeAtomic(s.path(imageTextFile), []byte(body))
}

func (s *FileStore) Reset(ctx context.Context) error {
	if err := s.SaveHistory(ctx, nil); err != nil {
		return err
	}
	for _, name := range []string{documentFile, imageTextFile} {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return s.SaveReminders(ctx, nil)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) loadJSON(name string, v any) {
	b, err := os.ReadFile(s.path(name))
	if err != nil || len(b) == 0 {
		return
	}
	_ = json.Unmarshal(b, v)
}

func (s *FileStore) saveJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeAtomic(s.path(name), b)
}

func (s *FileStore) readText(name string) (string, bool, error) {
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), true, nil
}

// writeAtomic replaces the file in one rename so readers never see a
// half-written entity.
func writeAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
