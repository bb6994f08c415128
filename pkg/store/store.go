// Package store persists chat history, reminders and the two singleton text
// bodies (uploaded document text and OCR image text).
//
// Every entity is read and replaced as a whole. There is no locking: two
// concurrent read-modify-write cycles race and the last writer wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"

	"EchoVerse/models"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// Store is the only component that touches persisted state.
type Store interface {
	LoadHistory(ctx context.Context) ([]models.Message, error)
	SaveHistory(ctx context.Context, msgs []models.Message) error

	LoadReminders(ctx context.Context) ([]models.Reminder, error)
	SaveReminders(ctx context.Context, items []models.Reminder) error

	// LoadDocument reports ok=false when no document has been uploaded.
	LoadDocument(ctx context.Context) (body string, ok bool, err error)
	SaveDocument(ctx context.Context, body string) error

	// LoadImageText reports ok=false when no image has been processed.
	LoadImageText(ctx context.Context) (body string, ok bool, err error)
	SaveImageText(ctx context.Context, body string) error

	// Reset empties history and reminders and removes both text bodies.
	Reset(ctx context.Context) error

	Close() error
}

// Open builds the store selected by backend. The file backend keeps the
// classic on-disk layout under dataDir; sqlite and mysql go through gorm.
func Open(backend, dsn, dataDir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dataDir)
	case "sqlite":
		if dsn == "" {
			dsn = filepath.Join(dataDir, "echoverse.db")
		}
		return NewGormStore(sqlite.Open(dsn))
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("mysql backend requires STORE_DSN")
		}
		return NewGormStore(mysql.Open(dsn))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// AppendHistory appends msgs and keeps only the newest limit entries.
func AppendHistory(ctx context.Context, s Store, limit int, msgs ...models.Message) error {
	hist, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}
	hist = append(hist, msgs...)
	if limit > 0 && len(hist) > limit {
		hist = hist[len(hist)-limit:]
	}
	return s.SaveHistory(ctx, hist)
}
