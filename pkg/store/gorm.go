package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"EchoVerse/models"
)

// GormStore persists the same entities in a SQL database. Whole-entity
// replacement is done as delete-all plus insert inside one transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.AutoMigrate(&models.Message{}, &models.Reminder{}, &models.Blob{}); err != nil {
		return nil, fmt.Errorf("failed migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) LoadHistory(ctx context.Context) ([]models.Message, error) {
	out := []models.Message{}
	if err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return out, nil
}

func (s *GormStore) SaveHistory(ctx context.Context, msgs []models.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		if len(msgs) == 0 {
			return nil
		}
		rows := make([]models.Message, len(msgs))
		for i, m := range msgs {
			rows[i] = models.Message{Who: m.Who, Text: m.Text, Timestamp: m.Timestamp}
		}
		return tx.Create(&rows).Error
	})
}

func (s *GormStore) LoadReminders(ctx context.Context) ([]models.Reminder, error) {
	out := []models.Reminder{}
	if err := s.db.WithContext(ctx).Order("due_at asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	return out, nil
}

func (s *GormStore) SaveReminders(ctx context.Context, items []models.Reminder) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Reminder{}).Error; err != nil {
			return fmt.Errorf("clear reminders: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (s *GormStore) LoadDocument(ctx context.Context) (string, bool, error) {
	return s.loadBlob(ctx, models.BlobDocument)
}

func (s *GormStore) SaveDocument(ctx context.Context, body string) error {
	return s.saveBlob(ctx, models.BlobDocument, body)
}

func (s *GormStore) LoadImageText(ctx context.Context) (string, bool, error) {
	return s.loadBlob(ctx, models.BlobImageText)
}

func (s *GormStore) SaveImageText(ctx context.Context, body string) error {
	return s.saveBlob(ctx, models.BlobImageText, body)
}

func (s *GormStore) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&models.Message{}, &models.Reminder{}, &models.Blob{}} {
			if err := all.Delete(m).Error; err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		return nil
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) loadBlob(ctx context.Context, key string) (string, bool, error) {
	var b models.Blob
	err := s.db.WithContext(ctx).Where("`key` = ?", key).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return b.Body, true, nil
}

func (s *GormStore) saveBlob(ctx context.Context, key, body string) error {
	if err := s.db.WithContext(ctx).Save(&models.Blob{Key: key, Body: body}).Error; err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
