package models

import (
	"time"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is one chat history entry. Entries are never edited after append.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Who       string    `gorm:"size:20;not null" json:"who"` // "user" or "bot"
	Text      string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `gorm:"index;not null" json:"ts"`
}
