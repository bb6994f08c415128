package models

import (
	"encoding/json"
	"time"
)

// Reminder is a pending or delivered reminder.
// The due set is exactly the entries with Delivered == false and DueAt <= now.
type Reminder struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Task      string    `gorm:"type:text;not null" json:"task"`
	DueAt     time.Time `gorm:"index;not null" json:"due_ts"`
	Delivered bool      `gorm:"not null;default:false" json:"delivered"`
}

// UnmarshalJSON tolerates hand-edited or corrupted due timestamps: an
// unparseable due_ts decodes to the zero time, which the scheduler treats as
// "due now".
func (r *Reminder) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        string `json:"id"`
		Task      string `json:"task"`
		DueAt     string `json:"due_ts"`
		Delivered bool   `json:"delivered"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Task = raw.Task
	r.Delivered = raw.Delivered
	r.DueAt = ParseTimestamp(raw.DueAt)
	return nil
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds, and
// naive ISO-8601 timestamps (interpreted as UTC). It returns the zero time
// when nothing matches.
func ParseTimestamp(s string) time.Time {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
