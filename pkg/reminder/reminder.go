// Package reminder schedules reminders from relative-time requests. Due-ness
// is computed when polled; nothing runs in the background.
package reminder

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"EchoVerse/models"
)

// Store is the persistence the scheduler needs.
type Store interface {
	LoadReminders(ctx context.Context) ([]models.Reminder, error)
	SaveReminders(ctx context.Context, items []models.Reminder) error
}

type Scheduler struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewScheduler(s Store) *Scheduler {
	return &Scheduler{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// WithClock replaces the scheduler clock.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Add stores a new undelivered reminder due minutes from now.
func (s *Scheduler) Add(ctx context.Context, task string, minutes int) (models.Reminder, error) {
	items, err := s.store.LoadReminders(ctx)
	if err != nil {
		return models.Reminder{}, err
	}
	r := models.Reminder{
		ID:    s.newID(),
		Task:  task,
		DueAt: s.now().UTC().Add(time.Duration(minutes) * time.Minute),
	}
	items = append(items, r)
	if err := s.store.SaveReminders(ctx, items); err != nil {
		return models.Reminder{}, err
	}
	return r, nil
}

// All returns every stored reminder, delivered or not.
func (s *Scheduler) All(ctx context.Context) ([]models.Reminder, error) {
	return s.store.LoadReminders(ctx)
}

// ListDue returns undelivered reminders due at or before now. It never
// mutates state; callers acknowledge explicitly. A reminder with an
// unparseable due time counts as due now.
func (s *Scheduler) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	items, err := s.store.LoadReminders(ctx)
	if err != nil {
		return nil, err
	}
	due := []models.Reminder{}
	for _, r := range items {
		at := r.DueAt
		if at.IsZero() {
			at = now
		}
		if !r.Delivered && !at.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

// Acknowledge marks id delivered, or with snooze reschedules it snooze
// minutes from now. Unknown ids are ignored.
func (s *Scheduler) Acknowledge(ctx context.Context, id string, snooze *int) error {
	items, err := s.store.LoadReminders(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if snooze != nil {
			items[i].DueAt = s.now().UTC().Add(time.Duration(*snooze) * time.Minute)
			items[i].Delivered = false
		} else {
			items[i].Delivered = true
		}
	}
	return s.store.SaveReminders(ctx, items)
}

var (
	createPrefixes = []string{"remind me", "set reminder"}
	delayPattern   = regexp.MustCompile(`\bin\s+(\d+)\s*(sec|secs|seconds|min|mins|minutes|hour|hours)`)
)

// maxDelayMinutes keeps absurd requests from overflowing time.Duration.
const maxDelayMinutes = 525600 * 100

// IsCreateRequest reports whether msg starts with a reminder phrase.
func IsCreateRequest(msg string) bool {
	m := strings.ToLower(strings.TrimSpace(msg))
	for _, p := range createPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}

// ParseDelay extracts "in <N> <unit>" as whole minutes. Seconds round to
// the nearest minute (half up, at least 1), hours multiply by 60, and a
// message without a parseable delay yields 1.
func ParseDelay(msg string) int {
	m := delayPattern.FindStringSubmatch(strings.ToLower(msg))
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxDelayMinutes*60 {
		n = maxDelayMinutes
	}
	var minutes int
	switch {
	case strings.HasPrefix(m[2], "sec"):
		minutes = int(math.Max(1, math.Round(float64(n)/60)))
	case strings.HasPrefix(m[2], "hour"):
		minutes = n * 60
	default:
		minutes = n
	}
	if minutes > maxDelayMinutes {
		minutes = maxDelayMinutes
	}
	return minutes
}
