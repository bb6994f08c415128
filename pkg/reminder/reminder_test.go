package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoVerse/models"
)

type memStore struct {
	items []models.Reminder
	saves int
}

func (m *memStore) LoadReminders(ctx context.Context) ([]models.Reminder, error) {
	return append([]models.Reminder(nil), m.items...), nil
}

func (m *memStore) SaveReminders(ctx context.Context, items []models.Reminder) error {
	m.saves++
	m.items = append([]models.Reminder(nil), items...)
	return nil
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler() (*Scheduler, *memStore, *time.Time) {
	st := &memStore{}
	now := t0
	s := NewScheduler(st).WithClock(func() time.Time { return now })
	return s, st, &now
}

func TestParseDelay(t *testing.T) {
	cases := map[string]int{
		"remind me in 30 min to stretch": 30,
		"remind me in 90 sec":            2,
		"remind me in 29 seconds":        1,
		"remind me in 10 secs":           1,
		"remind me in 150 seconds":       3,
		"Remind me IN 2 Hours":           120,
		"remind me in 5minutes":          5,
		"remind me to drink water":       1,
		"set reminder in 0 mins":         0,
	}
	for msg, want := range cases {
		assert.Equal(t, want, ParseDelay(msg), msg)
	}
}

func TestIsCreateRequest(t *testing.T) {
	assert.True(t, IsCreateRequest("Remind me in 5 min"))
	assert.True(t, IsCreateRequest("  set reminder for tea"))
	assert.False(t, IsCreateRequest("can you remind me later"))
}

func TestAddComputesDueTime(t *testing.T) {
	s, st, _ := newTestScheduler()
	r, err := s.Add(context.Background(), "stretch", 30)
	require.NoError(t, err)

	assert.Equal(t, t0.Add(30*time.Minute), r.DueAt)
	assert.False(t, r.Delivered)
	assert.NotEmpty(t, r.ID)
	require.Len(t, st.items, 1)
	assert.Equal(t, r, st.items[0])
}

func TestListDueIsIdempotent(t *testing.T) {
	s, st, _ := newTestScheduler()
	ctx := context.Background()
	_, err := s.Add(ctx, "past", -5)
	require.NoError(t, err)
	_, err = s.Add(ctx, "future", 10)
	require.NoError(t, err)
	saves := st.saves

	first, err := s.ListDue(ctx, t0)
	require.NoError(t, err)
	second, err := s.ListDue(ctx, t0)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, "past", first[0].Task)
	assert.Equal(t, first, second)
	assert.Equal(t, saves, st.saves, "polling must not write")
}

func TestAcknowledgeExcludesFromDue(t *testing.T) {
	s, _, _ := newTestScheduler()
	ctx := context.Background()
	r, _ := s.Add(ctx, "now", 0)

	require.NoError(t, s.Acknowledge(ctx, r.ID, nil))
	due, err := s.ListDue(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	all, _ := s.All(ctx)
	require.Len(t, all, 1)
	assert.True(t, all[0].Delivered)
}

func TestAcknowledgeWithSnooze(t *testing.T) {
	s, _, now := newTestScheduler()
	ctx := context.Background()
	r, _ := s.Add(ctx, "tea", 0)
	require.NoError(t, s.Acknowledge(ctx, r.ID, nil))

	*now = t0.Add(time.Minute)
	snooze := 10
	require.NoError(t, s.Acknowledge(ctx, r.ID, &snooze))

	due, _ := s.ListDue(ctx, t0.Add(5*time.Minute))
	assert.Empty(t, due)
	due, _ = s.ListDue(ctx, t0.Add(11*time.Minute))
	require.Len(t, due, 1)
	assert.False(t, due[0].Delivered)
}

func TestAcknowledgeUnknownIDIsNoop(t *testing.T) {
	s, st, _ := newTestScheduler()
	ctx := context.Background()
	s.Add(ctx, "keep", 1)
	before := append([]models.Reminder(nil), st.items...)

	require.NoError(t, s.Acknowledge(ctx, "missing", nil))
	assert.Equal(t, before, st.items)
}

func TestCorruptDueTimeIsDueNow(t *testing.T) {
	s, st, _ := newTestScheduler()
	st.items = []models.Reminder{{ID: "x", Task: "broken"}}

	due, err := s.ListDue(context.Background(), t0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "x", due[0].ID)
}
