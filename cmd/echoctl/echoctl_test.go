package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoVerse/models"
	"EchoVerse/pkg/reminder"
	"EchoVerse/pkg/store"
)

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--backend", "file", "--data-dir", dir}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func seed(t *testing.T, dir string) (past, future models.Reminder) {
	t.Helper()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Now().UTC()
	sched := reminder.NewScheduler(s).WithClock(func() time.Time { return now.Add(-time.Hour) })
	past, err = sched.Add(ctx, "water plants", 1)
	require.NoError(t, err)
	future, err = sched.Add(ctx, "call mom", 600)
	require.NoError(t, err)
	require.NoError(t, s.SaveHistory(ctx, []models.Message{{Who: models.SenderUser, Text: "hi", Timestamp: now}}))
	return past, future
}

func TestRemindersListAndDue(t *testing.T) {
	dir := t.TempDir()
	past, _ := seed(t, dir)

	var items []models.Reminder
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "reminders", "list")), &items))
	assert.Len(t, items, 2)

	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "reminders", "due")), &items))
	require.Len(t, items, 1)
	assert.Equal(t, past.ID, items[0].ID)
}

func TestRemindersAck(t *testing.T) {
	dir := t.TempDir()
	past, _ := seed(t, dir)

	assert.Equal(t, "ok\n", run(t, dir, "reminders", "ack", past.ID, "--snooze", "10"))
	var items []models.Reminder
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "reminders", "due")), &items))
	assert.Empty(t, items)

	run(t, dir, "reminders", "ack", past.ID)
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "reminders", "list")), &items))
	for _, it := range items {
		if it.ID == past.ID {
			assert.True(t, it.Delivered)
		}
	}
}

func TestHistoryExportAndReset(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	var hist []models.Message
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "history", "export")), &hist))
	require.Len(t, hist, 1)
	assert.Equal(t, "hi", hist[0].Text)

	run(t, dir, "reset")
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "history", "export")), &hist))
	assert.Empty(t, hist)
	var items []models.Reminder
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "reminders", "list")), &items))
	assert.Empty(t, items)
}

func TestHistoryExportToFile(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)
	path := filepath.Join(t.TempDir(), "history.json")

	assert.Empty(t, run(t, dir, "history", "export", "--out", path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var hist []models.Message
	require.NoError(t, json.Unmarshal(b, &hist))
	require.Len(t, hist, 1)
	assert.Equal(t, "hi", hist[0].Text)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--backend", "file", "--data-dir", dir, "history", "export", "-o", filepath.Join(dir, "missing", "h.json")})
	assert.Error(t, cmd.Execute())
}
