package service

import (
	"context"
	"testing"
	"time"

	"exam-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedAttempt(id, studentID string, score float64, submittedAt time.Time) *models.Attempt {
	return &models.Attempt{
		ID:          id,
		SeriesID:    "series-1",
		StudentID:   studentID,
		Status:      models.AttemptCompleted,
		Score:       score,
		MaxScore:    100,
		Percentage:  score,
		SubmittedAt: submittedAt,
	}
}

func TestLeaderboardExcludesUnfinishedAttempts(t *testing.T) {
	attempts := newMemAttemptStore()
	attempts.put(completedAttempt("a1", "alice", 80, testStart))
	attempts.put(&models.Attempt{ID: "a2", SeriesID: "series-1", StudentID: "bob", Status: models.AttemptInProgress, Score: 99})
	attempts.put(&models.Attempt{ID: "a3", SeriesID: "series-1", StudentID: "carol", Status: models.AttemptExpired, Score: 95})

	entries, err := NewLeaderboardService(attempts).GetLeaderboard(context.Background(), "series-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].StudentID)
}

func TestLeaderboardBestAttemptPerStudent(t *testing.T) {
	attempts := newMemAttemptStore()
	attempts.put(completedAttempt("a1", "alice", 60, testStart))
	attempts.put(completedAttempt("a2", "alice", 85, testStart.Add(time.Hour)))
	attempts.put(completedAttempt("a3", "alice", 70, testStart.Add(2*time.Hour)))
	attempts.put(completedAttempt("b1", "bob", 75, testStart))

	entries, err := NewLeaderboardService(attempts).GetLeaderboard(context.Background(), "series-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].StudentID)
	assert.Equal(t, "a2", entries[0].AttemptID)
	assert.Equal(t, 85.0, entries[0].Score)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "bob", entries[1].StudentID)
}

func TestLeaderboardTieBreaksOnEarlierSubmission(t *testing.T) {
	attempts := newMemAttemptStore()
	attempts.put(completedAttempt("a1", "alice", 90, testStart.Add(30*time.Minute)))
	attempts.put(completedAttempt("b1", "bob", 90, testStart.Add(10*time.Minute)))
	attempts.put(completedAttempt("c1", "carol", 90, testStart.Add(50*time.Minute)))

	entries, err := NewLeaderboardService(attempts).GetLeaderboard(context.Background(), "series-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"bob", "alice", "carol"}, []string{
		entries[0].StudentID, entries[1].StudentID, entries[2].StudentID,
	})
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestLeaderboardScopedToSeries(t *testing.T) {
	attempts := newMemAttemptStore()
	attempts.put(completedAttempt("a1", "alice", 80, testStart))
	other := completedAttempt("z1", "zoe", 100, testStart)
	other.SeriesID = "series-2"
	attempts.put(other)

	entries, err := NewLeaderboardService(attempts).GetLeaderboard(context.Background(), "series-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].StudentID)
}

func TestLeaderboardEmptySeries(t *testing.T) {
	entries, err := NewLeaderboardService(newMemAttemptStore()).GetLeaderboard(context.Background(), "series-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
