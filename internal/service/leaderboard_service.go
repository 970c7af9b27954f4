package service

import (
	"context"
	"sort"

	"exam-service/internal/models"
)

// LeaderboardService derives ranked summaries from completed attempts on
// demand. In-progress and expired attempts never appear; each student is
// represented by their best attempt.
type LeaderboardService struct {
	Attempts AttemptStore
}

func NewLeaderboardService(attempts AttemptStore) *LeaderboardService {
	return &LeaderboardService{Attempts: attempts}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, seriesID string) ([]models.LeaderboardEntry, error) {
	attempts, err := s.Attempts.FindCompletedBySeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	best := make(map[string]models.Attempt)
	for _, a := range attempts {
		cur, seen := best[a.StudentID]
		if !seen || betterAttempt(a, cur) {
			best[a.StudentID] = a
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(best))
	for _, a := range best {
		entries = append(entries, models.LeaderboardEntry{
			StudentID:   a.StudentID,
			AttemptID:   a.ID,
			Score:       a.Score,
			MaxScore:    a.MaxScore,
			Percentage:  a.Percentage,
			SubmittedAt: a.SubmittedAt,
		})
	}

	// Higher score first; equal scores rank the earlier submission first.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].SubmittedAt.Before(entries[j].SubmittedAt)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func betterAttempt(a, b models.Attempt) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}
