package models

import "time"

// LeaderboardEntry is one ranked row for a series, derived on demand from
// completed attempts. SubmittedAt is the submission time of the counted
// (best) attempt and breaks score ties, earlier first.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	StudentID   string    `json:"student_id"`
	AttemptID   string    `json:"attempt_id"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}
