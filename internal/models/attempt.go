package models

import "time"

// Attempt lifecycle states. Completed and expired are terminal.
const (
	AttemptInProgress = "in-progress"
	AttemptCompleted  = "completed"
	AttemptExpired    = "expired"
)

// Per-response scoring statuses set by the scoring engine.
const (
	ResponseCorrect    = "correct"
	ResponseIncorrect  = "incorrect"
	ResponseUnanswered = "unanswered"
)

// SnapshotQuestion is the immutable per-attempt copy of a question,
// including its answer specification, taken when the attempt started.
// Later edits to the bank never reach it.
type SnapshotQuestion struct {
	QuestionID       string              `bson:"question_id" json:"question_id"`
	Type             string              `bson:"type" json:"type"`
	Marks            float64             `bson:"marks" json:"marks"`
	NegativeMarks    float64             `bson:"negative_marks" json:"negative_marks"`
	Text             string              `bson:"text" json:"text"`
	Options          []Option            `bson:"options,omitempty" json:"options,omitempty"`
	Translations     []Translation       `bson:"translations,omitempty" json:"translations,omitempty"`
	CorrectOptionIDs []string            `bson:"correct_option_ids,omitempty" json:"correct_option_ids,omitempty"`
	NumericalAnswer  *NumericalAnswer    `bson:"numerical_answer,omitempty" json:"numerical_answer,omitempty"`
	MatrixAnswer     map[string][]string `bson:"matrix_answer,omitempty" json:"matrix_answer,omitempty"`
}

type SnapshotSection struct {
	Name      string             `bson:"name" json:"name"`
	Questions []SnapshotQuestion `bson:"questions" json:"questions"`
}

// Response is one student's answer state for one snapshot question.
// Selected holds option ids for choice types and the raw value (as sent)
// for integer/numerical types. MatrixSelected is used by matrix questions.
type Response struct {
	QuestionID       string              `bson:"question_id" json:"question_id"`
	Selected         []string            `bson:"selected,omitempty" json:"selected,omitempty"`
	MatrixSelected   map[string][]string `bson:"matrix_selected,omitempty" json:"matrix_selected,omitempty"`
	TimeSpentSeconds int                 `bson:"time_spent_seconds" json:"time_spent_seconds"`
	Attempts         int                 `bson:"attempts" json:"attempts"`
	Flagged          bool                `bson:"flagged" json:"flagged"`
	Confidence       string              `bson:"confidence,omitempty" json:"confidence,omitempty"`
	VisitedAt        time.Time           `bson:"visited_at,omitempty" json:"visited_at,omitempty"`
	LastModifiedAt   time.Time           `bson:"last_modified_at,omitempty" json:"last_modified_at,omitempty"`
	EarnedMarks      float64             `bson:"earned_marks" json:"earned_marks"`
	Status           string              `bson:"status,omitempty" json:"status,omitempty"`
}

// Answered reports whether the response carries any selection at all.
func (r *Response) Answered() bool {
	return len(r.Selected) > 0 || len(r.MatrixSelected) > 0
}

type Attempt struct {
	ID            string            `bson:"_id,omitempty" json:"id"`
	SeriesID      string            `bson:"series_id" json:"series_id"`
	StudentID     string            `bson:"student_id" json:"student_id"`
	VariantCode   string            `bson:"variant_code,omitempty" json:"variant_code,omitempty"`
	SequenceNum   int               `bson:"sequence_num" json:"sequence_num"`
	SessionToken  string            `bson:"session_token" json:"session_token"`
	Sections      []SnapshotSection `bson:"sections" json:"sections"`
	Responses     []Response        `bson:"responses" json:"responses"`
	MarkingPolicy string            `bson:"marking_policy,omitempty" json:"marking_policy,omitempty"`
	Status        string            `bson:"status" json:"status"`
	StartedAt     time.Time         `bson:"started_at" json:"started_at"`
	ExpiresAt     time.Time         `bson:"expires_at" json:"expires_at"`
	LastSavedAt   time.Time         `bson:"last_saved_at,omitempty" json:"last_saved_at,omitempty"`
	SubmittedAt   time.Time         `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	RemainingHint int               `bson:"remaining_hint" json:"remaining_hint"`
	Score         float64           `bson:"score" json:"score"`
	MaxScore      float64           `bson:"max_score" json:"max_score"`
	Percentage    float64           `bson:"percentage" json:"percentage"`
}

// IsExpired reports whether the exam window has closed. Expiry is a data
// condition evaluated lazily at every entry point; there is no sweeper.
func (a *Attempt) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// RemainingSeconds recomputes time left from the authoritative expiry
// timestamp, clamped to zero.
func (a *Attempt) RemainingSeconds(now time.Time) int {
	remaining := int(a.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PublicSections returns the snapshot with answer specifications stripped,
// safe to hand to a client while the attempt is live.
func (a *Attempt) PublicSections() []SnapshotSection {
	sections := make([]SnapshotSection, len(a.Sections))
	for i, sec := range a.Sections {
		out := SnapshotSection{Name: sec.Name, Questions: make([]SnapshotQuestion, len(sec.Questions))}
		for j, q := range sec.Questions {
			q.CorrectOptionIDs = nil
			q.NumericalAnswer = nil
			q.MatrixAnswer = nil
			out.Questions[j] = q
		}
		sections[i] = out
	}
	return sections
}

// SnapshotQuestionCount counts questions across all snapshot sections.
func (a *Attempt) SnapshotQuestionCount() int {
	n := 0
	for _, sec := range a.Sections {
		n += len(sec.Questions)
	}
	return n
}

// AttemptCounter is one record per (student, series) pair. It survives
// deletion of individual attempts so limits hold without scanning history.
type AttemptCounter struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	StudentID     string    `bson:"student_id" json:"student_id"`
	SeriesID      string    `bson:"series_id" json:"series_id"`
	AttemptCount  int       `bson:"attempt_count" json:"attempt_count"`
	LastAttemptAt time.Time `bson:"last_attempt_at" json:"last_attempt_at"`
}
