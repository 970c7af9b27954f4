package models

import "time"

// Series modes. Practice series have no cooldown between attempts,
// live series may enforce one.
const (
	SeriesModePractice = "practice"
	SeriesModeLive     = "live"
)

// Marking policies for multiple-select questions.
const (
	MarkingAllOrNothing = "all-or-nothing"
	MarkingProportional = "proportional"
)

// SeriesQuestion is a reference to a bank question together with the
// marks it carries inside a particular section arrangement.
type SeriesQuestion struct {
	QuestionID    string  `bson:"question_id" json:"question_id"`
	Marks         float64 `bson:"marks" json:"marks"`
	NegativeMarks float64 `bson:"negative_marks" json:"negative_marks"`
}

type Section struct {
	Name                      string           `bson:"name" json:"name"`
	Questions                 []SeriesQuestion `bson:"questions" json:"questions"`
	QuestionPool              []SeriesQuestion `bson:"question_pool,omitempty" json:"question_pool,omitempty"`
	QuestionsToSelectFromPool int              `bson:"questions_to_select_from_pool,omitempty" json:"questions_to_select_from_pool,omitempty"`
	RandomizeQuestionOrder    bool             `bson:"randomize_question_order" json:"randomize_question_order"`
}

// Variant is an alternate arrangement of a series identified by a short
// code such as "A" or "B".
type Variant struct {
	Code     string    `bson:"code" json:"code"`
	Sections []Section `bson:"sections" json:"sections"`
}

type TestSeries struct {
	ID                    string    `bson:"_id,omitempty" json:"id"`
	Title                 string    `bson:"title" json:"title"`
	Description           string    `bson:"description" json:"description"`
	Mode                  string    `bson:"mode" json:"mode"`
	DurationSeconds       int       `bson:"duration_seconds" json:"duration_seconds"`
	Sections              []Section `bson:"sections" json:"sections"`
	Variants              []Variant `bson:"variants,omitempty" json:"variants,omitempty"`
	RandomizeSectionOrder bool      `bson:"randomize_section_order" json:"randomize_section_order"`
	MaxAttempts           int       `bson:"max_attempts" json:"max_attempts"`
	CooldownMinutes       int       `bson:"cooldown_minutes" json:"cooldown_minutes"`
	MultipleMarkingPolicy string    `bson:"multiple_marking_policy" json:"multiple_marking_policy"`
	TotalMarks            float64   `bson:"total_marks" json:"total_marks"`
	AvailableFrom         time.Time `bson:"available_from" json:"available_from"`
	AvailableUntil        time.Time `bson:"available_until" json:"available_until"`
	Status                string    `bson:"status" json:"status"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAvailableAt reports whether the series can be started at the given
// instant. A zero bound means the window is open on that side.
func (s *TestSeries) IsAvailableAt(now time.Time) bool {
	if !s.AvailableFrom.IsZero() && now.Before(s.AvailableFrom) {
		return false
	}
	if !s.AvailableUntil.IsZero() && now.After(s.AvailableUntil) {
		return false
	}
	return true
}

// CooldownDuration returns the required gap between attempts. Practice
// series never impose one.
func (s *TestSeries) CooldownDuration() time.Duration {
	if s.Mode == SeriesModePractice {
		return 0
	}
	return time.Duration(s.CooldownMinutes) * time.Minute
}

// RecomputeTotalMarks sums question marks across the base arrangement.
// Pool-based sections contribute questions_to_select_from_pool times the
// pool's per-question marks (pools are uniform-marks by convention).
func (s *TestSeries) RecomputeTotalMarks() {
	total := 0.0
	for _, sec := range s.Sections {
		if len(sec.QuestionPool) > 0 && sec.QuestionsToSelectFromPool > 0 {
			total += float64(sec.QuestionsToSelectFromPool) * sec.QuestionPool[0].Marks
			continue
		}
		for _, q := range sec.Questions {
			total += q.Marks
		}
	}
	s.TotalMarks = total
}
