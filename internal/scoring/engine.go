package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"exam-service/internal/models"
)

const epsilon = 1e-9

// Aggregate is the attempt-level outcome. MaxScore always sums marks over
// every snapshot question, answered or not.
type Aggregate struct {
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
}

// Engine evaluates responses against the answer specifications frozen in
// the attempt snapshot. It never consults the live question bank, so a
// historical score cannot change when a question is edited or deleted.
type Engine struct {
	multiplePolicy string
}

// NewEngine builds an engine with the given multiple-select marking
// policy; anything other than "proportional" scores multiple-select
// all-or-nothing.
func NewEngine(multiplePolicy string) *Engine {
	if multiplePolicy == "" {
		multiplePolicy = models.MarkingAllOrNothing
	}
	return &Engine{multiplePolicy: multiplePolicy}
}

// Score is a pure function of (snapshot, responses). It returns one scored
// response per snapshot question, in snapshot order, carrying over the
// client-tracked metadata of any matching submitted response. A response
// it cannot evaluate earns zero; scoring never fails.
func (e *Engine) Score(sections []models.SnapshotSection, responses []models.Response) ([]models.Response, Aggregate) {
	byQuestion := make(map[string]models.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	var scored []models.Response
	var agg Aggregate
	for _, sec := range sections {
		for _, q := range sec.Questions {
			resp, ok := byQuestion[q.QuestionID]
			if !ok {
				resp = models.Response{QuestionID: q.QuestionID}
			}
			resp.EarnedMarks, resp.Status = e.evaluate(&q, &resp)
			agg.Score += resp.EarnedMarks
			agg.MaxScore += q.Marks
			scored = append(scored, resp)
		}
	}

	if agg.MaxScore > 0 {
		agg.Percentage = 100 * agg.Score / agg.MaxScore
	}
	return scored, agg
}

func (e *Engine) evaluate(q *models.SnapshotQuestion, r *models.Response) (float64, string) {
	if !r.Answered() {
		return 0, models.ResponseUnanswered
	}

	// Each type reads only the response field it expects; a response whose
	// shape does not match the question type is treated as unanswered, a
	// per-question data error that must not abort the submission.
	switch q.Type {
	case models.QuestionTypeSingle:
		if len(r.Selected) == 0 {
			return 0, models.ResponseUnanswered
		}
		return e.markBinary(q, len(r.Selected) == 1 && len(q.CorrectOptionIDs) == 1 && r.Selected[0] == q.CorrectOptionIDs[0])
	case models.QuestionTypeMultiple:
		if len(r.Selected) == 0 {
			return 0, models.ResponseUnanswered
		}
		return e.evaluateMultiple(q, r)
	case models.QuestionTypeInteger, models.QuestionTypeNumerical:
		if len(r.Selected) == 0 {
			return 0, models.ResponseUnanswered
		}
		return e.evaluateNumerical(q, r)
	case models.QuestionTypeMatrix:
		if len(r.MatrixSelected) == 0 {
			return 0, models.ResponseUnanswered
		}
		return e.markBinary(q, matrixEqual(r.MatrixSelected, q.MatrixAnswer))
	}

	// Unknown type: zero credit, never a penalty and never an error.
	return 0, models.ResponseUnanswered
}

func (e *Engine) markBinary(q *models.SnapshotQuestion, correct bool) (float64, string) {
	if correct {
		return q.Marks, models.ResponseCorrect
	}
	return -q.NegativeMarks, models.ResponseIncorrect
}

func (e *Engine) evaluateMultiple(q *models.SnapshotQuestion, r *models.Response) (float64, string) {
	correct := stringSet(q.CorrectOptionIDs)
	selected := stringSet(r.Selected)

	if setsEqual(selected, correct) {
		return q.Marks, models.ResponseCorrect
	}

	if e.multiplePolicy == models.MarkingProportional && len(correct) > 0 {
		// Partial credit for a strict subset of the correct set; any wrong
		// pick forfeits it.
		allValid := true
		for id := range selected {
			if !correct[id] {
				allValid = false
				break
			}
		}
		if allValid {
			fraction := float64(len(selected)) / float64(len(correct))
			return q.Marks * fraction, models.ResponseIncorrect
		}
	}

	return -q.NegativeMarks, models.ResponseIncorrect
}

func (e *Engine) evaluateNumerical(q *models.SnapshotQuestion, r *models.Response) (float64, string) {
	value, err := strconv.ParseFloat(strings.TrimSpace(r.Selected[0]), 64)
	if err != nil {
		// Unparsable answer is a per-question data error: zero credit,
		// the rest of the submission still scores.
		return 0, models.ResponseUnanswered
	}

	spec := q.NumericalAnswer
	if spec == nil {
		return 0, models.ResponseUnanswered
	}

	return e.markBinary(q, numericalMatch(spec, value))
}

func numericalMatch(spec *models.NumericalAnswer, value float64) bool {
	if spec.MinValue != nil && spec.MaxValue != nil {
		return value >= *spec.MinValue-epsilon && value <= *spec.MaxValue+epsilon
	}
	if spec.ExactValue == nil {
		return false
	}
	exact := *spec.ExactValue
	if spec.TolerancePercent > 0 {
		margin := math.Abs(exact) * spec.TolerancePercent / 100
		return value >= exact-margin-epsilon && value <= exact+margin+epsilon
	}
	return math.Abs(value-exact) <= epsilon
}

// matrixEqual checks the atomic row-to-column mapping: every row present
// with exactly the correct column set, nothing extra.
func matrixEqual(selected, correct map[string][]string) bool {
	if len(selected) != len(correct) {
		return false
	}
	for row, want := range correct {
		got, ok := selected[row]
		if !ok || len(got) != len(want) {
			return false
		}
		a := append([]string(nil), got...)
		b := append([]string(nil), want...)
		sort.Strings(a)
		sort.Strings(b)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
