package variant

import (
	"fmt"
	"math/rand"
	"time"

	"exam-service/internal/models"
)

// ConfigError marks a series definition the selector cannot satisfy, such
// as a pool smaller than the number of questions it must supply. It is
// surfaced at attempt start and never silently degraded.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "series configuration error: " + e.Msg
}

// ResolvedSection is a concrete ordered section, ready to snapshot.
type ResolvedSection struct {
	Name      string
	Questions []models.SeriesQuestion
}

// Selector turns a series definition into the concrete arrangement one
// attempt will see: variant choice, pool draws, order randomization.
type Selector struct {
	rand *rand.Rand
}

func NewSelector() *Selector {
	return &Selector{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSelector returns a selector with a fixed seed for reproducible
// arrangements.
func NewSeededSelector(seed int64) *Selector {
	return &Selector{rand: rand.New(rand.NewSource(seed))}
}

// Select picks the variant (forced code, or uniform random when the series
// defines variants and no code is given) and resolves every section.
func (s *Selector) Select(series *models.TestSeries, forcedCode string) (string, []ResolvedSection, error) {
	code, sections, err := s.pickArrangement(series, forcedCode)
	if err != nil {
		return "", nil, err
	}

	resolved := make([]ResolvedSection, 0, len(sections))
	for _, sec := range sections {
		rs, err := s.resolveSection(sec)
		if err != nil {
			return "", nil, err
		}
		resolved = append(resolved, rs)
	}

	if series.RandomizeSectionOrder {
		s.rand.Shuffle(len(resolved), func(i, j int) {
			resolved[i], resolved[j] = resolved[j], resolved[i]
		})
	}

	return code, resolved, nil
}

func (s *Selector) pickArrangement(series *models.TestSeries, forcedCode string) (string, []models.Section, error) {
	if len(series.Variants) == 0 {
		if forcedCode != "" {
			return "", nil, &ConfigError{Msg: fmt.Sprintf("variant %q requested but series defines no variants", forcedCode)}
		}
		return "", series.Sections, nil
	}

	if forcedCode != "" {
		for _, v := range series.Variants {
			if v.Code == forcedCode {
				return v.Code, v.Sections, nil
			}
		}
		return "", nil, &ConfigError{Msg: fmt.Sprintf("variant %q not defined on series", forcedCode)}
	}

	v := series.Variants[s.rand.Intn(len(series.Variants))]
	return v.Code, v.Sections, nil
}

// resolveSection draws from the question pool when one is configured,
// otherwise copies the fixed list, then applies per-section shuffling.
func (s *Selector) resolveSection(sec models.Section) (ResolvedSection, error) {
	var questions []models.SeriesQuestion

	if sec.QuestionsToSelectFromPool > 0 {
		if len(sec.QuestionPool) < sec.QuestionsToSelectFromPool {
			return ResolvedSection{}, &ConfigError{Msg: fmt.Sprintf(
				"section %q pool has %d questions, %d requested",
				sec.Name, len(sec.QuestionPool), sec.QuestionsToSelectFromPool,
			)}
		}
		questions = s.drawFromPool(sec.QuestionPool, sec.QuestionsToSelectFromPool)
	} else {
		questions = make([]models.SeriesQuestion, len(sec.Questions))
		copy(questions, sec.Questions)
	}

	if sec.RandomizeQuestionOrder {
		s.rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	return ResolvedSection{Name: sec.Name, Questions: questions}, nil
}

// drawFromPool picks count questions uniformly at random without
// replacement.
func (s *Selector) drawFromPool(pool []models.SeriesQuestion, count int) []models.SeriesQuestion {
	picked := make([]models.SeriesQuestion, 0, count)
	for _, idx := range s.rand.Perm(len(pool))[:count] {
		picked = append(picked, pool[idx])
	}
	return picked
}
