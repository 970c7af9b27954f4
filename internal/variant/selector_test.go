package variant

import (
	"errors"
	"testing"

	"exam-service/internal/models"
)

func refs(ids ...string) []models.SeriesQuestion {
	out := make([]models.SeriesQuestion, len(ids))
	for i, id := range ids {
		out[i] = models.SeriesQuestion{QuestionID: id, Marks: 4, NegativeMarks: 1}
	}
	return out
}

func TestFixedSectionsPassThrough(t *testing.T) {
	series := &models.TestSeries{
		Sections: []models.Section{
			{Name: "Physics", Questions: refs("p1", "p2")},
			{Name: "Maths", Questions: refs("m1", "m2", "m3")},
		},
	}

	code, resolved, err := NewSeededSelector(1).Select(series, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if code != "" {
		t.Errorf("Expected no variant code, got %q", code)
	}
	if len(resolved) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(resolved))
	}
	if resolved[0].Name != "Physics" || resolved[1].Name != "Maths" {
		t.Errorf("Section order changed without randomization: %q, %q", resolved[0].Name, resolved[1].Name)
	}
	if len(resolved[1].Questions) != 3 {
		t.Errorf("Expected 3 questions in Maths, got %d", len(resolved[1].Questions))
	}
	if resolved[0].Questions[0].QuestionID != "p1" || resolved[0].Questions[1].QuestionID != "p2" {
		t.Error("Fixed question order changed without randomization")
	}
}

func TestForcedVariantCode(t *testing.T) {
	series := &models.TestSeries{
		Variants: []models.Variant{
			{Code: "A", Sections: []models.Section{{Name: "Set A", Questions: refs("a1")}}},
			{Code: "B", Sections: []models.Section{{Name: "Set B", Questions: refs("b1")}}},
		},
	}

	code, resolved, err := NewSeededSelector(1).Select(series, "B")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if code != "B" {
		t.Errorf("Expected variant B, got %q", code)
	}
	if resolved[0].Questions[0].QuestionID != "b1" {
		t.Errorf("Expected question from variant B, got %q", resolved[0].Questions[0].QuestionID)
	}
}

func TestUnknownVariantCodeIsConfigError(t *testing.T) {
	series := &models.TestSeries{
		Variants: []models.Variant{{Code: "A", Sections: []models.Section{{Name: "Set A", Questions: refs("a1")}}}},
	}

	_, _, err := NewSeededSelector(1).Select(series, "C")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}

func TestRandomVariantPickIsDefined(t *testing.T) {
	series := &models.TestSeries{
		Variants: []models.Variant{
			{Code: "A", Sections: []models.Section{{Name: "Set A", Questions: refs("a1")}}},
			{Code: "B", Sections: []models.Section{{Name: "Set B", Questions: refs("b1")}}},
		},
	}

	code, _, err := NewSeededSelector(7).Select(series, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if code != "A" && code != "B" {
		t.Errorf("Expected one of the defined variant codes, got %q", code)
	}
}

func TestPoolDrawCountAndUniqueness(t *testing.T) {
	series := &models.TestSeries{
		Sections: []models.Section{{
			Name:                      "Pool section",
			QuestionPool:              refs("q1", "q2", "q3", "q4", "q5", "q6"),
			QuestionsToSelectFromPool: 4,
		}},
	}

	for seed := int64(0); seed < 20; seed++ {
		_, resolved, err := NewSeededSelector(seed).Select(series, "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		picked := resolved[0].Questions
		if len(picked) != 4 {
			t.Fatalf("Expected 4 drawn questions, got %d", len(picked))
		}
		seen := map[string]bool{}
		for _, q := range picked {
			if seen[q.QuestionID] {
				t.Errorf("Question %s drawn twice (seed %d)", q.QuestionID, seed)
			}
			seen[q.QuestionID] = true
		}
	}
}

// A pool smaller than the requested count must fail fast, never silently
// under-fill the section.
func TestUnderfilledPoolFailsFast(t *testing.T) {
	series := &models.TestSeries{
		Sections: []models.Section{{
			Name:                      "Thin pool",
			QuestionPool:              refs("q1", "q2", "q3"),
			QuestionsToSelectFromPool: 5,
		}},
	}

	_, _, err := NewSeededSelector(1).Select(series, "")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}

func TestQuestionOrderShuffleKeepsSet(t *testing.T) {
	series := &models.TestSeries{
		Sections: []models.Section{{
			Name:                   "Shuffled",
			Questions:              refs("q1", "q2", "q3", "q4", "q5"),
			RandomizeQuestionOrder: true,
		}},
	}

	_, resolved, err := NewSeededSelector(3).Select(series, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(resolved[0].Questions) != 5 {
		t.Fatalf("Expected 5 questions, got %d", len(resolved[0].Questions))
	}
	seen := map[string]bool{}
	for _, q := range resolved[0].Questions {
		seen[q.QuestionID] = true
	}
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5"} {
		if !seen[id] {
			t.Errorf("Question %s lost in shuffle", id)
		}
	}
}

func TestSectionOrderShuffleKeepsSections(t *testing.T) {
	series := &models.TestSeries{
		RandomizeSectionOrder: true,
		Sections: []models.Section{
			{Name: "S1", Questions: refs("a")},
			{Name: "S2", Questions: refs("b")},
			{Name: "S3", Questions: refs("c")},
		},
	}

	_, resolved, err := NewSeededSelector(5).Select(series, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	seen := map[string]bool{}
	for _, sec := range resolved {
		seen[sec.Name] = true
	}
	if len(seen) != 3 {
		t.Errorf("Expected all 3 sections after shuffle, got %v", seen)
	}
}

// The selector must never mutate the series definition it reads.
func TestSelectorDoesNotMutateSeries(t *testing.T) {
	series := &models.TestSeries{
		Sections: []models.Section{{
			Name:                   "Shuffled",
			Questions:              refs("q1", "q2", "q3"),
			RandomizeQuestionOrder: true,
		}},
	}

	if _, _, err := NewSeededSelector(9).Select(series, ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, id := range []string{"q1", "q2", "q3"} {
		if series.Sections[0].Questions[i].QuestionID != id {
			t.Fatal("Series definition mutated by selection")
		}
	}
}
