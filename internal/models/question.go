package models

// Question types understood by the scoring engine.
const (
	QuestionTypeSingle    = "single"
	QuestionTypeMultiple  = "multiple"
	QuestionTypeInteger   = "integer"
	QuestionTypeNumerical = "numerical"
	QuestionTypeMatrix    = "matrix"
)

type Option struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

// Translation carries one language rendering of a question's displayable
// content.
type Translation struct {
	Language string   `bson:"language" json:"language"`
	Text     string   `bson:"text" json:"text"`
	Options  []Option `bson:"options,omitempty" json:"options,omitempty"`
}

// NumericalAnswer is the answer specification for integer and numerical
// questions. Either ExactValue (optionally widened by TolerancePercent)
// or a [MinValue, MaxValue] range is used.
type NumericalAnswer struct {
	ExactValue       *float64 `bson:"exact_value,omitempty" json:"exact_value,omitempty"`
	MinValue         *float64 `bson:"min_value,omitempty" json:"min_value,omitempty"`
	MaxValue         *float64 `bson:"max_value,omitempty" json:"max_value,omitempty"`
	TolerancePercent float64  `bson:"tolerance_percent,omitempty" json:"tolerance_percent,omitempty"`
	Unit             string   `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Question is the bank entity. This service only reads it, and only at
// snapshot-build time; authoring lives in a separate service.
type Question struct {
	ID               string              `bson:"_id,omitempty" json:"id"`
	Type             string              `bson:"type" json:"type"`
	Translations     []Translation       `bson:"translations" json:"translations"`
	CorrectOptionIDs []string            `bson:"correct_option_ids,omitempty" json:"correct_option_ids,omitempty"`
	NumericalAnswer  *NumericalAnswer    `bson:"numerical_answer,omitempty" json:"numerical_answer,omitempty"`
	MatrixAnswer     map[string][]string `bson:"matrix_answer,omitempty" json:"matrix_answer,omitempty"`
	DifficultyLevel  string              `bson:"difficulty_level" json:"difficulty_level"`
	Status           string              `bson:"status" json:"status"`
}

// PrimaryTranslation returns the first translation, the display default.
func (q *Question) PrimaryTranslation() Translation {
	if len(q.Translations) == 0 {
		return Translation{}
	}
	return q.Translations[0]
}
