package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// QuestionType is persisted as one of a closed set of string tags.
type QuestionType string

const (
	QuestionTypeText               QuestionType = "text"
	QuestionTypeParagraph          QuestionType = "paragraph"
	QuestionTypeDate               QuestionType = "date"
	QuestionTypeTime               QuestionType = "time"
	QuestionTypeMultipleChoice     QuestionType = "multiple_choice"
	QuestionTypeCheckboxes         QuestionType = "checkboxes"
	QuestionTypeDropdown           QuestionType = "dropdown"
	QuestionTypeCheckboxGrid       QuestionType = "checkbox_grid"
	QuestionTypeLinearScale        QuestionType = "linear_scale"
	QuestionTypeFileUpload         QuestionType = "file_upload"
	QuestionTypeRating             QuestionType = "rating"
	QuestionTypeMultipleChoiceGrid QuestionType = "multiple_choice_grid"
)

// ErrUnknownQuestionType is returned when a tag outside the enumeration is
// parsed or read back from the database.
var ErrUnknownQuestionType = errors.New("unknown question type")

var questionTypes = map[QuestionType]struct{}{
	QuestionTypeText:               {},
	QuestionTypeParagraph:          {},
	QuestionTypeDate:               {},
	QuestionTypeTime:               {},
	QuestionTypeMultipleChoice:     {},
	QuestionTypeCheckboxes:         {},
	QuestionTypeDropdown:           {},
	QuestionTypeCheckboxGrid:       {},
	QuestionTypeLinearScale:        {},
	QuestionTypeFileUpload:         {},
	QuestionTypeRating:             {},
	QuestionTypeMultipleChoiceGrid: {},
}

func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuestionType, s)
	}
	return t, nil
}

func (t QuestionType) IsValid() bool {
	_, ok := questionTypes[t]
	return ok
}

// HasOptions reports whether questions of this type own Option rows.
func (t QuestionType) HasOptions() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeCheckboxes, QuestionTypeDropdown:
		return true
	}
	return false
}

// AnswerKind is the answer shape expected for this question type.
func (t QuestionType) AnswerKind() AnswerKind {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeDropdown:
		return AnswerKindSingleChoice
	case QuestionTypeCheckboxes:
		return AnswerKindMultiChoice
	}
	return AnswerKindText
}

func (t *QuestionType) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("%w: unsupported column value %T", ErrUnknownQuestionType, value)
	}
	parsed, err := ParseQuestionType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t QuestionType) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, string(t))
	}
	return string(t), nil
}
